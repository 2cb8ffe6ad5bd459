package domain

import (
	"regexp"
	"time"
)

const (
	DefaultAvatar       = "👤"
	DefaultProjectColor = "#667eea"
	DefaultImportance   = 3
	DefaultPriority     = PriorityMedium

	MinImportance = 1
	MaxImportance = 5

	// DateLayout is the calendar-date format of Todo.Date.
	DateLayout = "2006-01-02"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// IsDate reports whether s has the YYYY-MM-DD shape.
func IsDate(s string) bool { return datePattern.MatchString(s) }

// IsTime reports whether s has the HH:MM shape.
func IsTime(s string) bool { return timePattern.MatchString(s) }

// IsColor reports whether s is a #RRGGBB hex color.
func IsColor(s string) bool { return colorPattern.MatchString(s) }

// Today returns the UTC calendar date of t in DateLayout.
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   Role   `json:"role"`
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ProjectID   string     `json:"projectId"`
	AssigneeID  string     `json:"assigneeId"`
	Date        string     `json:"date"`
	Time        string     `json:"time,omitempty"`
	Priority    Priority   `json:"priority"`
	Importance  int        `json:"importance"`
	Note        string     `json:"note,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsOverdue reports whether the todo is pending and due strictly before today.
// Both dates are YYYY-MM-DD, so string order is calendar order.
func (t *Todo) IsOverdue(today string) bool {
	return !t.Completed && t.Date < today
}

// IsUrgent reports whether the todo is pending with urgent priority.
func (t *Todo) IsUrgent() bool {
	return !t.Completed && t.Priority == PriorityUrgent
}

// Status derives the completion state.
func (t *Todo) Status() Status {
	if t.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// SetCompleted moves the todo to the given state, keeping CompletedAt present
// iff Completed.
func (t *Todo) SetCompleted(done bool, now time.Time) {
	t.Completed = done
	if done {
		stamp := now.UTC()
		t.CompletedAt = &stamp
		return
	}
	t.CompletedAt = nil
}

func (t Todo) clone() Todo {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

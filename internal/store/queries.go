package store

import (
	"context"

	"todomcp/internal/domain"
)

// Summary reports the current user's workload.
type Summary struct {
	User        string             `json:"user"`
	Role        domain.Role        `json:"role"`
	Permissions domain.Permissions `json:"permissions"`
	TotalTasks  int                `json:"totalTasks"`
	Completed   int                `json:"completed"`
	Pending     int                `json:"pending"`
	Urgent      int                `json:"urgent"`
	Overdue     int                `json:"overdue"`
	TodayTasks  int                `json:"todayTasks"`
	AllStats    AllStats           `json:"allStats"`
}

// AllStats counts the whole aggregate inside a Summary.
type AllStats struct {
	TotalTodos    int `json:"totalTodos"`
	TotalProjects int `json:"totalProjects"`
	TotalUsers    int `json:"totalUsers"`
}

// GlobalStats counts across every todo regardless of login state.
type GlobalStats struct {
	TotalTodos    int `json:"totalTodos"`
	Pending       int `json:"pending"`
	Completed     int `json:"completed"`
	Overdue       int `json:"overdue"`
	Urgent        int `json:"urgent"`
	TotalProjects int `json:"totalProjects"`
	TotalUsers    int `json:"totalUsers"`
}

func (s *Store) query(ctx context.Context, op string, keep func(*domain.Todo) bool) ([]domain.Todo, error) {
	out := []domain.Todo{}
	err := s.cycle(ctx, op, false, func() error {
		for i := range s.data.Todos {
			if keep(&s.data.Todos[i]) {
				out = append(out, s.data.Todos[i])
			}
		}
		return nil
	})
	return out, err
}

// TodosByProject returns the todos in one project.
func (s *Store) TodosByProject(ctx context.Context, projectID string) ([]domain.Todo, error) {
	return s.query(ctx, "todos_by_project", func(t *domain.Todo) bool { return t.ProjectID == projectID })
}

// TodosByAssignee returns the todos assigned to one user.
func (s *Store) TodosByAssignee(ctx context.Context, userID string) ([]domain.Todo, error) {
	return s.query(ctx, "todos_by_assignee", func(t *domain.Todo) bool { return t.AssigneeID == userID })
}

// TodosByDate returns the todos due on a YYYY-MM-DD date.
func (s *Store) TodosByDate(ctx context.Context, date string) ([]domain.Todo, error) {
	return s.query(ctx, "todos_by_date", func(t *domain.Todo) bool { return t.Date == date })
}

// OverdueTodos returns pending todos due strictly before today.
func (s *Store) OverdueTodos(ctx context.Context) ([]domain.Todo, error) {
	today := s.today()
	return s.query(ctx, "overdue_todos", func(t *domain.Todo) bool { return t.IsOverdue(today) })
}

// UrgentTodos returns pending todos with urgent priority.
func (s *Store) UrgentTodos(ctx context.Context) ([]domain.Todo, error) {
	return s.query(ctx, "urgent_todos", func(t *domain.Todo) bool { return t.IsUrgent() })
}

// PendingTodos returns the todos not yet completed.
func (s *Store) PendingTodos(ctx context.Context) ([]domain.Todo, error) {
	return s.query(ctx, "pending_todos", func(t *domain.Todo) bool { return !t.Completed })
}

// CompletedTodos returns the completed todos.
func (s *Store) CompletedTodos(ctx context.Context) ([]domain.Todo, error) {
	return s.query(ctx, "completed_todos", func(t *domain.Todo) bool { return t.Completed })
}

// Summary reports on the todos assigned to the current user. It returns
// ErrNotLoggedIn when there is no session.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	err := s.cycle(ctx, "summary", false, func() error {
		user := s.currentUser()
		if user == nil {
			return ErrNotLoggedIn
		}
		today := s.today()
		sum = Summary{
			User:        user.Name,
			Role:        user.Role,
			Permissions: domain.PermissionsFor(user.Role),
			AllStats: AllStats{
				TotalTodos:    len(s.data.Todos),
				TotalProjects: len(s.data.Projects),
				TotalUsers:    len(s.data.Users),
			},
		}
		for i := range s.data.Todos {
			t := &s.data.Todos[i]
			if t.AssigneeID != user.ID {
				continue
			}
			sum.TotalTasks++
			if t.Completed {
				sum.Completed++
			} else {
				sum.Pending++
			}
			if t.IsUrgent() {
				sum.Urgent++
			}
			if t.IsOverdue(today) {
				sum.Overdue++
			}
			if t.Date == today {
				sum.TodayTasks++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// GlobalStats counts every todo, project and user.
func (s *Store) GlobalStats(ctx context.Context) GlobalStats {
	var g GlobalStats
	_ = s.cycle(ctx, "global_stats", false, func() error {
		today := s.today()
		g.TotalTodos = len(s.data.Todos)
		g.TotalProjects = len(s.data.Projects)
		g.TotalUsers = len(s.data.Users)
		for i := range s.data.Todos {
			t := &s.data.Todos[i]
			if t.Completed {
				g.Completed++
			} else {
				g.Pending++
			}
			if t.IsOverdue(today) {
				g.Overdue++
			}
			if t.IsUrgent() {
				g.Urgent++
			}
		}
		return nil
	})
	return g
}

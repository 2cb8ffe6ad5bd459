// Package validation holds the field shape checks shared by the store and
// both front-ends. Checks only look at the value itself; whether a referenced
// id exists is the store's concern.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"todomcp/internal/domain"
)

const (
	MaxTitleLength = 500
	MaxNameLength  = 200
	MaxNoteLength  = 10000
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects field errors; the zero value is empty and usable.
type Errors []*FieldError

// Add records err under field when err is non-nil.
func (es *Errors) Add(field string, err error) {
	if err == nil {
		return
	}
	*es = append(*es, &FieldError{Field: field, Message: err.Error()})
}

// Err returns nil when no errors were recorded.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func (es Errors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Text checks that s is non-blank and at most max runes long.
func Text(s string, max int) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	if n := len([]rune(s)); n > max {
		return fmt.Errorf("must be at most %d characters, got %d", max, n)
	}
	return nil
}

// Title validates a todo title.
func Title(s string) error { return Text(s, MaxTitleLength) }

// Name validates a user or project name.
func Name(s string) error { return Text(s, MaxNameLength) }

// Note validates a free-text note; empty is allowed.
func Note(s string) error {
	if n := len([]rune(s)); n > MaxNoteLength {
		return fmt.Errorf("must be at most %d characters, got %d", MaxNoteLength, n)
	}
	return nil
}

// Email checks for a single bare address such as dev1@company.com.
func Email(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// Date checks for a real calendar date in YYYY-MM-DD form.
func Date(s string) error {
	if !domain.IsDate(s) {
		return fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return fmt.Errorf("is not a valid calendar date")
	}
	return nil
}

// Time checks for a 24-hour HH:MM time.
func Time(s string) error {
	if !domain.IsTime(s) {
		return fmt.Errorf("must be a time in HH:MM format")
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("is not a valid time of day")
	}
	return nil
}

// Color checks for a #RRGGBB hex color.
func Color(s string) error {
	if !domain.IsColor(s) {
		return fmt.Errorf("must be a hex color like #667eea")
	}
	return nil
}

func Priority(s string) error {
	_, err := domain.ParsePriority(s)
	return err
}

func Role(s string) error {
	_, err := domain.ParseRole(s)
	return err
}

func Status(s string) error {
	_, err := domain.ParseStatus(s)
	return err
}

// Importance checks the 1..5 range.
func Importance(n int) error {
	if n < domain.MinImportance || n > domain.MaxImportance {
		return fmt.Errorf("must be between %d and %d, got %d", domain.MinImportance, domain.MaxImportance, n)
	}
	return nil
}

// ID checks that an identifier is non-blank and has no surrounding whitespace.
func ID(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	if strings.TrimSpace(s) != s {
		return fmt.Errorf("must not have leading or trailing whitespace")
	}
	return nil
}

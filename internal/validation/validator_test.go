package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestFieldChecks(t *testing.T) {
	tests := []struct {
		name    string
		check   func() error
		wantErr string
	}{
		{"title ok", func() error { return Title("Fix bug") }, ""},
		{"title blank", func() error { return Title("   ") }, "must not be empty"},
		{"title too long", func() error { return Title(strings.Repeat("x", MaxTitleLength+1)) }, "at most"},
		{"name multibyte within limit", func() error { return Name(strings.Repeat("é", MaxNameLength)) }, ""},
		{"note empty ok", func() error { return Note("") }, ""},
		{"note too long", func() error { return Note(strings.Repeat("n", MaxNoteLength+1)) }, "at most"},
		{"email ok", func() error { return Email("dev1@company.com") }, ""},
		{"email display name", func() error { return Email("Dev <dev1@company.com>") }, "valid email"},
		{"email missing at", func() error { return Email("dev1.company.com") }, "valid email"},
		{"date ok", func() error { return Date("2024-02-29") }, ""},
		{"date shape", func() error { return Date("2024/06/15") }, "YYYY-MM-DD"},
		{"date impossible", func() error { return Date("2023-02-29") }, "calendar date"},
		{"time ok", func() error { return Time("23:59") }, ""},
		{"time shape", func() error { return Time("9:30") }, "HH:MM"},
		{"time impossible", func() error { return Time("24:10") }, "time of day"},
		{"color ok", func() error { return Color("#2ed573") }, ""},
		{"color short", func() error { return Color("#fff") }, "hex color"},
		{"priority ok", func() error { return Priority("urgent") }, ""},
		{"priority bad", func() error { return Priority("asap") }, "invalid priority"},
		{"role ok", func() error { return Role("viewer") }, ""},
		{"role bad", func() error { return Role("root") }, "invalid role"},
		{"status ok", func() error { return Status("pending") }, ""},
		{"status bad", func() error { return Status("open") }, "invalid status"},
		{"importance low", func() error { return Importance(0) }, "between 1 and 5"},
		{"importance high", func() error { return Importance(6) }, "between 1 and 5"},
		{"importance ok", func() error { return Importance(5) }, ""},
		{"id ok", func() error { return ID("dev1") }, ""},
		{"id blank", func() error { return ID("") }, "must not be empty"},
		{"id padded", func() error { return ID(" dev1") }, "whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	var errs Errors
	if errs.Err() != nil {
		t.Fatal("expected nil error from empty collector")
	}

	errs.Add("title", nil)
	errs.Add("date", Date("tomorrow"))
	errs.Add("importance", Importance(9))

	err := errs.Err()
	if err == nil {
		t.Fatal("expected collected error")
	}
	want := "date: must be a date in YYYY-MM-DD format; importance: must be between 1 and 5, got 9"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	var collected Errors
	if !errors.As(err, &collected) || len(collected) != 2 {
		t.Errorf("expected Errors with 2 entries, got %#v", err)
	}
}

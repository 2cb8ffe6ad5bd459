package fileops

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	t.Setenv("TODO_TEST_DIR", "/srv/todo")

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/.todo-mcp-data.json", filepath.Join(home, ".todo-mcp-data.json")},
		{"$TODO_TEST_DIR/data.json", "/srv/todo/data.json"},
		{"${TODO_TEST_DIR}/data.json", "/srv/todo/data.json"},
		{"/abs/path.json", "/abs/path.json"},
		{"relative.json", "relative.json"},
		{"~user/file", "~user/file"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateDataFilePath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		path      string
		errorText string
	}{
		{name: "file in temp dir", path: filepath.Join(dir, "data.json")},
		{name: "empty", path: "   ", errorText: "cannot be empty"},
		{name: "directory", path: dir, errorText: "is a directory"},
	}
	if runtime.GOOS == "linux" {
		tests = append(tests, struct {
			name      string
			path      string
			errorText string
		}{name: "system directory", path: "/etc/todo.json", errorText: "reserved"})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataFilePath(tt.path)
			if tt.errorText == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errorText)
			}
			if !strings.Contains(err.Error(), tt.errorText) {
				t.Errorf("error = %v, want substring %q", err, tt.errorText)
			}
		})
	}
}

func TestIsReservedDirectory(t *testing.T) {
	if !IsReservedDirectory("/") {
		t.Error("root should be reserved")
	}
	if IsReservedDirectory(t.TempDir()) {
		t.Error("temp directories should never be reserved")
	}
	if runtime.GOOS == "linux" {
		if !IsReservedDirectory("/proc/self") {
			t.Error("/proc children should be reserved")
		}
		if IsReservedDirectory("/etcetera") {
			t.Error("prefix match must respect path separators")
		}
	}
}

func TestValidateFileSizeLimit(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		content     string
		maxSize     int64
		expectError bool
		errorText   string
		skipFile    bool
	}{
		{name: "within limit", content: "small", maxSize: 100},
		{name: "empty file", content: "", maxSize: 100},
		{name: "exact limit", content: strings.Repeat("x", 50), maxSize: 50},
		{name: "one byte over", content: strings.Repeat("x", 51), maxSize: 50, expectError: true, errorText: "exceeds limit"},
		{name: "zero limit", content: "x", maxSize: 0, expectError: true, errorText: "invalid size limit"},
		{name: "missing file", maxSize: 100, expectError: true, errorText: "does not exist", skipFile: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-")+".json")
			if !tt.skipFile {
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			err := ValidateFileSizeLimit(path, tt.maxSize)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.errorText)
				}
				if !strings.Contains(err.Error(), tt.errorText) {
					t.Errorf("error = %v, want substring %q", err, tt.errorText)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if err := ValidateFileSizeLimit(dir, 100); err == nil || !strings.Contains(err.Error(), "directory, not a file") {
		t.Errorf("expected directory error, got %v", err)
	}
}

func TestReadFileLimited(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(`{"todos":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFileLimited(path, 1024)
	if err != nil {
		t.Fatalf("ReadFileLimited failed: %v", err)
	}
	if string(data) != `{"todos":[]}` {
		t.Errorf("content = %q", data)
	}

	if _, err := ReadFileLimited(path, 4); err == nil {
		t.Error("expected size limit error")
	}

	_, err = ReadFileLimited(filepath.Join(dir, "missing.json"), 1024)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

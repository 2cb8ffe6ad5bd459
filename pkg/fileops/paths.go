package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPath expands a leading "~" to the user's home directory and replaces
// $VAR / ${VAR} references from the environment. Paths that cannot be expanded
// are returned unchanged.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// ValidateDataFilePath checks that path is usable as a data file location:
// non-empty, not an existing directory, and not inside a reserved system
// directory. The file itself does not need to exist.
func ValidateDataFilePath(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return fmt.Errorf("data file path cannot be empty")
	}

	expanded := ExpandPath(trimmed)
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", expanded)
	}

	if IsReservedDirectory(filepath.Dir(expanded)) {
		return fmt.Errorf("cannot store data in system or reserved directory: %s", filepath.Dir(expanded))
	}

	return nil
}

// IsReservedDirectory reports whether path is, or is inside, a platform system
// directory. Paths under the user temp directory are never reserved.
func IsReservedDirectory(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true // If we can't resolve it, treat as reserved
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}
	absPath = filepath.Clean(absPath)

	if absPath == "/" || absPath == `\` || strings.EqualFold(absPath, `C:\`) {
		return true
	}
	if isUserTempDirectory(absPath) {
		return false
	}

	pathLower := strings.ToLower(absPath)
	for _, reserved := range reservedDirectories() {
		reservedLower := strings.ToLower(filepath.Clean(reserved))
		if pathLower == reservedLower || strings.HasPrefix(pathLower, reservedLower+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func reservedDirectories() []string {
	var dirs []string

	switch runtime.GOOS {
	case "windows":
		dirs = []string{
			`C:\Windows`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
		}
	case "darwin":
		dirs = []string{
			"/System",
			"/usr/bin",
			"/usr/sbin",
			"/bin",
			"/sbin",
			"/etc",
			"/private/etc",
			"/var/log",
		}
	default:
		dirs = []string{
			"/bin",
			"/sbin",
			"/usr/bin",
			"/usr/sbin",
			"/etc",
			"/boot",
			"/dev",
			"/proc",
			"/sys",
			"/var/log",
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".ssh"), filepath.Join(home, ".gnupg"))
	}
	return dirs
}

func isUserTempDirectory(path string) bool {
	temp := filepath.Clean(os.TempDir())
	if resolved, err := filepath.EvalSymlinks(temp); err == nil {
		temp = resolved
	}
	return path == temp || strings.HasPrefix(path, temp+string(os.PathSeparator))
}

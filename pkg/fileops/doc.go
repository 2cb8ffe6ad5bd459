// Package fileops provides the small set of file operations the JSON data
// store depends on.
//
// # Atomic Writes
//
// AtomicWriteFile writes to a temporary sibling and renames it over the target,
// so a reader either sees the previous document or the new one, never a torn
// write:
//
//	if err := fileops.AtomicWriteFile(path, payload, 0o600); err != nil {
//	    return fmt.Errorf("save data: %w", err)
//	}
//
// # Path Handling
//
// ExpandPath resolves "~" and environment variables in user-supplied paths.
// ValidateDataFilePath rejects empty paths, directories and reserved system
// locations before anything is written.
//
// # Size Limits
//
// ReadFileLimited refuses files larger than the given limit before reading them:
//
//	data, err := fileops.ReadFileLimited(path, 10*1024*1024)
package fileops

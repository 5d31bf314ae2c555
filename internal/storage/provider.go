// Package storage defines the org-directory file-system abstraction.
package storage

import "time"

// FileInfo describes one file under the org root.
type FileInfo struct {
	Path      string // relative to the org root
	Checksum  string // hex SHA-256 of the content
	UpdatedAt time.Time
}

// Provider is the interface for org-directory file operations.
type Provider interface {
	// List returns metadata for every regular file under dir (relative to the org root).
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to the org root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the org root),
	// ensuring a trailing newline.
	Write(path string, content []byte) error
	// Exists reports whether path names an existing file.
	Exists(path string) bool
	// Backup copies path to a timestamped sibling before modification and
	// returns the backup's relative path.
	Backup(path string) (string, error)
}

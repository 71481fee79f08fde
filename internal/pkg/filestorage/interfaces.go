package filestorage

import (
	"io"
	"os"
	"time"
)

// FileInfo describes a file inside the storage root
type FileInfo struct {
	Name     string // Name relative to the storage root
	Path     string // Full filesystem path
	FileSize int64  // Size in bytes
	ModTime  time.Time
}

// FileStorage defines the interface for data-file operations
type FileStorage interface {
	// Resolve maps a file name to a path inside the storage root
	Resolve(name string) (string, error)

	// Create writes a file atomically and returns its full path
	Create(name string, write func(io.Writer) error) (string, error)

	// Open opens a file for reading
	Open(name string) (*os.File, error)

	// Stat returns information about a stored file
	Stat(name string) (*FileInfo, error)

	// List returns every stored file, sorted by name
	List() ([]FileInfo, error)

	// DeleteFile removes a file from storage
	DeleteFile(name string) error
}

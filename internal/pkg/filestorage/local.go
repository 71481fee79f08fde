package filestorage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/schoolbook/internal/pkg/logger"
)

var _ FileStorage = (*LocalStorage)(nil)

// ErrOutsideRoot is returned for names that would escape the storage root.
var ErrOutsideRoot = errors.New("path escapes the data directory")

// LocalStorage keeps data files under one directory on the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files are stored
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create data directory")
		return nil, fmt.Errorf("failed to create data directory %s: %w", basePath, err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", abs).Msg("Data directory ensured")

	return &LocalStorage{basePath: abs}, nil
}

// BasePath returns the absolute storage root.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Resolve maps name to a path under the storage root. Names may contain
// subdirectories but never "..", and absolute names are rejected.
func (ls *LocalStorage) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("file name is required")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}

	full := filepath.Join(ls.basePath, filepath.Clean(name))
	rel, err := filepath.Rel(ls.basePath, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	return full, nil
}

// Create writes name atomically through write and returns the full path.
func (ls *LocalStorage) Create(name string, write func(io.Writer) error) (string, error) {
	path, err := ls.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := WriteFileAtomic(path, write); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to write data file")
		return "", err
	}
	logger.Info().Str("path", path).Msg("Data file written")
	return path, nil
}

// Open opens name for reading
func (ls *LocalStorage) Open(name string) (*os.File, error) {
	path, err := ls.Resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Stat returns information about name
func (ls *LocalStorage) Stat(name string) (*FileInfo, error) {
	path, err := ls.Resolve(name)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", name, os.ErrNotExist)
	}
	return &FileInfo{Name: filepath.ToSlash(filepath.Clean(name)), Path: path, FileSize: st.Size(), ModTime: st.ModTime()}, nil
}

// List walks the storage root. Hidden files, including in-flight temp files,
// are skipped.
func (ls *LocalStorage) List() ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(ls.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != ls.basePath {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(ls.basePath, path)
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Name:     filepath.ToSlash(rel),
			Path:     path,
			FileSize: info.Size(),
			ModTime:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}
	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}

// DeleteFile removes name from the storage root.
// Returns nil if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(name string) error {
	path, err := ls.Resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", path).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", path).Msg("File deleted successfully")
	return nil
}

// WriteFileAtomic writes path through a uniquely named temp file in the same
// directory and renames it into place. On any failure the previous content of
// path is left untouched and the temp file is removed.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.New().String()+".tmp")
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

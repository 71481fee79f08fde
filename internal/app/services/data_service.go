package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/persistence"
	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/filestorage"
)

// DataService defines the interface for file and database persistence.
// File names are relative to the data directory.
type DataService interface {
	Save(ctx context.Context, name string) (string, error)
	Load(ctx context.Context, name string) (string, error)
	ExportCSV(ctx context.Context, kind models.Kind, name string) (string, error)
	ExportAllCSV(ctx context.Context, dir string) ([]string, error)
	ExportXLSX(ctx context.Context, name string) (string, error)
	WriteExport(ctx context.Context, w io.Writer, format persistence.Format, kind models.Kind) error
	ImportXLSX(ctx context.Context, r io.Reader) (models.Stats, error)
	Backup(ctx context.Context) (models.Stats, error)
	Restore(ctx context.Context) (models.Stats, error)
	ArchiveDatabase(ctx context.Context, name string) (string, error)
	ListFiles(ctx context.Context) ([]filestorage.FileInfo, error)
	OpenFile(ctx context.Context, name string) (*os.File, *filestorage.FileInfo, error)
	DeleteFile(ctx context.Context, name string) error
	DefaultFile() string
	StoreName() string
}

// databaseArchiver is implemented by stores that can copy their database file
type databaseArchiver interface {
	BackupTo(ctx context.Context, dest string) error
}

// dataServiceImpl implements DataService
type dataServiceImpl struct {
	repo        *repositories.RecordRepository
	snapshots   repositories.SnapshotStore
	storage     *filestorage.LocalStorage
	defaultFile string
	logger      zerolog.Logger
}

// NewDataService creates a new DataService. snapshots may be nil.
func NewDataService(
	repo *repositories.RecordRepository,
	snapshots repositories.SnapshotStore,
	storage *filestorage.LocalStorage,
	defaultFile string,
	logger zerolog.Logger,
) DataService {
	return &dataServiceImpl{
		repo:        repo,
		snapshots:   snapshots,
		storage:     storage,
		defaultFile: defaultFile,
		logger:      logger,
	}
}

// DefaultFile returns the JSON file used when no name is given
func (s *dataServiceImpl) DefaultFile() string {
	return s.defaultFile
}

// StoreName returns the configured snapshot backend, or "none"
func (s *dataServiceImpl) StoreName() string {
	if s.snapshots == nil {
		return "none"
	}
	return s.snapshots.Name()
}

// resolve maps a user-supplied name into the data directory
func (s *dataServiceImpl) resolve(name, fallback string) (string, error) {
	if name == "" {
		name = fallback
	}
	path, err := s.storage.Resolve(name)
	if err != nil {
		return "", apperrors.NewValidationError("file", err.Error())
	}
	return path, nil
}

// Save writes the record set as JSON
func (s *dataServiceImpl) Save(ctx context.Context, name string) (string, error) {
	path, err := s.resolve(name, s.defaultFile)
	if err != nil {
		return "", err
	}
	ds := s.repo.Snapshot()
	if err := persistence.Save(path, ds); err != nil {
		loggerFrom(ctx, s.logger).Error().Err(err).Str("path", path).Msg("Failed to save data file")
		return "", err
	}
	loggerFrom(ctx, s.logger).Info().Str("path", path).
		Int("students", len(ds.Students)).Int("courses", len(ds.Courses)).Msg("Data file saved")
	return path, nil
}

// Load replaces the record set with a JSON file. On error nothing changes.
func (s *dataServiceImpl) Load(ctx context.Context, name string) (string, error) {
	path, err := s.resolve(name, s.defaultFile)
	if err != nil {
		return "", err
	}
	if err := persistence.Load(path, s.repo); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperrors.NewNotFoundError("file", filepath.Base(path))
		}
		loggerFrom(ctx, s.logger).Warn().Err(err).Str("path", path).Msg("Failed to load data file")
		return "", err
	}
	loggerFrom(ctx, s.logger).Info().Str("path", path).Interface("stats", s.repo.Stats()).Msg("Data file loaded")
	return path, nil
}

// ExportCSV writes one collection as CSV, by default to <kind>s.csv
func (s *dataServiceImpl) ExportCSV(ctx context.Context, kind models.Kind, name string) (string, error) {
	path, err := s.resolve(name, persistence.CSVFileName(kind))
	if err != nil {
		return "", err
	}
	if err := persistence.ExportCSV(path, s.repo.Snapshot(), kind); err != nil {
		return "", err
	}
	loggerFrom(ctx, s.logger).Info().Str("kind", string(kind)).Str("path", path).Msg("CSV exported")
	return path, nil
}

// ExportAllCSV writes the three CSV files into dir, or the data directory itself
func (s *dataServiceImpl) ExportAllCSV(ctx context.Context, dir string) ([]string, error) {
	target := s.storage.BasePath()
	if dir != "" {
		var err error
		if target, err = s.resolve(dir, ""); err != nil {
			return nil, err
		}
	}
	paths, err := persistence.ExportAllCSV(target, s.repo.Snapshot())
	if err != nil {
		return nil, err
	}
	loggerFrom(ctx, s.logger).Info().Str("dir", target).Msg("CSV files exported")
	return paths, nil
}

// ExportXLSX writes the record set as a workbook
func (s *dataServiceImpl) ExportXLSX(ctx context.Context, name string) (string, error) {
	if _, err := s.resolve(name, "school.xlsx"); err != nil {
		return "", err
	}
	if name == "" {
		name = "school.xlsx"
	}
	ds := s.repo.Snapshot()
	path, err := s.storage.Create(name, func(w io.Writer) error {
		return persistence.WriteXLSX(w, ds)
	})
	if err != nil {
		return "", err
	}
	loggerFrom(ctx, s.logger).Info().Str("path", path).Msg("Workbook exported")
	return path, nil
}

// WriteExport streams an export to w. kind only matters for CSV.
func (s *dataServiceImpl) WriteExport(_ context.Context, w io.Writer, format persistence.Format, kind models.Kind) error {
	ds := s.repo.Snapshot()
	switch format {
	case persistence.FormatXLSX:
		return persistence.WriteXLSX(w, ds)
	case persistence.FormatJSON:
		return persistence.Encode(w, ds)
	default:
		return persistence.WriteCSV(w, ds, kind)
	}
}

// ImportXLSX replaces the record set with a workbook
func (s *dataServiceImpl) ImportXLSX(ctx context.Context, r io.Reader) (models.Stats, error) {
	ds, err := persistence.ReadXLSX(r)
	if err != nil {
		return models.Stats{}, err
	}
	if err := s.repo.Replace(ds); err != nil {
		return models.Stats{}, apperrors.NewFormatError("inconsistent workbook", err)
	}
	stats := s.repo.Stats()
	loggerFrom(ctx, s.logger).Info().Interface("stats", stats).Msg("Workbook imported")
	return stats, nil
}

func (s *dataServiceImpl) requireStore() error {
	if s.snapshots == nil {
		return apperrors.NewValidationError("database.driver", "no snapshot database configured")
	}
	return nil
}

// Backup writes the record set to the snapshot database
func (s *dataServiceImpl) Backup(ctx context.Context) (models.Stats, error) {
	if err := s.requireStore(); err != nil {
		return models.Stats{}, err
	}
	ds := s.repo.Snapshot()
	if err := s.snapshots.WriteSnapshot(ctx, ds); err != nil {
		loggerFrom(ctx, s.logger).Error().Err(err).Str("store", s.snapshots.Name()).Msg("Backup failed")
		return models.Stats{}, err
	}
	stats := s.repo.Stats()
	loggerFrom(ctx, s.logger).Info().Str("store", s.snapshots.Name()).Interface("stats", stats).Msg("Backup written")
	return stats, nil
}

// Restore replaces the record set with the last snapshot
func (s *dataServiceImpl) Restore(ctx context.Context) (models.Stats, error) {
	if err := s.requireStore(); err != nil {
		return models.Stats{}, err
	}
	ds, err := s.snapshots.ReadSnapshot(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	if err := s.repo.Replace(ds); err != nil {
		return models.Stats{}, apperrors.NewFormatError("inconsistent snapshot", err)
	}
	stats := s.repo.Stats()
	loggerFrom(ctx, s.logger).Info().Str("store", s.snapshots.Name()).Interface("stats", stats).Msg("Snapshot restored")
	return stats, nil
}

// ArchiveDatabase copies the snapshot database file into the data directory
func (s *dataServiceImpl) ArchiveDatabase(ctx context.Context, name string) (string, error) {
	if err := s.requireStore(); err != nil {
		return "", err
	}
	archiver, ok := s.snapshots.(databaseArchiver)
	if !ok {
		return "", apperrors.NewValidationError("database.driver", s.snapshots.Name()+" store cannot be archived to a file")
	}
	path, err := s.resolve(name, "backup.sqlite")
	if err != nil {
		return "", err
	}
	if err := archiver.BackupTo(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// ListFiles returns the files in the data directory
func (s *dataServiceImpl) ListFiles(_ context.Context) ([]filestorage.FileInfo, error) {
	return s.storage.List()
}

// OpenFile opens a data file for download. The caller closes it.
func (s *dataServiceImpl) OpenFile(_ context.Context, name string) (*os.File, *filestorage.FileInfo, error) {
	if _, err := s.resolve(name, ""); err != nil {
		return nil, nil, err
	}
	info, err := s.storage.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, apperrors.NewNotFoundError("file", name)
		}
		return nil, nil, err
	}
	f, err := s.storage.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, info, nil
}

// DeleteFile removes a data file. Missing files are not an error.
func (s *dataServiceImpl) DeleteFile(ctx context.Context, name string) error {
	if _, err := s.resolve(name, ""); err != nil {
		return err
	}
	if err := s.storage.DeleteFile(name); err != nil {
		return err
	}
	loggerFrom(ctx, s.logger).Info().Str("file", name).Msg("Data file deleted")
	return nil
}

package persistence

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/filestorage"
)

// WriteCSV writes the header row and one row per record of kind.
func WriteCSV(w io.Writer, ds models.Dataset, kind models.Kind) error {
	if _, ok := headers[kind]; !ok {
		return apperrors.NewValidationError("kind", "unknown record kind "+string(kind))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers[kind]); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(ds, kind)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// ExportCSV writes one collection of ds to path.
func ExportCSV(path string, ds models.Dataset, kind models.Kind) error {
	return filestorage.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, ds, kind)
	})
}

// CSVFileName is the file name used for kind by ExportAllCSV.
func CSVFileName(kind models.Kind) string {
	return kind.Plural() + ".csv"
}

// ExportAllCSV writes students.csv, instructors.csv and courses.csv into dir
// and returns their paths.
func ExportAllCSV(dir string, ds models.Dataset) ([]string, error) {
	paths := make([]string, 0, len(models.Kinds))
	for _, kind := range models.Kinds {
		path := filepath.Join(dir, CSVFileName(kind))
		if err := ExportCSV(path, ds, kind); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

package persistence

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/logger"
)

// WriteXLSX writes ds as a workbook with one sheet per kind.
func WriteXLSX(w io.Writer, ds models.Dataset) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing workbook")
		}
	}()

	for i, kind := range models.Kinds {
		sheet := kind.Title()
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		if err := setRow(f, sheet, 1, headers[kind]); err != nil {
			return err
		}
		for r, row := range Rows(ds, kind) {
			if err := setRow(f, sheet, r+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// ReadXLSX parses a workbook produced by WriteXLSX back into a dataset.
// Relations are taken from the course sheet; the derived columns of the
// student and instructor sheets are ignored.
func ReadXLSX(r io.Reader) (models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return models.Dataset{}, apperrors.NewFormatError("failed to open workbook", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing workbook")
		}
	}()

	var ds models.Dataset
	for _, kind := range models.Kinds {
		rows, err := f.GetRows(kind.Title())
		if err != nil {
			return models.Dataset{}, apperrors.NewFormatError("missing sheet "+kind.Title(), err)
		}
		if len(rows) == 0 {
			continue
		}
		cols, err := columnIndex(kind, rows[0])
		if err != nil {
			return models.Dataset{}, apperrors.NewFormatError(kind.Title()+" sheet", err)
		}
		for i, row := range rows[1:] {
			if err := appendRow(&ds, kind, cols.row(row)); err != nil {
				return models.Dataset{}, apperrors.NewFormatError(
					fmt.Sprintf("%s row %d", kind.Title(), i+2), err)
			}
		}
	}
	return ds, nil
}

// Columns each sheet must carry; the rest are derived on export.
var requiredColumns = map[models.Kind][]string{
	models.KindStudent:    {"student_id", "name", "age", "email"},
	models.KindInstructor: {"instructor_id", "name", "age", "email"},
	models.KindCourse:     {"course_id", "course_name", "instructor_id", "enrolled_students"},
}

// columns maps header names to cell positions
type columns map[string]int

func columnIndex(kind models.Kind, header []string) (columns, error) {
	cols := columns{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := cols[name]; name != "" && !seen {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns[kind] {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

// row returns the cells of raw keyed by header name. GetRows trims trailing
// empty cells, so short rows read as empty strings.
func (c columns) row(raw []string) map[string]string {
	cells := make(map[string]string, len(c))
	for name, i := range c {
		if i < len(raw) {
			cells[name] = raw[i]
		} else {
			cells[name] = ""
		}
	}
	return cells
}

func appendRow(ds *models.Dataset, kind models.Kind, row map[string]string) error {
	switch kind {
	case models.KindStudent:
		age, err := strconv.Atoi(row["age"])
		if err != nil {
			return fmt.Errorf("invalid age %q", row["age"])
		}
		ds.Students = append(ds.Students, models.Student{
			ID: row["student_id"], Name: row["name"], Age: age, Email: row["email"],
		})
	case models.KindInstructor:
		age, err := strconv.Atoi(row["age"])
		if err != nil {
			return fmt.Errorf("invalid age %q", row["age"])
		}
		ds.Instructors = append(ds.Instructors, models.Instructor{
			ID: row["instructor_id"], Name: row["name"], Age: age, Email: row["email"],
		})
	case models.KindCourse:
		ds.Courses = append(ds.Courses, models.Course{
			ID: row["course_id"], Title: row["course_name"], InstructorID: row["instructor_id"],
			StudentIDs: strings.Fields(row["enrolled_students"]),
		})
	}
	return nil
}

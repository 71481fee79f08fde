// Package persistence reads and writes the record set as JSON, CSV and XLSX.
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/filestorage"
)

// The raw* types mirror the file layout with pointer fields so that a
// missing key can be told apart from a zero value.
type rawStudent struct {
	ID        *string  `json:"student_id"`
	Name      *string  `json:"name"`
	Age       *int     `json:"age"`
	Email     *string  `json:"email"`
	CourseIDs []string `json:"registered_course_ids"`
}

type rawInstructor struct {
	ID        *string  `json:"instructor_id"`
	Name      *string  `json:"name"`
	Age       *int     `json:"age"`
	Email     *string  `json:"email"`
	CourseIDs []string `json:"assigned_course_ids"`
}

type rawCourse struct {
	ID           *string  `json:"course_id"`
	Title        *string  `json:"course_name"`
	InstructorID *string  `json:"instructor_id"`
	StudentIDs   []string `json:"enrolled_student_ids"`
}

type rawDataset struct {
	Students    []rawStudent    `json:"students"`
	Instructors []rawInstructor `json:"instructors"`
	Courses     []rawCourse     `json:"courses"`
}

// Encode writes ds as an indented JSON document.
func Encode(w io.Writer, ds models.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}

// Save writes ds to path. The previous file survives any failure.
func Save(path string, ds models.Dataset) error {
	return filestorage.WriteFileAtomic(path, func(w io.Writer) error {
		return Encode(w, ds)
	})
}

// Decode parses a JSON document into a dataset. Structural problems
// (malformed JSON, a non-object document, wrong types, missing required
// fields) are reported as format errors. Relations are not checked here.
func Decode(r io.Reader) (models.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Dataset{}, apperrors.NewFormatError("failed to read data file", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return models.Dataset{}, apperrors.NewFormatError("data file must contain a JSON object", nil)
	}

	var raw rawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Dataset{}, apperrors.NewFormatError("malformed JSON", err)
	}

	ds := models.Dataset{
		Students:    make([]models.Student, 0, len(raw.Students)),
		Instructors: make([]models.Instructor, 0, len(raw.Instructors)),
		Courses:     make([]models.Course, 0, len(raw.Courses)),
	}
	for i, s := range raw.Students {
		if err := missing("students", i, map[string]bool{
			"student_id": s.ID == nil, "name": s.Name == nil, "age": s.Age == nil, "email": s.Email == nil,
		}); err != nil {
			return models.Dataset{}, err
		}
		ds.Students = append(ds.Students, models.Student{
			ID: *s.ID, Name: *s.Name, Age: *s.Age, Email: *s.Email, CourseIDs: s.CourseIDs,
		})
	}
	for i, in := range raw.Instructors {
		if err := missing("instructors", i, map[string]bool{
			"instructor_id": in.ID == nil, "name": in.Name == nil, "age": in.Age == nil, "email": in.Email == nil,
		}); err != nil {
			return models.Dataset{}, err
		}
		ds.Instructors = append(ds.Instructors, models.Instructor{
			ID: *in.ID, Name: *in.Name, Age: *in.Age, Email: *in.Email, CourseIDs: in.CourseIDs,
		})
	}
	for i, c := range raw.Courses {
		if err := missing("courses", i, map[string]bool{
			"course_id": c.ID == nil, "course_name": c.Title == nil,
		}); err != nil {
			return models.Dataset{}, err
		}
		course := models.Course{ID: *c.ID, Title: *c.Title, StudentIDs: c.StudentIDs}
		if c.InstructorID != nil {
			course.InstructorID = *c.InstructorID
		}
		ds.Courses = append(ds.Courses, course)
	}
	return ds, nil
}

// missing reports the first absent required field, in a stable order.
func missing(list string, index int, absent map[string]bool) error {
	for _, field := range []string{
		"student_id", "instructor_id", "course_id", "name", "course_name", "age", "email",
	} {
		if absent[field] {
			return apperrors.NewFormatError(
				fmt.Sprintf("%s[%d]: missing required field %q", list, index, field), nil)
		}
	}
	return nil
}

// Load reads path and replaces the contents of repo with it. Any problem with
// the file, including dangling references or duplicate IDs, is a format error
// and leaves repo unchanged.
func Load(path string, repo *repositories.RecordRepository) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return err
	}
	if err := repo.Replace(ds); err != nil {
		return apperrors.NewFormatError("inconsistent data file", err)
	}
	return nil
}

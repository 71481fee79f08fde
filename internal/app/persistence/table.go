package persistence

import (
	"strconv"
	"strings"

	"github.com/yigit/schoolbook/internal/app/models"
)

// Column headers of the flat exports, per kind
var headers = map[models.Kind][]string{
	models.KindStudent:    {"student_id", "name", "age", "email", "registered_courses"},
	models.KindInstructor: {"instructor_id", "name", "age", "email", "assigned_courses"},
	models.KindCourse:     {"course_id", "course_name", "instructor_id", "instructor_name", "enrolled_students"},
}

// Header returns the export column names for kind.
func Header(kind models.Kind) []string {
	return append([]string(nil), headers[kind]...)
}

// Rows flattens one collection of ds into string rows. Relation lists are
// joined with single spaces.
func Rows(ds models.Dataset, kind models.Kind) [][]string {
	switch kind {
	case models.KindStudent:
		rows := make([][]string, 0, len(ds.Students))
		for _, s := range ds.Students {
			rows = append(rows, []string{s.ID, s.Name, strconv.Itoa(s.Age), s.Email, strings.Join(s.CourseIDs, " ")})
		}
		return rows
	case models.KindInstructor:
		rows := make([][]string, 0, len(ds.Instructors))
		for _, in := range ds.Instructors {
			rows = append(rows, []string{in.ID, in.Name, strconv.Itoa(in.Age), in.Email, strings.Join(in.CourseIDs, " ")})
		}
		return rows
	case models.KindCourse:
		names := make(map[string]string, len(ds.Instructors))
		for _, in := range ds.Instructors {
			names[in.ID] = in.Name
		}
		rows := make([][]string, 0, len(ds.Courses))
		for _, c := range ds.Courses {
			rows = append(rows, []string{c.ID, c.Title, c.InstructorID, names[c.InstructorID], strings.Join(c.StudentIDs, " ")})
		}
		return rows
	default:
		return nil
	}
}

package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

// Default records created on a first start
var (
	defaultInstructors = []models.Instructor{
		{ID: "I1", Name: "Grace Hopper", Age: 45, Email: "grace.hopper@school.edu"},
		{ID: "I2", Name: "Alan Turing", Age: 41, Email: "alan.turing@school.edu"},
	}
	defaultCourses = []models.Course{
		{ID: "CS101", Title: "Introduction to Programming", InstructorID: "I1"},
		{ID: "CS201", Title: "Compilers", InstructorID: "I1"},
		{ID: "MA110", Title: "Discrete Mathematics", InstructorID: "I2"},
	}
	defaultStudents = []models.Student{
		{ID: "S1", Name: "Ada Lovelace", Age: 20, Email: "ada.lovelace@school.edu", CourseIDs: []string{"CS101", "MA110"}},
		{ID: "S2", Name: "Edsger Dijkstra", Age: 22, Email: "edsger.dijkstra@school.edu", CourseIDs: []string{"CS201"}},
		{ID: "S3", Name: "Barbara Liskov", Age: 21, Email: "barbara.liskov@school.edu"},
	}
)

// CreateDefaultData adds the sample records. Records that already exist are
// left alone; other failures are collected and returned together.
func CreateDefaultData(ctx context.Context, records services.RecordService, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (instructors, courses, students)...")
	var finalErr error

	for _, in := range defaultInstructors {
		if _, err := records.CreateInstructor(ctx, in); err != nil && !exists(err) {
			lgr.Error().Err(err).Str("id", in.ID).Msg("Error creating default instructor")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, c := range defaultCourses {
		if _, err := records.CreateCourse(ctx, c); err != nil && !exists(err) {
			lgr.Error().Err(err).Str("id", c.ID).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, s := range defaultStudents {
		if _, err := records.CreateStudent(ctx, s); err != nil && !exists(err) {
			lgr.Error().Err(err).Str("id", s.ID).Msg("Error creating default student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Interface("stats", records.Stats(ctx)).Msg("Default data ready")
	}
	return finalErr
}

func exists(err error) bool {
	return apperrors.Is(err, apperrors.ErrDuplicateID, apperrors.ErrEmailAlreadyExists)
}

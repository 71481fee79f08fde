package services

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/repositories"
)

// SearchResult groups the matches of a query across every collection
type SearchResult struct {
	Students    []models.Student    `json:"students"`
	Instructors []models.Instructor `json:"instructors"`
	Courses     []models.Course     `json:"courses"`
}

// RecordService defines the interface for record operations
type RecordService interface {
	CreateStudent(ctx context.Context, s models.Student) (models.Student, error)
	UpdateStudent(ctx context.Context, id string, upd models.StudentUpdate) (models.Student, error)
	DeleteStudent(ctx context.Context, id string) error
	GetStudent(ctx context.Context, id string) (models.Student, error)
	SearchStudents(ctx context.Context, query string) iter.Seq[models.Student]

	CreateInstructor(ctx context.Context, in models.Instructor) (models.Instructor, error)
	UpdateInstructor(ctx context.Context, id string, upd models.InstructorUpdate) (models.Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error
	GetInstructor(ctx context.Context, id string) (models.Instructor, error)
	SearchInstructors(ctx context.Context, query string) iter.Seq[models.Instructor]

	CreateCourse(ctx context.Context, c models.Course) (models.Course, error)
	UpdateCourse(ctx context.Context, id string, upd models.CourseUpdate) (models.Course, error)
	DeleteCourse(ctx context.Context, id string) error
	GetCourse(ctx context.Context, id string) (models.Course, error)
	SearchCourses(ctx context.Context, query string) iter.Seq[models.Course]

	Delete(ctx context.Context, kind models.Kind, id string) error
	Register(ctx context.Context, studentID, courseID string) error
	Unregister(ctx context.Context, studentID, courseID string) error
	Assign(ctx context.Context, instructorID, courseID string) error
	Unassign(ctx context.Context, courseID string) error

	Search(ctx context.Context, query string) SearchResult
	Stats(ctx context.Context) models.Stats
}

// recordServiceImpl implements RecordService
type recordServiceImpl struct {
	repo          *repositories.RecordRepository
	fuzzyDistance int
	logger        zerolog.Logger
}

// NewRecordService creates a new RecordService. fuzzyDistance 0 disables
// typo-tolerant search.
func NewRecordService(repo *repositories.RecordRepository, fuzzyDistance int, logger zerolog.Logger) RecordService {
	return &recordServiceImpl{
		repo:          repo,
		fuzzyDistance: fuzzyDistance,
		logger:        logger,
	}
}

func (s *recordServiceImpl) query(text string) repositories.Query {
	return repositories.NewQuery(text, s.fuzzyDistance)
}

// logResult records the outcome of a mutation
func (s *recordServiceImpl) logResult(ctx context.Context, err error, action string, kind models.Kind, id string) {
	l := loggerFrom(ctx, s.logger)
	if err != nil {
		l.Warn().Err(err).Str("kind", string(kind)).Str("id", id).Msgf("Failed to %s record", action)
		return
	}
	l.Info().Str("kind", string(kind)).Str("id", id).Msgf("Record %sd", action)
}

// --- Students ---

// CreateStudent adds a student and returns it with its registrations
func (s *recordServiceImpl) CreateStudent(ctx context.Context, st models.Student) (models.Student, error) {
	err := s.repo.AddStudent(st)
	s.logResult(ctx, err, "create", models.KindStudent, st.ID)
	if err != nil {
		return models.Student{}, err
	}
	return s.repo.GetStudent(strings.TrimSpace(st.ID))
}

// UpdateStudent applies a partial update
func (s *recordServiceImpl) UpdateStudent(ctx context.Context, id string, upd models.StudentUpdate) (models.Student, error) {
	st, err := s.repo.EditStudent(id, upd)
	s.logResult(ctx, err, "update", models.KindStudent, id)
	return st, err
}

// DeleteStudent removes a student from every roster and the collection
func (s *recordServiceImpl) DeleteStudent(ctx context.Context, id string) error {
	err := s.repo.DeleteStudent(id)
	s.logResult(ctx, err, "delete", models.KindStudent, id)
	return err
}

// GetStudent retrieves a student by ID
func (s *recordServiceImpl) GetStudent(_ context.Context, id string) (models.Student, error) {
	return s.repo.GetStudent(id)
}

// SearchStudents yields matching students; an empty query yields all
func (s *recordServiceImpl) SearchStudents(_ context.Context, query string) iter.Seq[models.Student] {
	return s.repo.SearchStudents(s.query(query))
}

// --- Instructors ---

// CreateInstructor adds an instructor and returns it with its assignments
func (s *recordServiceImpl) CreateInstructor(ctx context.Context, in models.Instructor) (models.Instructor, error) {
	err := s.repo.AddInstructor(in)
	s.logResult(ctx, err, "create", models.KindInstructor, in.ID)
	if err != nil {
		return models.Instructor{}, err
	}
	return s.repo.GetInstructor(strings.TrimSpace(in.ID))
}

// UpdateInstructor applies a partial update
func (s *recordServiceImpl) UpdateInstructor(ctx context.Context, id string, upd models.InstructorUpdate) (models.Instructor, error) {
	in, err := s.repo.EditInstructor(id, upd)
	s.logResult(ctx, err, "update", models.KindInstructor, id)
	return in, err
}

// DeleteInstructor removes an instructor and unassigns its courses
func (s *recordServiceImpl) DeleteInstructor(ctx context.Context, id string) error {
	err := s.repo.DeleteInstructor(id)
	s.logResult(ctx, err, "delete", models.KindInstructor, id)
	return err
}

// GetInstructor retrieves an instructor by ID
func (s *recordServiceImpl) GetInstructor(_ context.Context, id string) (models.Instructor, error) {
	return s.repo.GetInstructor(id)
}

// SearchInstructors yields matching instructors
func (s *recordServiceImpl) SearchInstructors(_ context.Context, query string) iter.Seq[models.Instructor] {
	return s.repo.SearchInstructors(s.query(query))
}

// --- Courses ---

// CreateCourse adds a course and returns it with its roster
func (s *recordServiceImpl) CreateCourse(ctx context.Context, c models.Course) (models.Course, error) {
	err := s.repo.AddCourse(c)
	s.logResult(ctx, err, "create", models.KindCourse, c.ID)
	if err != nil {
		return models.Course{}, err
	}
	return s.repo.GetCourse(strings.TrimSpace(c.ID))
}

// UpdateCourse applies a partial update
func (s *recordServiceImpl) UpdateCourse(ctx context.Context, id string, upd models.CourseUpdate) (models.Course, error) {
	c, err := s.repo.EditCourse(id, upd)
	s.logResult(ctx, err, "update", models.KindCourse, id)
	return c, err
}

// DeleteCourse removes a course with its registrations and assignment
func (s *recordServiceImpl) DeleteCourse(ctx context.Context, id string) error {
	err := s.repo.DeleteCourse(id)
	s.logResult(ctx, err, "delete", models.KindCourse, id)
	return err
}

// GetCourse retrieves a course by ID
func (s *recordServiceImpl) GetCourse(_ context.Context, id string) (models.Course, error) {
	return s.repo.GetCourse(id)
}

// SearchCourses yields matching courses
func (s *recordServiceImpl) SearchCourses(_ context.Context, query string) iter.Seq[models.Course] {
	return s.repo.SearchCourses(s.query(query))
}

// --- Relations ---

// Delete removes a record of any kind
func (s *recordServiceImpl) Delete(ctx context.Context, kind models.Kind, id string) error {
	err := s.repo.Delete(kind, id)
	s.logResult(ctx, err, "delete", kind, id)
	return err
}

// Register enrolls a student in a course
func (s *recordServiceImpl) Register(ctx context.Context, studentID, courseID string) error {
	err := s.repo.Register(studentID, courseID)
	s.logRelation(ctx, err, "register", studentID, courseID)
	return err
}

// Unregister removes a student from a course
func (s *recordServiceImpl) Unregister(ctx context.Context, studentID, courseID string) error {
	err := s.repo.Unregister(studentID, courseID)
	s.logRelation(ctx, err, "unregister", studentID, courseID)
	return err
}

// Assign sets the instructor of a course
func (s *recordServiceImpl) Assign(ctx context.Context, instructorID, courseID string) error {
	err := s.repo.Assign(instructorID, courseID)
	s.logRelation(ctx, err, "assign", instructorID, courseID)
	return err
}

// Unassign clears the instructor of a course
func (s *recordServiceImpl) Unassign(ctx context.Context, courseID string) error {
	err := s.repo.Unassign(courseID)
	s.logRelation(ctx, err, "unassign", "", courseID)
	return err
}

func (s *recordServiceImpl) logRelation(ctx context.Context, err error, action, personID, courseID string) {
	l := loggerFrom(ctx, s.logger)
	event := l.Info()
	if err != nil {
		event = l.Warn().Err(err)
	}
	event.Str("action", action).Str("person", personID).Str("course", courseID).Msg("Relation change")
}

// --- Queries ---

// Search collects the matches of query in every collection
func (s *recordServiceImpl) Search(ctx context.Context, query string) SearchResult {
	return SearchResult{
		Students:    collect(s.SearchStudents(ctx, query)),
		Instructors: collect(s.SearchInstructors(ctx, query)),
		Courses:     collect(s.SearchCourses(ctx, query)),
	}
}

// Stats returns collection sizes
func (s *recordServiceImpl) Stats(_ context.Context) models.Stats {
	return s.repo.Stats()
}

// collect gathers a sequence into a non-nil slice
func collect[T any](seq iter.Seq[T]) []T {
	out := slices.Collect(seq)
	if out == nil {
		out = []T{}
	}
	return out
}

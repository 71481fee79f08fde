package repositories

import (
	"iter"
	"strings"
	"sync"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

// RecordRepository is the in-memory owner of the student, instructor and
// course collections. It is safe for concurrent use; a failed call never
// leaves a partial mutation behind.
type RecordRepository struct {
	mu sync.RWMutex
	st *state
}

// NewRecordRepository creates an empty repository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{st: newState()}
}

// NewRecordRepositoryFrom creates a repository holding ds.
func NewRecordRepositoryFrom(ds models.Dataset) (*RecordRepository, error) {
	st, err := stateFromDataset(ds)
	if err != nil {
		return nil, err
	}
	return &RecordRepository{st: st}, nil
}

// --- Students ---

// AddStudent inserts a student and registers it for s.CourseIDs
func (r *RecordRepository) AddStudent(s models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.addStudent(s)
}

// EditStudent updates a student in place; renaming rewrites every roster
func (r *RecordRepository) EditStudent(id string, upd models.StudentUpdate) (models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.editStudent(id, upd)
}

// DeleteStudent removes a student and drops it from every roster
func (r *RecordRepository) DeleteStudent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteStudent(id)
}

// GetStudent retrieves a student by ID
func (r *RecordRepository) GetStudent(id string) (models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.st.students[id]; !ok {
		return models.Student{}, apperrors.NewNotFoundError(string(models.KindStudent), id)
	}
	return r.st.student(id), nil
}

// Students returns every student ordered by ID
func (r *RecordRepository) Students() []models.Student {
	return r.Snapshot().Students
}

// --- Instructors ---

// AddInstructor inserts an instructor and assigns it to in.CourseIDs
func (r *RecordRepository) AddInstructor(in models.Instructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.addInstructor(in)
}

// EditInstructor updates an instructor in place
func (r *RecordRepository) EditInstructor(id string, upd models.InstructorUpdate) (models.Instructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.editInstructor(id, upd)
}

// DeleteInstructor removes an instructor and clears it from the courses it taught
func (r *RecordRepository) DeleteInstructor(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteInstructor(id)
}

// GetInstructor retrieves an instructor by ID
func (r *RecordRepository) GetInstructor(id string) (models.Instructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.st.instructors[id]; !ok {
		return models.Instructor{}, apperrors.NewNotFoundError(string(models.KindInstructor), id)
	}
	return r.st.instructor(id), nil
}

// Instructors returns every instructor ordered by ID
func (r *RecordRepository) Instructors() []models.Instructor {
	return r.Snapshot().Instructors
}

// --- Courses ---

// AddCourse inserts a course with its optional instructor and roster
func (r *RecordRepository) AddCourse(c models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.addCourse(c)
}

// EditCourse updates a course in place
func (r *RecordRepository) EditCourse(id string, upd models.CourseUpdate) (models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.editCourse(id, upd)
}

// DeleteCourse removes a course; registrations and the assignment go with it
func (r *RecordRepository) DeleteCourse(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteCourse(id)
}

// GetCourse retrieves a course by ID
func (r *RecordRepository) GetCourse(id string) (models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.st.courses[id]; !ok {
		return models.Course{}, apperrors.NewNotFoundError(string(models.KindCourse), id)
	}
	return r.st.course(id), nil
}

// Courses returns every course ordered by ID
func (r *RecordRepository) Courses() []models.Course {
	return r.Snapshot().Courses
}

// Delete removes a record of any kind
func (r *RecordRepository) Delete(kind models.Kind, id string) error {
	switch kind {
	case models.KindStudent:
		return r.DeleteStudent(id)
	case models.KindInstructor:
		return r.DeleteInstructor(id)
	case models.KindCourse:
		return r.DeleteCourse(id)
	default:
		return apperrors.NewValidationError("kind", "unknown record kind "+string(kind))
	}
}

// --- Relations ---

// Register enrolls a student in a course. Registering twice is a no-op.
func (r *RecordRepository) Register(studentID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.register(strings.TrimSpace(studentID), strings.TrimSpace(courseID))
}

// Unregister removes a student from a course roster. Both records must exist.
func (r *RecordRepository) Unregister(studentID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.unregister(strings.TrimSpace(studentID), strings.TrimSpace(courseID))
}

// Assign makes an instructor the teacher of a course, replacing any previous one
func (r *RecordRepository) Assign(instructorID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.assign(strings.TrimSpace(instructorID), strings.TrimSpace(courseID))
}

// Unassign clears the instructor of a course
func (r *RecordRepository) Unassign(courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.unassign(strings.TrimSpace(courseID))
}

// --- Search ---

// SearchStudents yields the students matching q. The sequence re-reads the
// repository each time it is ranged over.
func (r *RecordRepository) SearchStudents(q Query) iter.Seq[models.Student] {
	return func(yield func(models.Student) bool) {
		for _, s := range r.Students() {
			if q.Match(s.ID, s.Name, strings.Join(s.CourseIDs, " ")) && !yield(s) {
				return
			}
		}
	}
}

// SearchInstructors yields the instructors matching q
func (r *RecordRepository) SearchInstructors(q Query) iter.Seq[models.Instructor] {
	return func(yield func(models.Instructor) bool) {
		for _, in := range r.Instructors() {
			if q.Match(in.ID, in.Name, strings.Join(in.CourseIDs, " ")) && !yield(in) {
				return
			}
		}
	}
}

// SearchCourses yields the courses matching q
func (r *RecordRepository) SearchCourses(q Query) iter.Seq[models.Course] {
	return func(yield func(models.Course) bool) {
		for _, c := range r.Courses() {
			if q.Match(c.ID, c.Title, strings.Join(c.StudentIDs, " ")) && !yield(c) {
				return
			}
		}
	}
}

// --- Whole state ---

// Snapshot returns a deep copy of the full state with derived relation lists
func (r *RecordRepository) Snapshot() models.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.dataset()
}

// Replace swaps the full state for ds. ds is validated completely first; on
// error the repository is unchanged.
func (r *RecordRepository) Replace(ds models.Dataset) error {
	st, err := stateFromDataset(ds)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.st = st
	r.mu.Unlock()
	return nil
}

// Stats returns collection sizes
func (r *RecordRepository) Stats() models.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.stats()
}

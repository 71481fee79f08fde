package repositories

import (
	"maps"
	"slices"
	"strings"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/validation"
)

// courseRecord holds a course and its roster. Both relations live here;
// student and instructor course lists are derived from it.
type courseRecord struct {
	course models.Course
	roster map[string]struct{}
}

// state is the unsynchronised collection set. Every mutating method checks
// all of its preconditions before touching any map.
type state struct {
	students    map[string]models.Student
	instructors map[string]models.Instructor
	courses     map[string]*courseRecord
}

func newState() *state {
	return &state{
		students:    map[string]models.Student{},
		instructors: map[string]models.Instructor{},
		courses:     map[string]*courseRecord{},
	}
}

// --- normalisation and checks ---

func normalizeStudent(s models.Student) models.Student {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.CourseIDs = trimAll(s.CourseIDs)
	return s
}

func normalizeInstructor(in models.Instructor) models.Instructor {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.CourseIDs = trimAll(in.CourseIDs)
	return in
}

func normalizeCourse(c models.Course) models.Course {
	c.ID = strings.TrimSpace(c.ID)
	c.Title = strings.TrimSpace(c.Title)
	c.InstructorID = strings.TrimSpace(c.InstructorID)
	c.StudentIDs = trimAll(c.StudentIDs)
	return c
}

func trimAll(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.TrimSpace(id)
	}
	return out
}

// emailInUse reports whether email belongs to any student or instructor other
// than the one identified by (exceptKind, exceptID).
func (st *state) emailInUse(email string, exceptKind models.Kind, exceptID string) bool {
	for id, s := range st.students {
		if strings.EqualFold(s.Email, email) && !(exceptKind == models.KindStudent && id == exceptID) {
			return true
		}
	}
	for id, in := range st.instructors {
		if strings.EqualFold(in.Email, email) && !(exceptKind == models.KindInstructor && id == exceptID) {
			return true
		}
	}
	return false
}

func (st *state) requireCourses(field string, ids []string) error {
	for _, id := range ids {
		if _, ok := st.courses[id]; !ok {
			return apperrors.NewValidationError(field, "unknown course "+id)
		}
	}
	return nil
}

// requireUnassigned rejects courses already taught by someone other than
// instructorID. Reassignment goes through assign.
func (st *state) requireUnassigned(instructorID string, courseIDs []string) error {
	for _, cid := range courseIDs {
		c := st.courses[cid].course
		if c.HasInstructor() && c.InstructorID != instructorID {
			return apperrors.NewValidationError("assigned_course_ids",
				"course "+cid+" is assigned to "+c.InstructorID+", not "+instructorID)
		}
	}
	return nil
}

// --- students ---

func (st *state) addStudent(s models.Student) error {
	s = normalizeStudent(s)
	if err := validation.Struct(s); err != nil {
		return err
	}
	if _, ok := st.students[s.ID]; ok {
		return apperrors.NewDuplicateIDError(string(models.KindStudent), s.ID)
	}
	if st.emailInUse(s.Email, "", "") {
		return apperrors.NewEmailConflictError(s.Email)
	}
	if err := st.requireCourses("registered_course_ids", s.CourseIDs); err != nil {
		return err
	}

	courseIDs := s.CourseIDs
	s.CourseIDs = nil
	st.students[s.ID] = s
	for _, cid := range courseIDs {
		st.courses[cid].roster[s.ID] = struct{}{}
	}
	return nil
}

func (st *state) editStudent(id string, upd models.StudentUpdate) (models.Student, error) {
	cur, ok := st.students[id]
	if !ok {
		return models.Student{}, apperrors.NewNotFoundError(string(models.KindStudent), id)
	}
	next := normalizeStudent(upd.Apply(cur))
	next.CourseIDs = nil
	if err := validation.Struct(next); err != nil {
		return models.Student{}, err
	}
	if next.ID != id {
		if _, taken := st.students[next.ID]; taken {
			return models.Student{}, apperrors.NewDuplicateIDError(string(models.KindStudent), next.ID)
		}
	}
	if st.emailInUse(next.Email, models.KindStudent, id) {
		return models.Student{}, apperrors.NewEmailConflictError(next.Email)
	}

	if next.ID != id {
		delete(st.students, id)
		for _, rec := range st.courses {
			if _, enrolled := rec.roster[id]; enrolled {
				delete(rec.roster, id)
				rec.roster[next.ID] = struct{}{}
			}
		}
	}
	st.students[next.ID] = next
	return st.student(next.ID), nil
}

func (st *state) deleteStudent(id string) error {
	if _, ok := st.students[id]; !ok {
		return apperrors.NewNotFoundError(string(models.KindStudent), id)
	}
	for _, rec := range st.courses {
		delete(rec.roster, id)
	}
	delete(st.students, id)
	return nil
}

// student returns the stored student with its derived course list.
func (st *state) student(id string) models.Student {
	s := st.students[id]
	s.CourseIDs = []string{}
	for _, cid := range st.sortedCourseIDs() {
		if _, ok := st.courses[cid].roster[id]; ok {
			s.CourseIDs = append(s.CourseIDs, cid)
		}
	}
	return s
}

// --- instructors ---

func (st *state) addInstructor(in models.Instructor) error {
	in = normalizeInstructor(in)
	if err := validation.Struct(in); err != nil {
		return err
	}
	if _, ok := st.instructors[in.ID]; ok {
		return apperrors.NewDuplicateIDError(string(models.KindInstructor), in.ID)
	}
	if st.emailInUse(in.Email, "", "") {
		return apperrors.NewEmailConflictError(in.Email)
	}
	if err := st.requireCourses("assigned_course_ids", in.CourseIDs); err != nil {
		return err
	}
	if err := st.requireUnassigned(in.ID, in.CourseIDs); err != nil {
		return err
	}

	courseIDs := in.CourseIDs
	in.CourseIDs = nil
	st.instructors[in.ID] = in
	for _, cid := range courseIDs {
		st.courses[cid].course.InstructorID = in.ID
	}
	return nil
}

func (st *state) editInstructor(id string, upd models.InstructorUpdate) (models.Instructor, error) {
	cur, ok := st.instructors[id]
	if !ok {
		return models.Instructor{}, apperrors.NewNotFoundError(string(models.KindInstructor), id)
	}
	next := normalizeInstructor(upd.Apply(cur))
	next.CourseIDs = nil
	if err := validation.Struct(next); err != nil {
		return models.Instructor{}, err
	}
	if next.ID != id {
		if _, taken := st.instructors[next.ID]; taken {
			return models.Instructor{}, apperrors.NewDuplicateIDError(string(models.KindInstructor), next.ID)
		}
	}
	if st.emailInUse(next.Email, models.KindInstructor, id) {
		return models.Instructor{}, apperrors.NewEmailConflictError(next.Email)
	}

	if next.ID != id {
		delete(st.instructors, id)
		for _, rec := range st.courses {
			if rec.course.InstructorID == id {
				rec.course.InstructorID = next.ID
			}
		}
	}
	st.instructors[next.ID] = next
	return st.instructor(next.ID), nil
}

func (st *state) deleteInstructor(id string) error {
	if _, ok := st.instructors[id]; !ok {
		return apperrors.NewNotFoundError(string(models.KindInstructor), id)
	}
	for _, rec := range st.courses {
		if rec.course.InstructorID == id {
			rec.course.InstructorID = ""
		}
	}
	delete(st.instructors, id)
	return nil
}

func (st *state) instructor(id string) models.Instructor {
	in := st.instructors[id]
	in.CourseIDs = []string{}
	for _, cid := range st.sortedCourseIDs() {
		if st.courses[cid].course.InstructorID == id {
			in.CourseIDs = append(in.CourseIDs, cid)
		}
	}
	return in
}

// --- courses ---

func (st *state) addCourse(c models.Course) error {
	c = normalizeCourse(c)
	if err := validation.Struct(c); err != nil {
		return err
	}
	if _, ok := st.courses[c.ID]; ok {
		return apperrors.NewDuplicateIDError(string(models.KindCourse), c.ID)
	}
	if c.HasInstructor() {
		if _, ok := st.instructors[c.InstructorID]; !ok {
			return apperrors.NewValidationError("instructor_id", "unknown instructor "+c.InstructorID)
		}
	}
	for _, sid := range c.StudentIDs {
		if _, ok := st.students[sid]; !ok {
			return apperrors.NewValidationError("enrolled_student_ids", "unknown student "+sid)
		}
	}

	rec := &courseRecord{roster: make(map[string]struct{}, len(c.StudentIDs))}
	for _, sid := range c.StudentIDs {
		rec.roster[sid] = struct{}{}
	}
	c.StudentIDs = nil
	rec.course = c
	st.courses[c.ID] = rec
	return nil
}

func (st *state) editCourse(id string, upd models.CourseUpdate) (models.Course, error) {
	rec, ok := st.courses[id]
	if !ok {
		return models.Course{}, apperrors.NewNotFoundError(string(models.KindCourse), id)
	}
	next := normalizeCourse(upd.Apply(rec.course))
	if err := validation.Struct(next); err != nil {
		return models.Course{}, err
	}
	if next.ID != id {
		if _, taken := st.courses[next.ID]; taken {
			return models.Course{}, apperrors.NewDuplicateIDError(string(models.KindCourse), next.ID)
		}
	}
	if next.HasInstructor() {
		if _, ok := st.instructors[next.InstructorID]; !ok {
			return models.Course{}, apperrors.NewValidationError("instructor_id", "unknown instructor "+next.InstructorID)
		}
	}

	rec.course = next
	if next.ID != id {
		delete(st.courses, id)
		st.courses[next.ID] = rec
	}
	return st.course(next.ID), nil
}

func (st *state) deleteCourse(id string) error {
	if _, ok := st.courses[id]; !ok {
		return apperrors.NewNotFoundError(string(models.KindCourse), id)
	}
	// Student and instructor views are derived from the course, so removing
	// it clears both sides at once.
	delete(st.courses, id)
	return nil
}

func (st *state) course(id string) models.Course {
	rec := st.courses[id]
	c := rec.course
	c.StudentIDs = slices.Sorted(maps.Keys(rec.roster))
	return c
}

func (st *state) sortedCourseIDs() []string {
	return slices.Sorted(maps.Keys(st.courses))
}

// --- relations ---

func (st *state) register(studentID, courseID string) error {
	if _, ok := st.students[studentID]; !ok {
		return apperrors.NewNotFoundError(string(models.KindStudent), studentID)
	}
	rec, ok := st.courses[courseID]
	if !ok {
		return apperrors.NewNotFoundError(string(models.KindCourse), courseID)
	}
	rec.roster[studentID] = struct{}{}
	return nil
}

func (st *state) unregister(studentID, courseID string) error {
	if _, ok := st.students[studentID]; !ok {
		return apperrors.NewNotFoundError(string(models.KindStudent), studentID)
	}
	rec, ok := st.courses[courseID]
	if !ok {
		return apperrors.NewNotFoundError(string(models.KindCourse), courseID)
	}
	delete(rec.roster, studentID)
	return nil
}

func (st *state) assign(instructorID, courseID string) error {
	if _, ok := st.instructors[instructorID]; !ok {
		return apperrors.NewNotFoundError(string(models.KindInstructor), instructorID)
	}
	rec, ok := st.courses[courseID]
	if !ok {
		return apperrors.NewNotFoundError(string(models.KindCourse), courseID)
	}
	rec.course.InstructorID = instructorID
	return nil
}

func (st *state) unassign(courseID string) error {
	rec, ok := st.courses[courseID]
	if !ok {
		return apperrors.NewNotFoundError(string(models.KindCourse), courseID)
	}
	rec.course.InstructorID = ""
	return nil
}

// --- whole-state views ---

func (st *state) dataset() models.Dataset {
	ds := models.Dataset{
		Students:    make([]models.Student, 0, len(st.students)),
		Instructors: make([]models.Instructor, 0, len(st.instructors)),
		Courses:     make([]models.Course, 0, len(st.courses)),
	}

	courseIDs := st.sortedCourseIDs()
	byStudent := make(map[string][]string, len(st.students))
	byInstructor := make(map[string][]string, len(st.instructors))
	for _, cid := range courseIDs {
		rec := st.courses[cid]
		for sid := range rec.roster {
			byStudent[sid] = append(byStudent[sid], cid)
		}
		if rec.course.HasInstructor() {
			byInstructor[rec.course.InstructorID] = append(byInstructor[rec.course.InstructorID], cid)
		}
		ds.Courses = append(ds.Courses, st.course(cid))
	}

	for _, id := range slices.Sorted(maps.Keys(st.students)) {
		s := st.students[id]
		s.CourseIDs = nonNil(byStudent[id])
		ds.Students = append(ds.Students, s)
	}
	for _, id := range slices.Sorted(maps.Keys(st.instructors)) {
		in := st.instructors[id]
		in.CourseIDs = nonNil(byInstructor[id])
		ds.Instructors = append(ds.Instructors, in)
	}
	return ds
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// stateFromDataset rebuilds a state from a dataset. Courses are the
// authoritative side; student and instructor course lists are merged in as
// additional relations and must agree with the course records.
func stateFromDataset(ds models.Dataset) (*state, error) {
	st := newState()

	for _, in := range ds.Instructors {
		in.CourseIDs = nil
		if err := st.addInstructor(in); err != nil {
			return nil, err
		}
	}
	for _, s := range ds.Students {
		s.CourseIDs = nil
		if err := st.addStudent(s); err != nil {
			return nil, err
		}
	}
	for _, c := range ds.Courses {
		if err := st.addCourse(c); err != nil {
			return nil, err
		}
	}

	for _, s := range ds.Students {
		for _, cid := range trimAll(s.CourseIDs) {
			if err := st.register(strings.TrimSpace(s.ID), cid); err != nil {
				return nil, apperrors.NewValidationError("registered_course_ids", err.Error())
			}
		}
	}
	for _, in := range ds.Instructors {
		iid := strings.TrimSpace(in.ID)
		for _, cid := range trimAll(in.CourseIDs) {
			if err := st.requireCourses("assigned_course_ids", []string{cid}); err != nil {
				return nil, err
			}
			if err := st.requireUnassigned(iid, []string{cid}); err != nil {
				return nil, err
			}
			st.courses[cid].course.InstructorID = iid
		}
	}
	return st, nil
}

func (st *state) stats() models.Stats {
	stats := models.Stats{
		Students:    len(st.students),
		Instructors: len(st.instructors),
		Courses:     len(st.courses),
	}
	for _, rec := range st.courses {
		stats.Registrations += len(rec.roster)
	}
	return stats
}

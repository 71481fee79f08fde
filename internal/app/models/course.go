package models

// Course is the authoritative holder of both relations: its roster and its
// (optional) instructor.
type Course struct {
	ID           string   `json:"course_id" validate:"notblank" example:"C1"`
	Title        string   `json:"course_name" validate:"notblank,max=100" example:"Compilers"`
	InstructorID string   `json:"instructor_id,omitempty" example:"I1"`
	StudentIDs   []string `json:"enrolled_student_ids" validate:"unique,dive,notblank"`
}

// HasInstructor reports whether an instructor is assigned.
func (c Course) HasInstructor() bool {
	return c.InstructorID != ""
}

// CourseUpdate carries the fields of an edit; nil fields are left unchanged.
// A non-nil empty InstructorID clears the assignment.
type CourseUpdate struct {
	ID           *string `json:"course_id,omitempty"`
	Title        *string `json:"course_name,omitempty"`
	InstructorID *string `json:"instructor_id,omitempty"`
}

// Apply returns c with the non-nil fields of u applied.
func (u CourseUpdate) Apply(c Course) Course {
	if u.ID != nil {
		c.ID = *u.ID
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.InstructorID != nil {
		c.InstructorID = *u.InstructorID
	}
	return c
}

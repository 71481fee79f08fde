package models

// Instructor teaches zero or more courses. CourseIDs is derived from the
// courses naming this instructor.
type Instructor struct {
	ID        string   `json:"instructor_id" validate:"notblank" example:"I1"`
	Name      string   `json:"name" validate:"notblank,max=100" example:"Grace Hopper"`
	Age       int      `json:"age" validate:"gte=0" example:"45"`
	Email     string   `json:"email" validate:"contact_email" example:"grace@school.edu"`
	CourseIDs []string `json:"assigned_course_ids" validate:"unique,dive,notblank"`
}

// InstructorUpdate carries the fields of an edit; nil fields are left unchanged.
type InstructorUpdate struct {
	ID    *string `json:"instructor_id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Age   *int    `json:"age,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Apply returns in with the non-nil fields of u applied.
func (u InstructorUpdate) Apply(in Instructor) Instructor {
	if u.ID != nil {
		in.ID = *u.ID
	}
	if u.Name != nil {
		in.Name = *u.Name
	}
	if u.Age != nil {
		in.Age = *u.Age
	}
	if u.Email != nil {
		in.Email = *u.Email
	}
	return in
}

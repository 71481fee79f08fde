package models

// Student is a person registered for zero or more courses.
// CourseIDs is derived from course rosters when read from the repository.
type Student struct {
	ID        string   `json:"student_id" validate:"notblank" example:"S1"`
	Name      string   `json:"name" validate:"notblank,max=100" example:"Ada Lovelace"`
	Age       int      `json:"age" validate:"gte=0" example:"20"`
	Email     string   `json:"email" validate:"contact_email" example:"ada@school.edu"`
	CourseIDs []string `json:"registered_course_ids" validate:"unique,dive,notblank"`
}

// StudentUpdate carries the fields of an edit; nil fields are left unchanged.
type StudentUpdate struct {
	ID    *string `json:"student_id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Age   *int    `json:"age,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Apply returns s with the non-nil fields of u applied.
func (u StudentUpdate) Apply(s Student) Student {
	if u.ID != nil {
		s.ID = *u.ID
	}
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Age != nil {
		s.Age = *u.Age
	}
	if u.Email != nil {
		s.Email = *u.Email
	}
	return s
}

package dto

import (
	"github.com/yigit/schoolbook/internal/app/models"
)

// CreateStudentRequest represents the body of a new student
type CreateStudentRequest struct {
	ID        string   `json:"student_id" binding:"required" example:"S1"`
	Name      string   `json:"name" binding:"required" example:"Ada Lovelace"`
	Age       int      `json:"age" binding:"gte=0" example:"20"`
	Email     string   `json:"email" binding:"required" example:"ada@school.edu"`
	CourseIDs []string `json:"registered_course_ids,omitempty"`
}

// ToModel converts the request into a student record
func (r CreateStudentRequest) ToModel() models.Student {
	return models.Student{ID: r.ID, Name: r.Name, Age: r.Age, Email: r.Email, CourseIDs: r.CourseIDs}
}

// UpdateStudentRequest carries the fields to change; absent fields stay as they are
type UpdateStudentRequest struct {
	ID    *string `json:"student_id,omitempty" example:"S10"`
	Name  *string `json:"name,omitempty"`
	Age   *int    `json:"age,omitempty" binding:"omitempty,gte=0"`
	Email *string `json:"email,omitempty"`
}

// ToUpdate converts the request into a partial update
func (r UpdateStudentRequest) ToUpdate() models.StudentUpdate {
	return models.StudentUpdate{ID: r.ID, Name: r.Name, Age: r.Age, Email: r.Email}
}

// CreateInstructorRequest represents the body of a new instructor
type CreateInstructorRequest struct {
	ID        string   `json:"instructor_id" binding:"required" example:"I1"`
	Name      string   `json:"name" binding:"required" example:"Grace Hopper"`
	Age       int      `json:"age" binding:"gte=0" example:"45"`
	Email     string   `json:"email" binding:"required" example:"grace@school.edu"`
	CourseIDs []string `json:"assigned_course_ids,omitempty"`
}

// ToModel converts the request into an instructor record
func (r CreateInstructorRequest) ToModel() models.Instructor {
	return models.Instructor{ID: r.ID, Name: r.Name, Age: r.Age, Email: r.Email, CourseIDs: r.CourseIDs}
}

// UpdateInstructorRequest carries the fields to change
type UpdateInstructorRequest struct {
	ID    *string `json:"instructor_id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Age   *int    `json:"age,omitempty" binding:"omitempty,gte=0"`
	Email *string `json:"email,omitempty"`
}

// ToUpdate converts the request into a partial update
func (r UpdateInstructorRequest) ToUpdate() models.InstructorUpdate {
	return models.InstructorUpdate{ID: r.ID, Name: r.Name, Age: r.Age, Email: r.Email}
}

// CreateCourseRequest represents the body of a new course
type CreateCourseRequest struct {
	ID           string   `json:"course_id" binding:"required" example:"C1"`
	Title        string   `json:"course_name" binding:"required" example:"Compilers"`
	InstructorID string   `json:"instructor_id,omitempty" example:"I1"`
	StudentIDs   []string `json:"enrolled_student_ids,omitempty"`
}

// ToModel converts the request into a course record
func (r CreateCourseRequest) ToModel() models.Course {
	return models.Course{ID: r.ID, Title: r.Title, InstructorID: r.InstructorID, StudentIDs: r.StudentIDs}
}

// UpdateCourseRequest carries the fields to change. An empty instructor_id
// clears the assignment.
type UpdateCourseRequest struct {
	ID           *string `json:"course_id,omitempty"`
	Title        *string `json:"course_name,omitempty"`
	InstructorID *string `json:"instructor_id,omitempty"`
}

// ToUpdate converts the request into a partial update
func (r UpdateCourseRequest) ToUpdate() models.CourseUpdate {
	return models.CourseUpdate{ID: r.ID, Title: r.Title, InstructorID: r.InstructorID}
}

// DataFileRequest names a file inside the data directory
type DataFileRequest struct {
	File string `json:"file" example:"school.json"`
}

// ExportRequest selects what POST /data/export writes
type ExportRequest struct {
	Kind   string `json:"kind" example:"student" enums:"student,instructor,course,all"`
	Format string `json:"format" example:"csv" enums:"csv,xlsx,json"`
	File   string `json:"file,omitempty" example:"students.csv"`
}

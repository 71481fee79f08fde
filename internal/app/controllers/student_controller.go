package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolbook/internal/app/models/dto"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/middleware"
)

// StudentController handles student-related operations
type StudentController struct {
	recordService services.RecordService
}

// NewStudentController creates a new StudentController
func NewStudentController(recordService services.RecordService) *StudentController {
	return &StudentController{
		recordService: recordService,
	}
}

// CreateStudent handles student creation
// @Summary Create a new student
// @Description Adds a student and registers it for any listed courses
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown course"
// @Failure 409 {object} dto.ErrorResponse "Student ID or email already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.recordService.CreateStudent(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, student, "Student created successfully")
}

// ListStudents lists students, optionally filtered
// @Summary List students
// @Description Lists students ordered by ID. q filters by ID, name or course ID.
// @Tags students
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Student]} "Students retrieved successfully"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	respondPage(ctx, c.recordService.SearchStudents(ctx.Request.Context(), ctx.Query("q")))
}

// GetStudent retrieves a student by ID
// @Summary Get student details
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.recordService.GetStudent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, student, "")
}

// UpdateStudent edits a student
// @Summary Update a student
// @Description Changes the given fields. A new student_id is carried into every course roster.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student ID or email already exists"
// @Router /students/{id} [patch]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.recordService.UpdateStudent(ctx.Request.Context(), ctx.Param("id"), req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, student, "Student updated successfully")
}

// DeleteStudent removes a student
// @Summary Delete a student
// @Description Removes the student and drops it from every course roster
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse "Student deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	if err := c.recordService.DeleteStudent(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Student deleted successfully")
}

// RegisterCourse enrolls a student in a course
// @Summary Register a student for a course
// @Description Registering an already registered student is a no-op
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student registered successfully"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Router /students/{id}/courses/{courseId} [put]
func (c *StudentController) RegisterCourse(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	if err := c.recordService.Register(reqCtx, ctx.Param("id"), ctx.Param("courseId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.recordService.GetStudent(reqCtx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, student, "Student registered successfully")
}

// UnregisterCourse removes a student from a course
// @Summary Unregister a student from a course
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student unregistered successfully"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Router /students/{id}/courses/{courseId} [delete]
func (c *StudentController) UnregisterCourse(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	if err := c.recordService.Unregister(reqCtx, ctx.Param("id"), ctx.Param("courseId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.recordService.GetStudent(reqCtx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, student, "Student unregistered successfully")
}

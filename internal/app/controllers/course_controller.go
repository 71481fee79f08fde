package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolbook/internal/app/models/dto"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/middleware"
)

// CourseController handles course-related operations
type CourseController struct {
	recordService services.RecordService
}

// NewCourseController creates a new CourseController
func NewCourseController(recordService services.RecordService) *CourseController {
	return &CourseController{
		recordService: recordService,
	}
}

// AssignInstructorRequest names the instructor of a course
type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id" binding:"required" example:"I1"`
}

// CreateCourse handles course creation
// @Summary Create a new course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown instructor or student"
// @Failure 409 {object} dto.ErrorResponse "Course ID already exists"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.recordService.CreateCourse(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, course, "Course created successfully")
}

// ListCourses lists courses, optionally filtered
// @Summary List courses
// @Tags courses
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Course]} "Courses retrieved successfully"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	respondPage(ctx, c.recordService.SearchCourses(ctx.Request.Context(), ctx.Query("q")))
}

// GetCourse retrieves a course by ID
// @Summary Get course details
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.recordService.GetCourse(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, course, "")
}

// UpdateCourse edits a course
// @Summary Update a course
// @Description Changes the given fields. An empty instructor_id clears the assignment.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course ID already exists"
// @Router /courses/{id} [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req dto.UpdateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.recordService.UpdateCourse(ctx.Request.Context(), ctx.Param("id"), req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, course, "Course updated successfully")
}

// DeleteCourse removes a course
// @Summary Delete a course
// @Description Removes the course together with its registrations and assignment
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse "Course deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.recordService.DeleteCourse(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Course deleted successfully")
}

// AssignInstructor sets the instructor of a course
// @Summary Assign an instructor to a course
// @Description Replaces any previous instructor
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body AssignInstructorRequest true "Instructor"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Instructor assigned successfully"
// @Failure 404 {object} dto.ErrorResponse "Course or instructor not found"
// @Router /courses/{id}/instructor [put]
func (c *CourseController) AssignInstructor(ctx *gin.Context) {
	var req AssignInstructorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	reqCtx := ctx.Request.Context()
	if err := c.recordService.Assign(reqCtx, req.InstructorID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.recordService.GetCourse(reqCtx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, course, "Instructor assigned successfully")
}

// UnassignInstructor clears the instructor of a course
// @Summary Remove the instructor of a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Instructor removed successfully"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/instructor [delete]
func (c *CourseController) UnassignInstructor(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	if err := c.recordService.Unassign(reqCtx, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.recordService.GetCourse(reqCtx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, course, "Instructor removed successfully")
}

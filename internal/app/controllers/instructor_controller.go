package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolbook/internal/app/models/dto"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/middleware"
)

// InstructorController handles instructor-related operations
type InstructorController struct {
	recordService services.RecordService
}

// NewInstructorController creates a new InstructorController
func NewInstructorController(recordService services.RecordService) *InstructorController {
	return &InstructorController{
		recordService: recordService,
	}
}

// CreateInstructor handles instructor creation
// @Summary Create a new instructor
// @Description Adds an instructor and assigns it to any listed courses
// @Tags instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInstructorRequest true "Instructor information"
// @Success 201 {object} dto.APIResponse{data=models.Instructor} "Instructor created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown course"
// @Failure 409 {object} dto.ErrorResponse "Instructor ID or email already exists"
// @Router /instructors [post]
func (c *InstructorController) CreateInstructor(ctx *gin.Context) {
	var req dto.CreateInstructorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	instructor, err := c.recordService.CreateInstructor(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, instructor, "Instructor created successfully")
}

// ListInstructors lists instructors, optionally filtered
// @Summary List instructors
// @Tags instructors
// @Produce json
// @Param q query string false "Search text"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Instructor]} "Instructors retrieved successfully"
// @Router /instructors [get]
func (c *InstructorController) ListInstructors(ctx *gin.Context) {
	respondPage(ctx, c.recordService.SearchInstructors(ctx.Request.Context(), ctx.Query("q")))
}

// GetInstructor retrieves an instructor by ID
// @Summary Get instructor details
// @Tags instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} dto.APIResponse{data=models.Instructor} "Instructor retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Router /instructors/{id} [get]
func (c *InstructorController) GetInstructor(ctx *gin.Context) {
	instructor, err := c.recordService.GetInstructor(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, instructor, "")
}

// UpdateInstructor edits an instructor
// @Summary Update an instructor
// @Tags instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor ID"
// @Param request body dto.UpdateInstructorRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Instructor} "Instructor updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Failure 409 {object} dto.ErrorResponse "Instructor ID or email already exists"
// @Router /instructors/{id} [patch]
func (c *InstructorController) UpdateInstructor(ctx *gin.Context) {
	var req dto.UpdateInstructorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	instructor, err := c.recordService.UpdateInstructor(ctx.Request.Context(), ctx.Param("id"), req.ToUpdate())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, instructor, "Instructor updated successfully")
}

// DeleteInstructor removes an instructor
// @Summary Delete an instructor
// @Description Removes the instructor; the courses it taught keep no instructor
// @Tags instructors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor ID"
// @Success 200 {object} dto.APIResponse "Instructor deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Router /instructors/{id} [delete]
func (c *InstructorController) DeleteInstructor(ctx *gin.Context) {
	if err := c.recordService.DeleteInstructor(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Instructor deleted successfully")
}

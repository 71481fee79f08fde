package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolbook/internal/app/models/dto"
	"github.com/yigit/schoolbook/internal/app/services"
)

// SearchController handles cross-collection queries and status
type SearchController struct {
	recordService services.RecordService
	dataService   services.DataService
}

// NewSearchController creates a new SearchController
func NewSearchController(recordService services.RecordService, dataService services.DataService) *SearchController {
	return &SearchController{
		recordService: recordService,
		dataService:   dataService,
	}
}

// Search finds records of every kind
// @Summary Search all records
// @Description Case-insensitive match on IDs, names, titles and related IDs, tolerant of small typos when enabled
// @Tags search
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} dto.APIResponse{data=services.SearchResult} "Search completed"
// @Router /search [get]
func (c *SearchController) Search(ctx *gin.Context) {
	respond(ctx, http.StatusOK, c.recordService.Search(ctx.Request.Context(), ctx.Query("q")), "")
}

// Stats reports collection sizes
// @Summary Record counts
// @Tags search
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.Stats}
// @Router /stats [get]
func (c *SearchController) Stats(ctx *gin.Context) {
	respond(ctx, http.StatusOK, c.recordService.Stats(ctx.Request.Context()), "")
}

// Health reports liveness
// @Summary Health check
// @Tags search
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (c *SearchController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{
		Status: "ok",
		Store:  c.dataService.StoreName(),
		Stats:  c.recordService.Stats(ctx.Request.Context()),
	})
}

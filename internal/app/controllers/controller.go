package controllers

import (
	"iter"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolbook/internal/app/models/dto"
	"github.com/yigit/schoolbook/internal/pkg/helpers"
)

// respond writes a successful APIResponse
func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewAPIResponse(data, message))
}

// respondPage drains seq and writes the requested page of it
func respondPage[T any](ctx *gin.Context, seq iter.Seq[T]) {
	page, size := helpers.ParsePaginationParams(ctx)
	respond(ctx, http.StatusOK, helpers.Paginate(slices.Collect(seq), page, size), "")
}

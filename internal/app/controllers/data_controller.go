package controllers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/models/dto"
	"github.com/yigit/schoolbook/internal/app/persistence"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/middleware"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

// MaxUploadSize caps imported workbooks
const MaxUploadSize = 10 << 20

// DataController handles files, exports and database snapshots
type DataController struct {
	dataService services.DataService
}

// NewDataController creates a new DataController
func NewDataController(dataService services.DataService) *DataController {
	return &DataController{
		dataService: dataService,
	}
}

// bindOptionalFile reads an optional {"file": ...} body
func bindOptionalFile(ctx *gin.Context) (string, bool) {
	var req dto.DataFileRequest
	if ctx.Request.ContentLength == 0 {
		return "", true
	}
	if !middleware.BindJSON(ctx, &req) {
		return "", false
	}
	return req.File, true
}

// Save writes the record set to a JSON file
// @Summary Save records to a JSON file
// @Description Writes every record to a file in the data directory; the default file when none is given
// @Tags data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DataFileRequest false "Target file"
// @Success 200 {object} dto.APIResponse{data=dto.FileResponse} "Records saved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid file name"
// @Router /data/save [post]
func (c *DataController) Save(ctx *gin.Context) {
	file, ok := bindOptionalFile(ctx)
	if !ok {
		return
	}

	path, err := c.dataService.Save(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.FileResponse{Path: path}, "Records saved successfully")
}

// Load replaces the record set with a JSON file
// @Summary Load records from a JSON file
// @Description Replaces every record with the file contents. A malformed or inconsistent file leaves the records unchanged.
// @Tags data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DataFileRequest false "Source file"
// @Success 200 {object} dto.APIResponse{data=dto.FileResponse} "Records loaded successfully"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Failure 422 {object} dto.ErrorResponse "Malformed data file"
// @Router /data/load [post]
func (c *DataController) Load(ctx *gin.Context) {
	file, ok := bindOptionalFile(ctx)
	if !ok {
		return
	}

	path, err := c.dataService.Load(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.FileResponse{Path: path}, "Records loaded successfully")
}

// Export writes an export into the data directory
// @Summary Export records to files
// @Description csv writes one collection, or all three when kind is "all"; xlsx writes one workbook; json writes a data file
// @Tags data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ExportRequest true "Export options"
// @Success 200 {object} dto.APIResponse{data=dto.ExportResponse} "Export written successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid export options"
// @Router /data/export [post]
func (c *DataController) Export(ctx *gin.Context) {
	var req dto.ExportRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	paths, err := c.export(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.ExportResponse{Paths: paths}, "Export written successfully")
}

func (c *DataController) export(ctx *gin.Context, req dto.ExportRequest) ([]string, error) {
	reqCtx := ctx.Request.Context()
	format, err := persistence.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	switch format {
	case persistence.FormatXLSX:
		path, err := c.dataService.ExportXLSX(reqCtx, req.File)
		return []string{path}, err
	case persistence.FormatJSON:
		path, err := c.dataService.Save(reqCtx, req.File)
		return []string{path}, err
	}

	if strings.EqualFold(req.Kind, "all") || req.Kind == "" {
		return c.dataService.ExportAllCSV(reqCtx, req.File)
	}
	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		return nil, apperrors.NewValidationError("kind", err.Error())
	}
	path, err := c.dataService.ExportCSV(reqCtx, kind, req.File)
	return []string{path}, err
}

// Download streams an export
// @Summary Download an export
// @Description Streams one collection as CSV, or the whole record set as xlsx or json
// @Tags data
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce json
// @Param format query string false "csv, xlsx or json" default(csv)
// @Param kind query string false "student, instructor or course (csv only)" default(student)
// @Success 200 {file} file "Export contents"
// @Failure 400 {object} dto.ErrorResponse "Invalid export options"
// @Router /data/export [get]
func (c *DataController) Download(ctx *gin.Context) {
	format, err := persistence.ParseFormat(ctx.Query("format"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	kind := models.KindStudent
	if k := ctx.Query("kind"); k != "" {
		if kind, err = models.ParseKind(k); err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("kind", err.Error()))
			return
		}
	}

	name := "school"
	if format == persistence.FormatCSV {
		name = kind.Plural()
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, name, format.Ext()))
	ctx.Header("Content-Type", format.ContentType())
	ctx.Status(http.StatusOK)

	if err := c.dataService.WriteExport(ctx.Request.Context(), ctx.Writer, format, kind); err != nil {
		// Headers are already out; only the log can tell
		_ = ctx.Error(err)
	}
}

// Import replaces the record set with an uploaded workbook
// @Summary Import records from a workbook
// @Description Upload an xlsx file laid out like the xlsx export. An inconsistent workbook leaves the records unchanged.
// @Tags data
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Workbook"
// @Success 200 {object} dto.APIResponse{data=models.Stats} "Workbook imported successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing file"
// @Failure 422 {object} dto.ErrorResponse "Unreadable workbook"
// @Router /data/import [post]
func (c *DataController) Import(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxUploadSize)
	header, err := ctx.FormFile("file")
	if err != nil {
		if isUploadTooLarge(err) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Workbook too large").
				WithField("file")
			ctx.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(errorDetail))
			return
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Workbook upload required").
			WithField("file").
			WithDetails(err.Error())
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	file, err := header.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	stats, err := c.dataService.ImportXLSX(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, stats, "Workbook imported successfully")
}

// Backup writes the record set to the snapshot database
// @Summary Back up records to the database
// @Tags data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Stats} "Backup written successfully"
// @Failure 400 {object} dto.ErrorResponse "No database configured"
// @Router /data/backup [post]
func (c *DataController) Backup(ctx *gin.Context) {
	stats, err := c.dataService.Backup(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, stats, "Backup written successfully")
}

// Restore replaces the record set with the database snapshot
// @Summary Restore records from the database
// @Tags data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Stats} "Snapshot restored successfully"
// @Failure 400 {object} dto.ErrorResponse "No database configured"
// @Failure 404 {object} dto.ErrorResponse "No snapshot stored"
// @Router /data/restore [post]
func (c *DataController) Restore(ctx *gin.Context) {
	stats, err := c.dataService.Restore(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, stats, "Snapshot restored successfully")
}

// Archive copies the snapshot database to a file
// @Summary Archive the snapshot database
// @Description Copies the sqlite database into the data directory; other drivers are rejected
// @Tags data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DataFileRequest false "Target file"
// @Success 200 {object} dto.APIResponse{data=dto.FileResponse} "Database archived successfully"
// @Failure 400 {object} dto.ErrorResponse "Driver cannot be archived"
// @Router /data/archive [post]
func (c *DataController) Archive(ctx *gin.Context) {
	file, ok := bindOptionalFile(ctx)
	if !ok {
		return
	}
	if file == "" {
		file = "backup-" + time.Now().Format("20060102-150405") + ".sqlite"
	}

	path, err := c.dataService.ArchiveDatabase(ctx.Request.Context(), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.FileResponse{Path: path}, "Database archived successfully")
}

// ListFiles lists the data directory
// @Summary List data files
// @Description Saved JSON files, exports and archives under the data directory
// @Tags data
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.DataFileInfo} "Data files"
// @Router /data/files [get]
func (c *DataController) ListFiles(ctx *gin.Context) {
	files, err := c.dataService.ListFiles(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.DataFileInfo, 0, len(files))
	for _, f := range files {
		items = append(items, dto.DataFileInfo{Name: f.Name, Size: f.FileSize, ModifiedAt: f.ModTime})
	}
	respond(ctx, http.StatusOK, items, "")
}

// DownloadFile streams one data file
// @Summary Download a data file
// @Tags data
// @Produce octet-stream
// @Param name path string true "File name relative to the data directory"
// @Success 200 {file} file "File contents"
// @Failure 400 {object} dto.ErrorResponse "Invalid file name"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /data/files/{name} [get]
func (c *DataController) DownloadFile(ctx *gin.Context) {
	name := strings.TrimPrefix(ctx.Param("name"), "/")
	file, info, err := c.dataService.OpenFile(ctx.Request.Context(), name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(path.Ext(info.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.DataFromReader(http.StatusOK, info.FileSize, contentType, file, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, path.Base(info.Name)),
	})
}

// DeleteFile removes one data file
// @Summary Delete a data file
// @Description Deleting a missing file succeeds
// @Tags data
// @Produce json
// @Security BearerAuth
// @Param name path string true "File name relative to the data directory"
// @Success 200 {object} dto.APIResponse "File deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid file name"
// @Router /data/files/{name} [delete]
func (c *DataController) DeleteFile(ctx *gin.Context) {
	name := strings.TrimPrefix(ctx.Param("name"), "/")
	if err := c.dataService.DeleteFile(ctx.Request.Context(), name); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "File deleted successfully")
}

// isUploadTooLarge reports whether err came from the upload size limit
func isUploadTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

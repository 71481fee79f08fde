package dto

import "time"

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewAPIResponse creates a successful response carrying data
func NewAPIResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// ListResponse is one page of records
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// HealthResponse reports liveness and collection sizes
type HealthResponse struct {
	Status string      `json:"status" example:"ok"`
	Store  string      `json:"store" example:"sqlite"`
	Stats  interface{} `json:"stats"`
}

// FileResponse names the file a data operation touched
type FileResponse struct {
	Path string `json:"path" example:"data/school.json"`
}

// ExportResponse lists the files an export wrote
type ExportResponse struct {
	Paths []string `json:"paths"`
}

// DataFileInfo describes one file in the data directory
type DataFileInfo struct {
	Name       string    `json:"name" example:"exports/students.csv"`
	Size       int64     `json:"size" example:"1024"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

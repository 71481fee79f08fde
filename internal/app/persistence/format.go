package persistence

import (
	"strings"

	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

// Format names a file layout the record set can be written in
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name case-insensitively; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", apperrors.NewValidationError("format", "unsupported export format "+s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv"
	}
}

// Ext returns the file extension of the format, with the dot
func (f Format) Ext() string {
	return "." + string(f)
}

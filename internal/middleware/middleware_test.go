package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/models/dto"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/auth"
)

func TestErrorDetailFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
		field  string
	}{
		{"not found", apperrors.NewNotFoundError("student", "S9"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{"duplicate", apperrors.NewDuplicateIDError("course", "C1"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, ""},
		{"email", apperrors.NewEmailConflictError("a@b.cd"), http.StatusConflict, dto.ErrorCodeEmailConflict, "email"},
		{"validation", apperrors.NewValidationError("age", "must be a non-negative integer"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "age"},
		{"format", apperrors.NewFormatError("malformed JSON", errors.New("eof")), http.StatusUnprocessableEntity, dto.ErrorCodeInvalidFormat, ""},
		{"expired", auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, ""},
		{"unauthorized", auth.ErrInvalidToken, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, ""},
		{"inconsistent file", apperrors.NewFormatError("inconsistent data file", apperrors.NewDuplicateIDError("student", "S1")), http.StatusUnprocessableEntity, dto.ErrorCodeInvalidFormat, ""},
		{"file with dangling reference", apperrors.NewFormatError("inconsistent data file", apperrors.NewValidationError("instructor_id", "unknown instructor I9")), http.StatusUnprocessableEntity, dto.ErrorCodeInvalidFormat, ""},
		{"wrapped", fmt.Errorf("loading: %w", apperrors.NewNotFoundError("file", "x.json")), http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{"database", fmt.Errorf("snapshot: %w", &pgconn.PgError{Code: "08006"}), http.StatusInternalServerError, dto.ErrorCodeDatabaseError, ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			status, detail := errorDetailFor(tt.err)
			g.Expect(status).To(Equal(tt.status))
			g.Expect(detail.Code).To(Equal(tt.code))
			g.Expect(detail.Field).To(Equal(tt.field))
		})
	}
}

func TestErrorDetailFor_HidesInternalMessages(t *testing.T) {
	g := NewWithT(t)
	_, detail := errorDetailFor(errors.New("password=hunter2"))
	g.Expect(detail.Message).To(Equal("Internal server error"))
}

func newRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(buf)), Recovery())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.POST("/bind", func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
			Age  int    `json:"age" binding:"gte=0"`
		}
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestLogger(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	r := newRouter(&buf)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	g.Expect(rec.Header().Get(RequestIDHeader)).NotTo(BeEmpty())
	g.Expect(buf.String()).To(ContainSubstring(`"status":204`))
	g.Expect(buf.String()).To(ContainSubstring(rec.Header().Get(RequestIDHeader)))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	g.Expect(rec.Header().Get(RequestIDHeader)).To(Equal("req-42"))
}

func TestRecovery(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	r := newRouter(&buf)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	g.Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	g.Expect(rec.Body.String()).To(ContainSubstring(string(dto.ErrorCodeInternalServer)))
	g.Expect(buf.String()).To(ContainSubstring("Recovered from panic"))
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"valid", `{"name":"Ada","age":3}`, http.StatusOK, ""},
		{"missing name", `{"age":3}`, http.StatusBadRequest, `"field":"name"`},
		{"negative age", `{"name":"Ada","age":-3}`, http.StatusBadRequest, `"field":"age"`},
		{"not json", `name=Ada`, http.StatusBadRequest, string(dto.ErrorCodeInvalidRequest)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			var buf bytes.Buffer
			r := newRouter(&buf)

			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			g.Expect(rec.Code).To(Equal(tt.status))
			g.Expect(rec.Body.String()).To(ContainSubstring(tt.want))
		})
	}
}

func TestHandleAPIError_DebugInfo(t *testing.T) {
	g := NewWithT(t)
	gin.SetMode(gin.DebugMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	r := gin.New()
	r.GET("/fail", func(c *gin.Context) { HandleAPIError(c, errors.New("disk on fire")) })
	r.GET("/missing", func(c *gin.Context) { HandleAPIError(c, apperrors.NewNotFoundError("student", "S9")) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	g.Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	g.Expect(rec.Body.String()).To(ContainSubstring(`"debugInfo":"disk on fire"`))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	g.Expect(rec.Body.String()).NotTo(ContainSubstring("debugInfo"))
}

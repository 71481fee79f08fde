package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestNewPaginationInfo(t *testing.T) {
	g := NewWithT(t)

	info := NewPaginationInfo(45, 2, 20)
	g.Expect(info.TotalPages).To(Equal(3))
	g.Expect(info.CurrentPage).To(Equal(2))
	g.Expect(info.TotalItems).To(Equal(int64(45)))

	empty := NewPaginationInfo(0, 1, 20)
	g.Expect(empty.TotalPages).To(Equal(1))

	clamped := NewPaginationInfo(5, 9, 2)
	g.Expect(clamped.CurrentPage).To(Equal(3))
}

func TestPaginate(t *testing.T) {
	g := NewWithT(t)
	items := []int{1, 2, 3, 4, 5}

	g.Expect(Paginate(items, 1, 2).Items).To(Equal([]int{1, 2}))
	g.Expect(Paginate(items, 3, 2).Items).To(Equal([]int{5}))
	g.Expect(Paginate(items, 4, 2).Items).To(BeEmpty())
	g.Expect(Paginate(items, 4, 2).Items).NotTo(BeNil())
	g.Expect(Paginate([]int{}, 1, 10).Pagination.TotalPages).To(Equal(1))
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 1, DefaultPageSize},
		{"explicit", "?page=3&size=5", 3, 5},
		{"garbage", "?page=x&size=-1", 1, DefaultPageSize},
		{"too large", "?size=100000", 1, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/students"+tt.query, nil)
			page, size := ParsePaginationParams(c)
			g.Expect(page).To(Equal(tt.wantPage))
			g.Expect(size).To(Equal(tt.wantSize))
		})
	}
}

func TestParseDuration(t *testing.T) {
	g := NewWithT(t)
	g.Expect(ParseDuration("2m", time.Second)).To(Equal(2 * time.Minute))
	g.Expect(ParseDuration("soon", time.Second)).To(Equal(time.Second))
}

package validation_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/validation"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"ada@school.edu", true},
		{"first.last+tag@mail.example.co", true},
		{"UPPER@CASE.ORG", true},
		{"", false},
		{"no-at-sign.org", false},
		{"a@b", false},
		{"a@b.c", false},
		{"spaces in@school.edu", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			NewWithT(t).Expect(validation.Email(tt.email)).To(Equal(tt.want))
		})
	}
}

func TestStruct_ReportsFirstFieldByJSONName(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	err := validation.Struct(models.Student{ID: "S1", Name: "Ada", Age: 3, Email: "ada"})
	g.Expect(err).To(MatchError(apperrors.ErrValidationFailed))
	g.Expect(apperrors.Field(err)).To(Equal("email"))
	g.Expect(err.Error()).To(Equal("email: invalid email: ada"))

	err = validation.Struct(models.Course{ID: "C1", Title: "\t"})
	g.Expect(apperrors.Field(err)).To(Equal("course_name"))

	err = validation.Struct(models.Course{ID: "C1", Title: "T", StudentIDs: []string{"S1", "S1"}})
	g.Expect(apperrors.Field(err)).To(Equal("enrolled_student_ids"))

	g.Expect(validation.Struct(models.Instructor{ID: "I1", Name: "Grace", Email: "g@navy.mil"})).To(Succeed())
}

package seed

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/app/services"
)

func TestCreateDefaultData(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	records := services.NewRecordService(repositories.NewRecordRepository(), 0, zerolog.Nop())

	g.Expect(CreateDefaultData(ctx, records, zerolog.Nop())).To(Succeed())
	g.Expect(records.Stats(ctx)).To(Equal(models.Stats{Students: 3, Instructors: 2, Courses: 3, Registrations: 3}))

	ada, err := records.GetStudent(ctx, "S1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ada.CourseIDs).To(ConsistOf("CS101", "MA110"))

	// A second run finds everything in place
	g.Expect(CreateDefaultData(ctx, records, zerolog.Nop())).To(Succeed())
	g.Expect(records.Stats(ctx).Students).To(Equal(3))
}

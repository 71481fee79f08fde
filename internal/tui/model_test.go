package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/pkg/filestorage"
)

func newTestModel(t *testing.T) (*Model, *services.Services, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	repo := repositories.NewRecordRepository()
	svc := &services.Services{
		Records: services.NewRecordService(repo, 1, zerolog.Nop()),
		Data:    services.NewDataService(repo, nil, storage, "school.json", zerolog.Nop()),
	}

	ctx := context.Background()
	mustDo := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	_, err = svc.Records.CreateInstructor(ctx, models.Instructor{ID: "I1", Name: "Grace Hopper", Age: 45, Email: "grace@school.edu"})
	mustDo(err)
	_, err = svc.Records.CreateCourse(ctx, models.Course{ID: "C1", Title: "Compilers", InstructorID: "I1"})
	mustDo(err)
	_, err = svc.Records.CreateCourse(ctx, models.Course{ID: "C2", Title: "Databases"})
	mustDo(err)
	_, err = svc.Records.CreateStudent(ctx, models.Student{ID: "S1", Name: "Ada Lovelace", Age: 20, Email: "ada@school.edu", CourseIDs: []string{"C1"}})
	mustDo(err)
	_, err = svc.Records.CreateStudent(ctx, models.Student{ID: "S2", Name: "Alan Turing", Age: 22, Email: "alan@school.edu"})
	mustDo(err)

	return New(ctx, svc, zerolog.Nop()), svc, dir
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// send feeds msgs to m and runs every resulting command to completion
func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		for cmd != nil {
			next := cmd()
			if _, quit := next.(tea.QuitMsg); quit {
				return
			}
			_, cmd = m.Update(next)
		}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		send(m, keyMsg(k))
	}
}

func TestNew_FillsTables(t *testing.T) {
	g := NewWithT(t)
	m, _, _ := newTestModel(t)

	g.Expect(m.tables[0].Rows()).To(HaveLen(2))
	g.Expect(m.tables[1].Rows()).To(HaveLen(1))
	g.Expect(m.tables[2].Rows()).To(HaveLen(2))
	g.Expect(m.tables[0].Rows()[0]).To(Equal(table.Row{"S1", "Ada Lovelace", "20", "ada@school.edu", "C1"}))
	g.Expect(m.View()).To(ContainSubstring("2 students"))
}

func TestTabs(t *testing.T) {
	g := NewWithT(t)
	m, _, _ := newTestModel(t)

	press(m, "tab")
	g.Expect(m.kind()).To(Equal(models.KindInstructor))
	press(m, "3")
	g.Expect(m.kind()).To(Equal(models.KindCourse))
	press(m, "tab")
	g.Expect(m.kind()).To(Equal(models.KindStudent))
}

func TestAddStudent(t *testing.T) {
	g := NewWithT(t)
	m, svc, _ := newTestModel(t)

	press(m, "a", "S9", "enter", "Grace Kim", "enter", "19", "enter", "kim@school.edu", "enter")

	g.Expect(m.mode).To(Equal(modeBrowse))
	g.Expect(m.statusErr).To(BeFalse())
	g.Expect(m.status).To(Equal("added student S9"))
	s, err := svc.Records.GetStudent(context.Background(), "S9")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Name).To(Equal("Grace Kim"))
	g.Expect(m.tables[0].Rows()).To(HaveLen(3))
}

func TestAddStudent_BadAgeKeepsForm(t *testing.T) {
	g := NewWithT(t)
	m, _, _ := newTestModel(t)

	press(m, "a", "S9", "enter", "Grace Kim", "enter", "old", "enter", "kim@school.edu", "enter")

	g.Expect(m.mode).To(Equal(modeForm))
	g.Expect(m.statusErr).To(BeTrue())
	g.Expect(m.status).To(ContainSubstring("age"))

	press(m, "esc")
	g.Expect(m.mode).To(Equal(modeBrowse))
}

func TestAddStudent_DuplicateShowsError(t *testing.T) {
	g := NewWithT(t)
	m, _, _ := newTestModel(t)

	press(m, "a", "S1", "enter", "Someone", "enter", "30", "enter", "someone@school.edu", "enter")

	g.Expect(m.statusErr).To(BeTrue())
	g.Expect(m.status).To(ContainSubstring("duplicate student_id: S1"))
	g.Expect(m.tables[0].Rows()).To(HaveLen(2))
}

func TestEditStudent(t *testing.T) {
	g := NewWithT(t)
	m, svc, _ := newTestModel(t)

	press(m, "e", "enter", "end", " King", "enter", "enter", "enter")

	g.Expect(m.statusErr).To(BeFalse())
	s, err := svc.Records.GetStudent(context.Background(), "S1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Name).To(Equal("Ada Lovelace King"))
	g.Expect(s.CourseIDs).To(Equal([]string{"C1"}))
}

func TestSearchFilters(t *testing.T) {
	g := NewWithT(t)
	m, _, _ := newTestModel(t)

	press(m, "/", "turing")
	g.Expect(m.mode).To(Equal(modeSearch))
	g.Expect(m.tables[0].Rows()).To(HaveLen(1))

	press(m, "enter")
	g.Expect(m.mode).To(Equal(modeBrowse))
	g.Expect(m.query).To(Equal("turing"))
	g.Expect(m.tables[0].Rows()).To(HaveLen(1))
	g.Expect(m.tables[0].Rows()[0][0]).To(Equal("S2"))

	press(m, "/", "esc")
	g.Expect(m.query).To(BeEmpty())
	g.Expect(m.tables[0].Rows()).To(HaveLen(2))
}

func TestRegisterAndUnregister(t *testing.T) {
	g := NewWithT(t)
	m, svc, _ := newTestModel(t)
	ctx := context.Background()

	press(m, "r", "C2", "enter")
	s, err := svc.Records.GetStudent(ctx, "S1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.CourseIDs).To(ConsistOf("C1", "C2"))

	press(m, "u", "C1", "enter")
	s, err = svc.Records.GetStudent(ctx, "S1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.CourseIDs).To(Equal([]string{"C2"}))

	press(m, "r", "C9", "enter")
	g.Expect(m.statusErr).To(BeTrue())
	g.Expect(m.status).To(ContainSubstring("C9"))
}

func TestRegisterOnInstructorTabIsRejected(t *testing.T) {
	g := NewWithT(t)
	m, _, _ := newTestModel(t)

	press(m, "tab", "r")
	g.Expect(m.mode).To(Equal(modeBrowse))
	g.Expect(m.statusErr).To(BeTrue())
}

func TestAssignFromCourseTab(t *testing.T) {
	g := NewWithT(t)
	m, svc, _ := newTestModel(t)
	ctx := context.Background()

	// C1 is the first course row
	press(m, "3", "i", "enter")
	c, err := svc.Records.GetCourse(ctx, "C1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.InstructorID).To(BeEmpty())

	press(m, "down", "i", "I1", "enter")
	c, err = svc.Records.GetCourse(ctx, "C2")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.InstructorID).To(Equal("I1"))
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	g := NewWithT(t)
	m, svc, _ := newTestModel(t)
	ctx := context.Background()

	press(m, "d", "n", "enter")
	_, err := svc.Records.GetStudent(ctx, "S1")
	g.Expect(err).NotTo(HaveOccurred())

	press(m, "d", "y", "enter")
	_, err = svc.Records.GetStudent(ctx, "S1")
	g.Expect(err).To(HaveOccurred())
	g.Expect(m.status).To(Equal("deleted student S1"))

	c, err := svc.Records.GetCourse(ctx, "C1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.StudentIDs).To(BeEmpty())
}

func TestSaveLoadAndExport(t *testing.T) {
	g := NewWithT(t)
	m, svc, dir := newTestModel(t)
	ctx := context.Background()

	press(m, "s", "enter")
	g.Expect(m.statusErr).To(BeFalse())
	g.Expect(filepath.Join(dir, "school.json")).To(BeARegularFile())

	g.Expect(svc.Records.DeleteStudent(ctx, "S2")).To(Succeed())
	press(m, "l", "enter")
	g.Expect(m.statusErr).To(BeFalse())
	g.Expect(svc.Records.Stats(ctx).Students).To(Equal(2))

	press(m, "x", "csv", "enter")
	g.Expect(m.status).To(Equal("exported 3 files"))
	entries, err := os.ReadDir(filepath.Join(dir, "csv"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(entries).To(HaveLen(3))

	press(m, "l", "missing.json", "enter")
	g.Expect(m.statusErr).To(BeTrue())
	g.Expect(svc.Records.Stats(ctx).Students).To(Equal(2))
}

func TestQuit(t *testing.T) {
	g := NewWithT(t)
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(keyMsg("q"))
	g.Expect(cmd).NotTo(BeNil())
	g.Expect(cmd()).To(Equal(tea.QuitMsg{}))
}

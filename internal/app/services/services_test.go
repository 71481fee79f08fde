package services_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/persistence"
	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/filestorage"
)

// memStore is an in-memory SnapshotStore.
type memStore struct {
	mu   sync.Mutex
	ds   *models.Dataset
	fail error
}

func (m *memStore) WriteSnapshot(_ context.Context, ds models.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.ds = &ds
	return nil
}

func (m *memStore) ReadSnapshot(context.Context) (models.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ds == nil {
		return models.Dataset{}, apperrors.NewNotFoundError("snapshot", "memory")
	}
	return *m.ds, nil
}

func (m *memStore) Name() string { return "memory" }
func (m *memStore) Close() error { return nil }

type fixture struct {
	repo    *repositories.RecordRepository
	store   *memStore
	storage *filestorage.LocalStorage
	records services.RecordService
	data    services.DataService
}

func newFixture(t *testing.T, withStore bool) *fixture {
	t.Helper()
	storage, err := filestorage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{repo: repositories.NewRecordRepository(), storage: storage}
	var snapshots repositories.SnapshotStore
	if withStore {
		f.store = &memStore{}
		snapshots = f.store
	}
	f.records = services.NewRecordService(f.repo, 1, zerolog.Nop())
	f.data = services.NewDataService(f.repo, snapshots, storage, "school.json", zerolog.Nop())
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	g := NewWithT(t)
	ctx := context.Background()
	_, err := f.records.CreateInstructor(ctx, models.Instructor{ID: "I1", Name: "Grace Hopper", Age: 45, Email: "grace@school.edu"})
	g.Expect(err).NotTo(HaveOccurred())
	_, err = f.records.CreateStudent(ctx, models.Student{ID: "S1", Name: "Ada Lovelace", Age: 20, Email: "ada@school.edu"})
	g.Expect(err).NotTo(HaveOccurred())
	_, err = f.records.CreateCourse(ctx, models.Course{ID: "C1", Title: "Compilers", InstructorID: "I1", StudentIDs: []string{"S1"}})
	g.Expect(err).NotTo(HaveOccurred())
}

func TestRecordService_CreateReturnsDerivedRelations(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)
	f.seed(t)
	ctx := context.Background()

	s, err := f.records.CreateStudent(ctx, models.Student{ID: " S2 ", Name: "Alan", Email: "alan@school.edu", CourseIDs: []string{"C1"}})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.ID).To(Equal("S2"))
	g.Expect(s.CourseIDs).To(Equal([]string{"C1"}))

	in, err := f.records.GetInstructor(ctx, "I1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(in.CourseIDs).To(Equal([]string{"C1"}))

	_, err = f.records.CreateCourse(ctx, models.Course{ID: "C1", Title: "Again"})
	g.Expect(err).To(MatchError(apperrors.ErrDuplicateID))
}

func TestRecordService_RelationsAndSearch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)
	f.seed(t)
	ctx := context.Background()

	g.Expect(f.records.Unregister(ctx, "S1", "C1")).To(Succeed())
	g.Expect(f.records.Unassign(ctx, "C1")).To(Succeed())
	c, err := f.records.GetCourse(ctx, "C1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.StudentIDs).To(BeEmpty())
	g.Expect(c.HasInstructor()).To(BeFalse())

	g.Expect(f.records.Register(ctx, "S1", "C404")).To(MatchError(apperrors.ErrNotFound))
	g.Expect(f.records.Assign(ctx, "I1", "C1")).To(Succeed())

	res := f.records.Search(ctx, "hoper")
	g.Expect(res.Instructors).To(HaveLen(1))
	g.Expect(res.Students).To(BeEmpty())
	g.Expect(res.Courses).To(BeEmpty())

	g.Expect(slices.Collect(f.records.SearchCourses(ctx, ""))).To(HaveLen(1))
	g.Expect(f.records.Stats(ctx)).To(Equal(models.Stats{Students: 1, Instructors: 1, Courses: 1}))

	g.Expect(f.records.Delete(ctx, models.KindInstructor, "I1")).To(Succeed())
	c, _ = f.records.GetCourse(ctx, "C1")
	g.Expect(c.InstructorID).To(BeEmpty())
}

func TestDataService_SaveLoad(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)
	f.seed(t)
	ctx := context.Background()
	before := f.repo.Snapshot()

	path, err := f.data.Save(ctx, "")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(filepath.Base(path)).To(Equal("school.json"))

	g.Expect(f.records.DeleteCourse(ctx, "C1")).To(Succeed())
	_, err = f.data.Load(ctx, "school.json")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(f.repo.Snapshot()).To(Equal(before))

	_, err = f.data.Load(ctx, "missing.json")
	g.Expect(err).To(MatchError(apperrors.ErrNotFound))

	_, err = f.data.Save(ctx, "../escape.json")
	g.Expect(err).To(MatchError(apperrors.ErrValidationFailed))

	g.Expect(os.WriteFile(filepath.Join(f.storage.BasePath(), "broken.json"), []byte("{"), 0o600)).To(Succeed())
	_, err = f.data.Load(ctx, "broken.json")
	g.Expect(err).To(MatchError(apperrors.ErrFormat))
	g.Expect(f.repo.Snapshot()).To(Equal(before))
}

func TestDataService_Exports(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)
	f.seed(t)
	ctx := context.Background()

	path, err := f.data.ExportCSV(ctx, models.KindCourse, "")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(filepath.Base(path)).To(Equal("courses.csv"))
	content, err := os.ReadFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(content)).To(ContainSubstring("C1,Compilers,I1,Grace Hopper,S1"))

	paths, err := f.data.ExportAllCSV(ctx, "exports")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(paths).To(HaveLen(3))
	g.Expect(paths[0]).To(Equal(filepath.Join(f.storage.BasePath(), "exports", "students.csv")))

	xlsx, err := f.data.ExportXLSX(ctx, "")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(xlsx).To(BeAnExistingFile())

	var buf bytes.Buffer
	g.Expect(f.data.WriteExport(ctx, &buf, persistence.FormatCSV, models.KindStudent)).To(Succeed())
	g.Expect(strings.Split(buf.String(), "\n")[0]).To(Equal("student_id,name,age,email,registered_courses"))
}

func TestDataService_LogsToRequestLogger(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)
	f.seed(t)

	var buf bytes.Buffer
	reqLogger := zerolog.New(&buf).With().Str("request_id", "req-7").Logger()
	ctx := reqLogger.WithContext(context.Background())

	_, err := f.data.Save(ctx, "")
	g.Expect(err).NotTo(HaveOccurred())
	_, err = f.data.Load(ctx, "")
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(buf.String()).To(ContainSubstring(`"request_id":"req-7"`))
	g.Expect(buf.String()).To(ContainSubstring("Data file saved"))
	g.Expect(buf.String()).To(ContainSubstring("Data file loaded"))
}

func TestDataService_Files(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)
	f.seed(t)
	ctx := context.Background()

	_, err := f.data.Save(ctx, "")
	g.Expect(err).NotTo(HaveOccurred())
	_, err = f.data.ExportCSV(ctx, models.KindStudent, "exports/students.csv")
	g.Expect(err).NotTo(HaveOccurred())

	files, err := f.data.ListFiles(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(files).To(HaveLen(2))
	g.Expect(files[0].Name).To(Equal("exports/students.csv"))
	g.Expect(files[1].Name).To(Equal("school.json"))

	file, info, err := f.data.OpenFile(ctx, "school.json")
	g.Expect(err).NotTo(HaveOccurred())
	defer file.Close()
	g.Expect(info.FileSize).To(BeNumerically(">", 0))

	_, _, err = f.data.OpenFile(ctx, "missing.json")
	g.Expect(err).To(MatchError(apperrors.ErrNotFound))
	_, _, err = f.data.OpenFile(ctx, "../escape.json")
	g.Expect(err).To(MatchError(apperrors.ErrValidationFailed))

	g.Expect(f.data.DeleteFile(ctx, "exports/students.csv")).To(Succeed())
	files, err = f.data.ListFiles(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(files).To(HaveLen(1))
}

func TestDataService_ImportXLSX(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)
	f.seed(t)
	ctx := context.Background()
	before := f.repo.Snapshot()

	var buf bytes.Buffer
	g.Expect(f.data.WriteExport(ctx, &buf, persistence.FormatXLSX, "")).To(Succeed())
	g.Expect(f.records.DeleteStudent(ctx, "S1")).To(Succeed())

	stats, err := f.data.ImportXLSX(ctx, &buf)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stats.Registrations).To(Equal(1))
	g.Expect(f.repo.Snapshot()).To(Equal(before))
}

func TestDataService_BackupRestore(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.data.Restore(ctx)
	g.Expect(err).To(MatchError(apperrors.ErrNotFound))

	f.seed(t)
	before := f.repo.Snapshot()
	stats, err := f.data.Backup(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stats.Courses).To(Equal(1))

	g.Expect(f.records.DeleteStudent(ctx, "S1")).To(Succeed())
	_, err = f.data.Restore(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(f.repo.Snapshot()).To(Equal(before))

	// A corrupt snapshot is rejected without touching the repository.
	f.store.ds = &models.Dataset{Courses: []models.Course{{ID: "C9", Title: "X", InstructorID: "I404"}}}
	_, err = f.data.Restore(ctx)
	g.Expect(err).To(MatchError(apperrors.ErrFormat))
	g.Expect(f.repo.Snapshot()).To(Equal(before))

	_, err = f.data.ArchiveDatabase(ctx, "")
	g.Expect(err).To(MatchError(apperrors.ErrValidationFailed))
	g.Expect(f.data.StoreName()).To(Equal("memory"))
}

func TestDataService_WithoutStore(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	f := newFixture(t, false)

	_, err := f.data.Backup(context.Background())
	g.Expect(err).To(MatchError(apperrors.ErrValidationFailed))
	_, err = f.data.Restore(context.Background())
	g.Expect(err).To(MatchError(apperrors.ErrValidationFailed))
	g.Expect(f.data.StoreName()).To(Equal("none"))
	g.Expect(f.data.DefaultFile()).To(Equal("school.json"))
}

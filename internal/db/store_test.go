package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/config"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

func sampleDataset(t *testing.T) models.Dataset {
	t.Helper()
	g := NewWithT(t)
	repo := repositories.NewRecordRepository()
	g.Expect(repo.AddInstructor(models.Instructor{ID: "I1", Name: "Grace Hopper", Age: 45, Email: "grace@school.edu"})).To(Succeed())
	g.Expect(repo.AddStudent(models.Student{ID: "S1", Name: "Ada Lovelace", Age: 20, Email: "ada@school.edu"})).To(Succeed())
	g.Expect(repo.AddStudent(models.Student{ID: "S2", Name: "Alan Turing", Age: 22, Email: "alan@school.edu"})).To(Succeed())
	g.Expect(repo.AddCourse(models.Course{ID: "C1", Title: "Compilers", InstructorID: "I1"})).To(Succeed())
	g.Expect(repo.AddCourse(models.Course{ID: "C2", Title: "Logic"})).To(Succeed())
	g.Expect(repo.Register("S1", "C1")).To(Succeed())
	g.Expect(repo.Register("S2", "C1")).To(Succeed())
	return repo.Snapshot()
}

// exerciseStore checks the snapshot contract shared by every backend.
func exerciseStore(t *testing.T, store repositories.SnapshotStore) {
	t.Helper()
	g := NewWithT(t)
	ctx := context.Background()

	_, err := store.ReadSnapshot(ctx)
	g.Expect(err).To(MatchError(apperrors.ErrNotFound))

	ds := sampleDataset(t)
	g.Expect(store.WriteSnapshot(ctx, ds)).To(Succeed())

	read, err := store.ReadSnapshot(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	restored, err := repositories.NewRecordRepositoryFrom(read)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(restored.Snapshot()).To(Equal(ds))

	// A second write replaces rather than merges.
	smaller := models.Dataset{Students: []models.Student{{ID: "S9", Name: "Solo", Email: "solo@school.edu"}}}
	g.Expect(store.WriteSnapshot(ctx, smaller)).To(Succeed())
	read, err = store.ReadSnapshot(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(read.Students).To(HaveLen(1))
	g.Expect(read.Courses).To(BeEmpty())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	dir := t.TempDir()

	store, err := NewSQLiteStore(filepath.Join(dir, "nested", "school.sqlite"))
	g.Expect(err).NotTo(HaveOccurred())
	defer store.Close()

	g.Expect(store.Name()).To(Equal(config.DriverSQLite))
	exerciseStore(t, store)

	backup := filepath.Join(dir, "backup.sqlite")
	g.Expect(store.BackupTo(context.Background(), backup)).To(Succeed())
	g.Expect(store.BackupTo(context.Background(), backup)).NotTo(Succeed())

	copied, err := NewSQLiteStore(backup)
	g.Expect(err).NotTo(HaveOccurred())
	defer copied.Close()
	read, err := copied.ReadSnapshot(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(read.Students).To(HaveLen(1))
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "school.sqlite")

	store, err := NewSQLiteStore(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(store.WriteSnapshot(context.Background(), sampleDataset(t))).To(Succeed())
	g.Expect(store.Close()).To(Succeed())

	store, err = NewSQLiteStore(path)
	g.Expect(err).NotTo(HaveOccurred())
	defer store.Close()
	read, err := store.ReadSnapshot(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(read.Courses).To(HaveLen(2))
	g.Expect(read.Courses[0].StudentIDs).To(Equal([]string{"S1", "S2"}))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SCHOOLBOOK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SCHOOLBOOK_TEST_POSTGRES_DSN not set")
	}
	g := NewWithT(t)

	pg, err := NewPostgresDBFromURL(dsn, 2, 0, "")
	g.Expect(err).NotTo(HaveOccurred())
	store, err := NewPostgresStore(context.Background(), pg)
	g.Expect(err).NotTo(HaveOccurred())
	defer store.Close()

	_, err = pg.Pool.Exec(context.Background(), `DELETE FROM snapshot_meta`)
	g.Expect(err).NotTo(HaveOccurred())
	exerciseStore(t, store)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SCHOOLBOOK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SCHOOLBOOK_TEST_REDIS_ADDR not set")
	}
	g := NewWithT(t)
	key := "schoolbook:test:" + t.Name()

	store, err := NewRedisStore(context.Background(), addr, "", 0, key)
	g.Expect(err).NotTo(HaveOccurred())
	defer store.Close()
	g.Expect(store.Client.Del(context.Background(), key, key+":meta").Err()).To(Succeed())

	exerciseStore(t, store)

	meta, err := store.Meta(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(meta).To(HaveKeyWithValue("students", "1"))
}

func TestNewSnapshotStore(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Database.Driver = config.DriverNone
	store, err := NewSnapshotStore(ctx, cfg)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(store).To(BeNil())

	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "school.sqlite")
	store, err = NewSnapshotStore(ctx, cfg)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(store.Name()).To(Equal(config.DriverSQLite))
	g.Expect(store.Close()).To(Succeed())

	cfg.Database.Driver = "mongo"
	_, err = NewSnapshotStore(ctx, cfg)
	g.Expect(err).To(HaveOccurred())
}

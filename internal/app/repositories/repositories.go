package repositories

import (
	"context"

	"github.com/yigit/schoolbook/internal/app/models"
)

// SnapshotStore persists whole datasets in an external database. Implemented
// by the sqlite, postgres and redis stores in internal/db.
type SnapshotStore interface {
	WriteSnapshot(ctx context.Context, ds models.Dataset) error
	ReadSnapshot(ctx context.Context) (models.Dataset, error)
	Name() string
	Close() error
}

// Repositories holds all the repository instances
type Repositories struct {
	Records   *RecordRepository
	Snapshots SnapshotStore // nil when no database is configured
}

// NewRepositories initializes all repositories around an empty record set
func NewRepositories(snapshots SnapshotStore) *Repositories {
	return &Repositories{
		Records:   NewRecordRepository(),
		Snapshots: snapshots,
	}
}

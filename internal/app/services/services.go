package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/schoolbook/internal/app/repositories"
	"github.com/yigit/schoolbook/internal/config"
	"github.com/yigit/schoolbook/internal/pkg/filestorage"
)

// Services defined in this package:
// - RecordService: CRUD, relations and search over the record set
// - DataService: JSON files, CSV/XLSX exports and database snapshots

// Services holds all the service instances both front-ends bind to
type Services struct {
	Records RecordService
	Data    DataService
}

// NewServices wires the services around the repositories
func NewServices(repos *repositories.Repositories, storage *filestorage.LocalStorage, cfg *config.Config, logger zerolog.Logger) *Services {
	fuzzy := 0
	if cfg.Search.Fuzzy {
		fuzzy = cfg.Search.FuzzyDistance
	}
	return &Services{
		Records: NewRecordService(repos.Records, fuzzy, logger),
		Data:    NewDataService(repos.Records, repos.Snapshots, storage, cfg.Data.DefaultFile, logger),
	}
}

// loggerFrom prefers the request-scoped logger carried by ctx
func loggerFrom(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}

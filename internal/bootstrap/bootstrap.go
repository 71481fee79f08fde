package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/schoolbook/internal/app/controllers"
	appRepos "github.com/yigit/schoolbook/internal/app/repositories"
	appRoutes "github.com/yigit/schoolbook/internal/app/routes"
	appServices "github.com/yigit/schoolbook/internal/app/services"
	"github.com/yigit/schoolbook/internal/config"
	"github.com/yigit/schoolbook/internal/db"
	appMiddleware "github.com/yigit/schoolbook/internal/middleware"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/schoolbook/internal/pkg/auth"
	"github.com/yigit/schoolbook/internal/pkg/filestorage"
	"github.com/yigit/schoolbook/internal/pkg/helpers"
	"github.com/yigit/schoolbook/internal/pkg/logger"
	"github.com/yigit/schoolbook/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config         *config.Config
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	FileStorage    *filestorage.LocalStorage
	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// Close releases the snapshot store
func (d *Dependencies) Close() error {
	if d.Repos == nil || d.Repos.Snapshots == nil {
		return nil
	}
	return d.Repos.Snapshots.Close()
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// With toFile set, logs go to the configured log file instead of stdout; the
// returned closer releases that file.
func LoadConfigAndSetupLogger(configPath string, toFile bool) (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, nil, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	var output io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if toFile {
		f, err := logger.OpenFile(cfg.Logging.File)
		if err != nil {
			return nil, zerolog.Logger{}, nil, err
		}
		output, closer = f, f
	}

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
		Output: output,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, closer, nil
}

// BuildDependencies opens the snapshot store and initializes repositories,
// services and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: lgr}

	store, err := db.NewSnapshotStore(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open snapshot store")
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	deps.Repos = appRepos.NewRepositories(store)

	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Data.Dir)
	if err != nil {
		_ = deps.Close()
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Services = appServices.NewServices(deps.Repos, deps.FileStorage, cfg, lgr)

	deps.JWTService = NewJWTService(cfg)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	if !deps.JWTService.Enabled() {
		lgr.Warn().Msg("No auth secret configured, mutating routes are open")
	}

	deps.Controllers = appRoutes.Controllers{
		Students:    appControllers.NewStudentController(deps.Services.Records),
		Instructors: appControllers.NewInstructorController(deps.Services.Records),
		Courses:     appControllers.NewCourseController(deps.Services.Records),
		Data:        appControllers.NewDataController(deps.Services.Data),
		Search:      appControllers.NewSearchController(deps.Services.Records, deps.Services.Data),
	}

	return deps, nil
}

// NewJWTService builds the operator token service from the auth settings
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.Auth.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.Auth.TokenTTL, 24*time.Hour),
		TokenIssuer:    cfg.Auth.Issuer,
	})
}

// LoadInitialData loads the default data file. When it does not exist and
// seeding is enabled, the sample records are created instead. An unreadable
// file is logged and the record set stays empty.
func LoadInitialData(ctx context.Context, deps *Dependencies) {
	lgr := deps.Logger
	_, err := deps.Services.Data.Load(ctx, "")
	switch {
	case err == nil:
		return
	case errors.Is(err, apperrors.ErrNotFound):
		lgr.Info().Str("file", deps.Config.Data.DefaultFile).Msg("No data file yet, starting empty")
		if deps.Config.Data.Seed {
			if err := seed.CreateDefaultData(ctx, deps.Services.Records, lgr); err != nil {
				lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
			}
		}
	default:
		lgr.Error().Err(err).Str("file", deps.Config.Data.DefaultFile).Msg("Failed to load data file, starting empty")
	}
}

// Autosave writes the default data file when autosave is enabled
func Autosave(ctx context.Context, deps *Dependencies) error {
	if !deps.Config.Data.Autosave {
		return nil
	}
	_, err := deps.Services.Data.Save(ctx, "")
	return err
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(lgr), appMiddleware.Recovery())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

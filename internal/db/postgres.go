package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/schoolbook/internal/app/migrations"
	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/config"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/dberrors"
	"github.com/yigit/schoolbook/internal/pkg/logger"
)

// PostgresDB database connection structure
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgresDB creates a new PostgreSQL connection pool
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	return NewPostgresDBFromURL(cfg.GetPostgresConnectionString(),
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
}

// NewPostgresDBFromURL creates a pool from a connection string and pool limits
func NewPostgresDBFromURL(connString string, maxConns, minConns int, maxLifetime string) (*PostgresDB, error) {
	// Create a context with timeout for connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	if minConns > 0 {
		poolConfig.MinConns = int32(minConns)
	}
	if maxLifetime != "" {
		lifetime, err := time.ParseDuration(maxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
		}
		poolConfig.MaxConnLifetime = lifetime
	}

	// Add health check for connections
	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Unhealthy connection detected")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// Close closing method
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx pgx.Tx) error

// WithTransaction runs a function within a transaction
func (db *PostgresDB) WithTransaction(ctx context.Context, fn TransactionFn) error {
	// Add timeout to context if not already present
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback on panic
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// PostgresStore keeps dataset snapshots in PostgreSQL tables
type PostgresStore struct {
	db *PostgresDB
}

// NewPostgresStore applies the bundled migrations and returns a store over db
func NewPostgresStore(ctx context.Context, db *PostgresDB) (*PostgresStore, error) {
	if err := migrations.NewMigrator(db.Pool).Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Name identifies the backend
func (s *PostgresStore) Name() string {
	return config.DriverPostgres
}

// Close releases the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// WriteSnapshot replaces the stored tables with ds in one transaction
func (s *PostgresStore) WriteSnapshot(ctx context.Context, ds models.Dataset) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE registrations, courses, students, instructors`); err != nil {
			return fmt.Errorf("failed to clear tables: %w", err)
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"instructors"},
			[]string{"instructor_id", "name", "age", "email"},
			pgx.CopyFromSlice(len(ds.Instructors), func(i int) ([]any, error) {
				in := ds.Instructors[i]
				return []any{in.ID, in.Name, in.Age, in.Email}, nil
			})); err != nil {
			return fmt.Errorf("failed to write instructors: %w", err)
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"students"},
			[]string{"student_id", "name", "age", "email"},
			pgx.CopyFromSlice(len(ds.Students), func(i int) ([]any, error) {
				st := ds.Students[i]
				return []any{st.ID, st.Name, st.Age, st.Email}, nil
			})); err != nil {
			return fmt.Errorf("failed to write students: %w", err)
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"courses"},
			[]string{"course_id", "course_name", "instructor_id"},
			pgx.CopyFromSlice(len(ds.Courses), func(i int) ([]any, error) {
				c := ds.Courses[i]
				var instructorID *string
				if c.HasInstructor() {
					instructorID = &c.InstructorID
				}
				return []any{c.ID, c.Title, instructorID}, nil
			})); err != nil {
			return fmt.Errorf("failed to write courses: %w", err)
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"registrations"},
			[]string{"student_id", "course_id"},
			pgx.CopyFromRows(registrationRows(ds))); err != nil {
			return fmt.Errorf("failed to write registrations: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO snapshot_meta (id, saved_at) VALUES (1, $1)
			ON CONFLICT (id) DO UPDATE SET saved_at = EXCLUDED.saved_at`, time.Now().UTC())
		return err
	})
	return dberrors.Translate(err)
}

// ReadSnapshot loads the stored tables. It fails with a not-found error
// when nothing has been written yet.
func (s *PostgresStore) ReadSnapshot(ctx context.Context) (models.Dataset, error) {
	var savedAt time.Time
	err := s.db.Pool.QueryRow(ctx, `SELECT saved_at FROM snapshot_meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Dataset{}, apperrors.NewNotFoundError("snapshot", s.Name())
	}
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}

	var ds models.Dataset
	rows, err := s.db.Pool.Query(ctx, `SELECT instructor_id, name, age, email FROM instructors ORDER BY instructor_id`)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to read instructors: %w", err)
	}
	ds.Instructors, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Instructor, error) {
		var in models.Instructor
		err := row.Scan(&in.ID, &in.Name, &in.Age, &in.Email)
		return in, err
	})
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to scan instructors: %w", err)
	}

	rows, err = s.db.Pool.Query(ctx, `SELECT student_id, name, age, email FROM students ORDER BY student_id`)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to read students: %w", err)
	}
	ds.Students, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Student, error) {
		var st models.Student
		err := row.Scan(&st.ID, &st.Name, &st.Age, &st.Email)
		return st, err
	})
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to scan students: %w", err)
	}

	rows, err = s.db.Pool.Query(ctx, `
		SELECT c.course_id, c.course_name, COALESCE(c.instructor_id, ''),
		       COALESCE(array_agg(r.student_id ORDER BY r.student_id) FILTER (WHERE r.student_id IS NOT NULL), '{}')
		FROM courses c
		LEFT JOIN registrations r ON r.course_id = c.course_id
		GROUP BY c.course_id
		ORDER BY c.course_id`)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to read courses: %w", err)
	}
	ds.Courses, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Course, error) {
		var c models.Course
		err := row.Scan(&c.ID, &c.Title, &c.InstructorID, &c.StudentIDs)
		return c, err
	})
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to scan courses: %w", err)
	}

	logger.Debug().Time("saved_at", savedAt).Msg("Snapshot read from postgres")
	return ds, nil
}

// registrationRows flattens course rosters into (student_id, course_id) rows
func registrationRows(ds models.Dataset) [][]any {
	var rows [][]any
	for _, c := range ds.Courses {
		for _, sid := range c.StudentIDs {
			rows = append(rows, []any{sid, c.ID})
		}
	}
	return rows
}

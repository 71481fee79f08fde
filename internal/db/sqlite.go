package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/config"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS students (
	student_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INTEGER CHECK (age >= 0),
	email      TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS instructors (
	instructor_id TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	age           INTEGER CHECK (age >= 0),
	email         TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
	course_id     TEXT PRIMARY KEY,
	course_name   TEXT NOT NULL,
	instructor_id TEXT,
	FOREIGN KEY (instructor_id) REFERENCES instructors (instructor_id)
		ON UPDATE CASCADE ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS registrations (
	student_id TEXT,
	course_id  TEXT,
	PRIMARY KEY (student_id, course_id),
	FOREIGN KEY (student_id) REFERENCES students (student_id)
		ON UPDATE CASCADE ON DELETE CASCADE,
	FOREIGN KEY (course_id) REFERENCES courses (course_id)
		ON UPDATE CASCADE ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS snapshot_meta (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	saved_at TEXT NOT NULL
);
`

// SQLiteStore keeps dataset snapshots in a local SQLite file
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at path and ensures the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// PRAGMA foreign_keys is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// Name identifies the backend
func (s *SQLiteStore) Name() string {
	return config.DriverSQLite
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WriteSnapshot replaces every table with ds inside one transaction
func (s *SQLiteStore) WriteSnapshot(ctx context.Context, ds models.Dataset) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		"DELETE FROM registrations",
		"DELETE FROM courses",
		"DELETE FROM students",
		"DELETE FROM instructors",
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	for _, in := range ds.Instructors {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO instructors (instructor_id, name, age, email) VALUES (?, ?, ?, ?)",
			in.ID, in.Name, in.Age, in.Email); err != nil {
			return fmt.Errorf("insert instructor %s: %w", in.ID, err)
		}
	}
	for _, st := range ds.Students {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO students (student_id, name, age, email) VALUES (?, ?, ?, ?)",
			st.ID, st.Name, st.Age, st.Email); err != nil {
			return fmt.Errorf("insert student %s: %w", st.ID, err)
		}
	}
	for _, c := range ds.Courses {
		var instructorID sql.NullString
		if c.HasInstructor() {
			instructorID = sql.NullString{String: c.InstructorID, Valid: true}
		}
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO courses (course_id, course_name, instructor_id) VALUES (?, ?, ?)",
			c.ID, c.Title, instructorID); err != nil {
			return fmt.Errorf("insert course %s: %w", c.ID, err)
		}
		for _, sid := range c.StudentIDs {
			if _, err = tx.ExecContext(ctx,
				"INSERT INTO registrations (student_id, course_id) VALUES (?, ?)", sid, c.ID); err != nil {
				return fmt.Errorf("insert registration %s/%s: %w", sid, c.ID, err)
			}
		}
	}

	if _, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshot_meta (id, saved_at) VALUES (1, ?)",
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write snapshot meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Debug().Str("path", s.path).Int("courses", len(ds.Courses)).Msg("Snapshot written to sqlite")
	return nil
}

// ReadSnapshot loads the stored tables. It fails with a not-found error
// when nothing has been written yet.
func (s *SQLiteStore) ReadSnapshot(ctx context.Context) (models.Dataset, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Dataset{}, apperrors.NewNotFoundError("snapshot", s.Name())
	}
	if err != nil {
		return models.Dataset{}, fmt.Errorf("read snapshot meta: %w", err)
	}

	ds := models.Dataset{}

	rows, err := s.db.QueryContext(ctx, "SELECT instructor_id, name, COALESCE(age, 0), email FROM instructors ORDER BY instructor_id")
	if err != nil {
		return models.Dataset{}, fmt.Errorf("query instructors: %w", err)
	}
	for rows.Next() {
		var in models.Instructor
		if err := rows.Scan(&in.ID, &in.Name, &in.Age, &in.Email); err != nil {
			rows.Close()
			return models.Dataset{}, fmt.Errorf("scan instructor: %w", err)
		}
		ds.Instructors = append(ds.Instructors, in)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Dataset{}, err
	}

	rows, err = s.db.QueryContext(ctx, "SELECT student_id, name, COALESCE(age, 0), email FROM students ORDER BY student_id")
	if err != nil {
		return models.Dataset{}, fmt.Errorf("query students: %w", err)
	}
	for rows.Next() {
		var st models.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Age, &st.Email); err != nil {
			rows.Close()
			return models.Dataset{}, fmt.Errorf("scan student: %w", err)
		}
		ds.Students = append(ds.Students, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Dataset{}, err
	}

	rosters := map[string][]string{}
	rows, err = s.db.QueryContext(ctx, "SELECT course_id, student_id FROM registrations ORDER BY course_id, student_id")
	if err != nil {
		return models.Dataset{}, fmt.Errorf("query registrations: %w", err)
	}
	for rows.Next() {
		var cid, sid string
		if err := rows.Scan(&cid, &sid); err != nil {
			rows.Close()
			return models.Dataset{}, fmt.Errorf("scan registration: %w", err)
		}
		rosters[cid] = append(rosters[cid], sid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Dataset{}, err
	}

	rows, err = s.db.QueryContext(ctx, "SELECT course_id, course_name, COALESCE(instructor_id, '') FROM courses ORDER BY course_id")
	if err != nil {
		return models.Dataset{}, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.InstructorID); err != nil {
			return models.Dataset{}, fmt.Errorf("scan course: %w", err)
		}
		c.StudentIDs = rosters[c.ID]
		ds.Courses = append(ds.Courses, c)
	}
	if err := rows.Err(); err != nil {
		return models.Dataset{}, err
	}

	logger.Debug().Str("path", s.path).Str("saved_at", savedAt).Msg("Snapshot read from sqlite")
	return ds, nil
}

// BackupTo copies the live database into a new file at dest
func (s *SQLiteStore) BackupTo(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %s already exists", dest)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}
	logger.Info().Str("from", s.path).Str("to", dest).Msg("Database backed up")
	return nil
}

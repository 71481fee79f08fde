package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

// PostgreSQL error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint. An empty constraintName matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
		(constraintName == "" || pgErr.ConstraintName == constraintName)
}

// IsForeignKeyError checks if the error is a PostgreSQL foreign key violation
func IsForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// Translate maps constraint violations onto application errors and returns
// other errors unchanged.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case IsDuplicateConstraintError(err, "students_email_key"),
		IsDuplicateConstraintError(err, "instructors_email_key"):
		return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, err.Error())
	case IsDuplicateConstraintError(err, ""):
		return apperrors.NewCustomError(apperrors.ErrDuplicateID, err.Error())
	case IsForeignKeyError(err):
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	default:
		return err
	}
}

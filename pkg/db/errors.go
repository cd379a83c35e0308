package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres or SQLite. When constraintName is provided the violation must name it.
func IsUniqueViolation(err error, constraintName string) bool {
	return isViolation(err, constraintName, gorm.ErrDuplicatedKey, pgUniqueViolation,
		"duplicate key value", "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
// SQLite does not name the constraint, so a named check only matches Postgres.
func IsForeignKeyViolation(err error, constraintName string) bool {
	return isViolation(err, constraintName, gorm.ErrForeignKeyViolated, pgForeignKeyViolation,
		"violates foreign key constraint", "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err is a CHECK constraint violation.
func IsCheckViolation(err error, constraintName string) bool {
	return isViolation(err, constraintName, gorm.ErrCheckConstraintViolated, pgCheckViolation,
		"violates check constraint", "CHECK constraint failed")
}

func isViolation(err error, constraintName string, sentinel error, pgCode string, markers ...string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sentinel) && constraintName == "" {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCode {
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	msg := err.Error()
	matched := false
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if constraintName == "" {
		return true
	}
	return strings.Contains(msg, constraintName)
}

// IsNotFound reports whether err is gorm's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

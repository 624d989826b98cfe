package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/vantage/internal/repository"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// violates reports whether err is the given constraint failure. The driver's
// extended result code is preferred; the message is the fallback for errors
// that lost their type through wrapping in database/sql.
func violates(err error, code int, message string) bool {
	if err == nil {
		return false
	}
	var se *sqlitedriver.Error
	if errors.As(err, &se) && se.Code() == code {
		return true
	}
	return strings.Contains(err.Error(), message)
}

func isForeignKeyViolation(err error) bool {
	return violates(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	return violates(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed") ||
		violates(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "PRIMARY KEY constraint failed")
}

func isCheckViolation(err error) bool {
	return violates(err, sqlite3.SQLITE_CONSTRAINT_CHECK, "CHECK constraint failed")
}

// writeError maps constraint failures on a write to repository errors.
func writeError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return repository.ErrConflict
	case isForeignKeyViolation(err):
		return repository.ErrForeignKeyViolation
	case isCheckViolation(err):
		return fmt.Errorf("%w: %s: %v", repository.ErrInvalidInput, op, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

package repository

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrTaskNotFound      = errors.New("task not found")
	ErrDuplicateTaskName = errors.New("task name already used by this user")
)

// pqUniqueViolation is the SQLSTATE for unique_violation.
const pqUniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err came from a unique constraint. gorm
// translates pgx and sqlite errors; connections opened through lib/pq surface *pq.Error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

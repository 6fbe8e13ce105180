package database

import (
	"context"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
)

// UserCache defines the interface for caching user lookups by email
type UserCache interface {
	// GetUser returns (nil, nil) on a cache miss.
	GetUser(ctx context.Context, email string) (*models.User, error)
	// UserVersion must be read before the database load whose result is passed to SetUser.
	UserVersion(ctx context.Context, email string) (int64, error)
	// SetUser skips the write when DeleteUser ran after version was read.
	SetUser(ctx context.Context, user *models.User, version int64) (bool, error)
	DeleteUser(ctx context.Context, email string) error
	Close() error
}

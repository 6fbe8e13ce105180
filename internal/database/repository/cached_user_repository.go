package repository

import (
	"context"
	"log/slog"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
)

// cachedUserRepository serves FindByEmail from a cache and evicts on every write.
// Cache failures are logged and fall through to the underlying repository.
type cachedUserRepository struct {
	UserRepository
	cache  database.UserCache
	logger *slog.Logger
}

// NewCachedUserRepository wraps next with a read-through email cache
func NewCachedUserRepository(next UserRepository, cache database.UserCache, logger *slog.Logger) UserRepository {
	return &cachedUserRepository{
		UserRepository: next,
		cache:          cache,
		logger:         logger,
	}
}

func (r *cachedUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	cached, err := r.cache.GetUser(ctx, email)
	if err != nil {
		r.logger.Warn("⚠️ [UserCache] Cache read failed, using database", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	// Read before the database so an eviction racing this load is detected.
	version, versionErr := r.cache.UserVersion(ctx, email)

	user, err := r.UserRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if versionErr != nil {
		return user, nil
	}
	if _, err := r.cache.SetUser(ctx, user, version); err != nil {
		r.logger.Warn("⚠️ [UserCache] Cache write failed", "user_id", user.ID, "error", err)
	}
	return user, nil
}

func (r *cachedUserRepository) Update(ctx context.Context, user *models.User) error {
	// The stored email may differ from user.Email if the caller changed it.
	previous, findErr := r.UserRepository.FindByID(ctx, user.ID)

	if err := r.UserRepository.Update(ctx, user); err != nil {
		return err
	}

	r.evict(ctx, user.Email)
	if findErr == nil && previous.Email != user.Email {
		r.evict(ctx, previous.Email)
	}
	return nil
}

func (r *cachedUserRepository) Delete(ctx context.Context, id uint) error {
	user, err := r.UserRepository.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}

	r.evict(ctx, user.Email)
	return nil
}

func (r *cachedUserRepository) evict(ctx context.Context, email string) {
	if err := r.cache.DeleteUser(ctx, email); err != nil {
		r.logger.Warn("⚠️ [UserCache] Cache eviction failed", "email", email, "error", err)
	}
}

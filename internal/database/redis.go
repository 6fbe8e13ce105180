package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/config"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
)

// RedisClient wraps the redis client with helper methods for the user cache
type RedisClient struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// cachedUser is the cache representation; models.User hides the hash from JSON.
type cachedUser struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*RedisClient, error) {
	logger.Info("🔌 [Redis] Connecting to Redis...",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
		"db", cfg.RedisDatabase,
	)

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDatabase),
	})

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [Redis] Redis connection established")

	return NewRedisClientWithClient(client, time.Duration(cfg.UserCacheTTL)*time.Second, logger), nil
}

// NewRedisClientWithClient wraps an existing redis.Client
func NewRedisClientWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisClient {
	return &RedisClient{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// userKey generates a Redis key for a user looked up by email
func userKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

// versionKey holds the eviction counter for userKey(email)
func versionKey(email string) string {
	return fmt.Sprintf("user:version:%s", email)
}

// GetUser retrieves a cached user by email
func (r *RedisClient) GetUser(ctx context.Context, email string) (*models.User, error) {
	data, err := r.client.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("❌ [Redis] Failed to get cached user", "email", email, "error", err)
		return nil, err
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		r.logger.Warn("⚠️ [Redis] Failed to unmarshal cached user, dropping entry", "email", email, "error", err)
		_ = r.client.Del(ctx, userKey(email)).Err()
		return nil, nil
	}

	r.logger.Debug("📖 [Redis] User cache hit", "email", email)

	return &models.User{
		ID:           cached.ID,
		Email:        cached.Email,
		PasswordHash: cached.PasswordHash,
		CreatedAt:    cached.CreatedAt,
		UpdatedAt:    cached.UpdatedAt,
	}, nil
}

// UserVersion returns the eviction counter for email. Callers read it before
// loading a user from the database and hand it back to SetUser.
func (r *RedisClient) UserVersion(ctx context.Context, email string) (int64, error) {
	version, err := r.client.Get(ctx, versionKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		r.logger.Error("❌ [Redis] Failed to read user cache version", "email", email, "error", err)
		return 0, err
	}
	return version, nil
}

// SetUser stores a user keyed by email with the configured TTL, unless the
// entry was evicted after version was read. It reports whether the write happened.
func (r *RedisClient) SetUser(ctx context.Context, user *models.User, version int64) (bool, error) {
	data, err := json.Marshal(cachedUser{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return false, err
	}

	stored := false
	vKey := versionKey(user.Email)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(user.Email), data, r.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, vKey)

	if errors.Is(err, redis.TxFailedErr) {
		r.logger.Debug("⏭️ [Redis] User evicted during load, not caching", "user_id", user.ID)
		return false, nil
	}
	if err != nil {
		r.logger.Error("❌ [Redis] Failed to cache user", "user_id", user.ID, "error", err)
		return false, err
	}
	if !stored {
		r.logger.Debug("⏭️ [Redis] User evicted during load, not caching", "user_id", user.ID)
		return false, nil
	}

	r.logger.Debug("💾 [Redis] Cached user", "user_id", user.ID, "ttl", r.ttl)
	return true, nil
}

// DeleteUser removes a cached user and bumps its version so that loads
// already in flight cannot repopulate the entry.
func (r *RedisClient) DeleteUser(ctx context.Context, email string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, userKey(email))
		pipe.Incr(ctx, versionKey(email))
		pipe.Expire(ctx, versionKey(email), r.versionTTL())
		return nil
	})
	if err != nil {
		r.logger.Error("❌ [Redis] Failed to evict cached user", "email", email, "error", err)
		return err
	}

	r.logger.Debug("🗑️ [Redis] Evicted cached user", "email", email)
	return nil
}

// versionTTL keeps eviction counters around well past any in-flight load.
func (r *RedisClient) versionTTL() time.Duration {
	return max(2*r.ttl, time.Hour)
}

package database_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/testutil"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisClient := database.NewRedisClientWithClient(client, time.Hour, testutil.TestLogger())

	t.Cleanup(func() {
		redisClient.Close()
		mr.Close()
	})

	return mr, redisClient
}

func TestRedisClient_SetAndGetUser(t *testing.T) {
	mr, redisClient := setupMiniRedis(t)
	ctx := context.Background()

	user := &models.User{
		ID:           42,
		Email:        "cached@example.com",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	stored, err := redisClient.SetUser(ctx, user, 0)
	require.NoError(t, err)
	assert.True(t, stored)

	assert.True(t, mr.Exists("user:email:cached@example.com"))
	assert.Equal(t, time.Hour, mr.TTL("user:email:cached@example.com"))

	got, err := redisClient.GetUser(ctx, "cached@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt))
}

func TestRedisClient_Miss(t *testing.T) {
	_, redisClient := setupMiniRedis(t)

	got, err := redisClient.GetUser(context.Background(), "absent@example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClient_DeleteUser(t *testing.T) {
	mr, redisClient := setupMiniRedis(t)
	ctx := context.Background()

	_, err := redisClient.SetUser(ctx, &models.User{ID: 1, Email: "gone@example.com"}, 0)
	require.NoError(t, err)
	require.NoError(t, redisClient.DeleteUser(ctx, "gone@example.com"))
	assert.False(t, mr.Exists("user:email:gone@example.com"))

	// Deleting a missing key is not an error.
	assert.NoError(t, redisClient.DeleteUser(ctx, "gone@example.com"))

	version, err := redisClient.UserVersion(ctx, "gone@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Equal(t, 2*time.Hour, mr.TTL("user:version:gone@example.com"))
}

func TestRedisClient_SetUserAfterEviction(t *testing.T) {
	mr, redisClient := setupMiniRedis(t)
	ctx := context.Background()
	user := &models.User{ID: 7, Email: "stale@example.com", PasswordHash: "old"}

	version, err := redisClient.UserVersion(ctx, user.Email)
	require.NoError(t, err)
	assert.Zero(t, version)

	// An eviction lands between the version read and the write.
	require.NoError(t, redisClient.DeleteUser(ctx, user.Email))

	stored, err := redisClient.SetUser(ctx, user, version)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("user:email:stale@example.com"))

	version, err = redisClient.UserVersion(ctx, user.Email)
	require.NoError(t, err)
	stored, err = redisClient.SetUser(ctx, user, version)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, mr.Exists("user:email:stale@example.com"))
}

func TestRedisClient_CorruptEntryDropped(t *testing.T) {
	mr, redisClient := setupMiniRedis(t)

	require.NoError(t, mr.Set("user:email:bad@example.com", "{not json"))

	got, err := redisClient.GetUser(context.Background(), "bad@example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("user:email:bad@example.com"))
}

func TestRedisClient_Expiry(t *testing.T) {
	mr, redisClient := setupMiniRedis(t)
	ctx := context.Background()

	_, err := redisClient.SetUser(ctx, &models.User{ID: 3, Email: "ttl@example.com"}, 0)
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	got, err := redisClient.GetUser(ctx, "ttl@example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	port, err := strconv.ParseInt(mr.Port(), 10, 64)
	require.NoError(t, err)

	cfg := testutil.TestConfig()
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = port

	client, err := database.NewRedisClient(context.Background(), cfg, testutil.TestLogger())
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	mr.Close()
	_, err = database.NewRedisClient(context.Background(), cfg, testutil.TestLogger())
	assert.Error(t, err)
}

package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/auth"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/testutil"
)

const testPassword = "password123"

type fixture struct {
	db     *gorm.DB
	users  *service.UserService
	auth   *service.AuthService
	tasks  *service.TaskService
	tokens *auth.JWTService
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cfg := testutil.TestConfig()
	log := testutil.TestLogger()
	db := testutil.NewTestDB(t)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	hasher := auth.NewBcryptHasher(int(cfg.BcryptCost))
	tokens, err := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL())
	require.NoError(t, err)

	users := service.NewUserService(userRepo, hasher, log)
	return fixture{
		db:     db,
		users:  users,
		auth:   service.NewAuthService(users, userRepo, hasher, tokens, log),
		tasks:  service.NewTaskService(userRepo, taskRepo, log),
		tokens: tokens,
	}
}

func (f fixture) register(t *testing.T, email string) *service.AuthResponse {
	t.Helper()

	resp, err := f.auth.RegisterUser(context.Background(), service.UserCreationRequest{
		Email:                email,
		Password:             testPassword,
		PasswordConfirmation: testPassword,
	})
	require.NoError(t, err)
	return resp
}

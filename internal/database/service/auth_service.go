package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/apperr"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/auth"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/repository"
)

// AuthResponse is returned by login and registration
type AuthResponse struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// AuthService handles login and registration. Registration delegates account
// creation to UserService and then issues a token exactly as login does.
type AuthService struct {
	users    *UserService
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	tokens   auth.TokenService
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	users *UserService,
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// RegisterUser creates an account and signs the new user in.
func (s *AuthService) RegisterUser(ctx context.Context, req UserCreationRequest) (*AuthResponse, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "email", req.Email)

	user, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.UserID)
	return &AuthResponse{UserID: user.UserID, Email: user.Email, Token: token}, nil
}

// LoginUser verifies the credentials and issues a session token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*AuthResponse, error) {
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, apperr.New(apperr.KindIllegalArgument, "invalid email or password")
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, apperr.Internal(err)
	}

	ok, err := s.hasher.Matches(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("❌ [AuthService] Stored password hash is unusable", "user_id", user.ID, "error", err)
		return nil, apperr.Internal(err)
	}
	if !ok {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, apperr.New(apperr.KindInvalidPassword, "invalid email or password")
	}

	token, err := s.issueToken(user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return &AuthResponse{UserID: user.ID, Email: user.Email, Token: token}, nil
}

func (s *AuthService) issueToken(email string) (string, error) {
	token, err := s.tokens.GenerateToken(email)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate token", "error", err)
		return "", apperr.Internal(err)
	}
	return token, nil
}

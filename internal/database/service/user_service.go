package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/apperr"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/auth"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/repository"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,4}$`)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

// UserDetails is the outward view of a user.
type UserDetails struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
}

// UserCreationRequest carries the fields needed to create an account
type UserCreationRequest struct {
	Email                string
	Password             string
	PasswordConfirmation string
}

// UpdatePasswordRequest carries a password change
type UpdatePasswordRequest struct {
	CurrentPassword         string
	NewPassword             string
	NewPasswordConfirmation string
}

// DeleteUserRequest confirms an account deletion
type DeleteUserRequest struct {
	Email           string
	CurrentPassword string
}

// UserService owns account creation, password changes and deletion.
type UserService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	logger   *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repository.UserRepository, hasher auth.PasswordHasher, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

// Create validates and persists a new user. It does not issue a token.
func (s *UserService) Create(ctx context.Context, req UserCreationRequest) (*UserDetails, error) {
	s.logger.Info("📝 [UserService] Creating user", "email", req.Email)

	if !emailPattern.MatchString(req.Email) {
		s.logger.Warn("⚠️ [UserService] Invalid email format", "email", req.Email)
		return nil, apperr.New(apperr.KindInvalidEmailFormat, "email %q is not a valid address", req.Email)
	}

	if err := validatePassword(req.Password, req.PasswordConfirmation); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("❌ [UserService] Database error checking email", "error", err)
		return nil, apperr.Internal(err)
	}
	if exists {
		s.logger.Warn("⚠️ [UserService] Email already registered", "email", req.Email)
		return nil, emailTaken(req.Email)
	}

	hash, err := s.hasher.Encode(req.Password)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to hash password", "error", err)
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, emailTaken(req.Email)
		}
		s.logger.Error("❌ [UserService] Failed to create user", "error", err)
		return nil, apperr.Internal(err)
	}

	s.logger.Info("✅ [UserService] User created", "user_id", user.ID)
	return toUserDetails(user), nil
}

// GetUser returns the details of an existing user.
func (s *UserService) GetUser(ctx context.Context, userID uint) (*UserDetails, error) {
	user, err := findUser(ctx, s.userRepo, userID, s.logger, "UserService")
	if err != nil {
		return nil, err
	}
	return toUserDetails(user), nil
}

// UpdatePassword replaces the user's password after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint, req UpdatePasswordRequest) (*UserDetails, error) {
	s.logger.Info("🔑 [UserService] Password change attempt", "user_id", userID)

	user, err := findUser(ctx, s.userRepo, userID, s.logger, "UserService")
	if err != nil {
		return nil, err
	}

	if err := s.verifyPassword(user, req.CurrentPassword); err != nil {
		return nil, err
	}

	if req.NewPassword == req.CurrentPassword {
		return nil, apperr.New(apperr.KindInvalidPassword, "new password must differ from the current password")
	}

	if err := validatePassword(req.NewPassword, req.NewPasswordConfirmation); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Encode(req.NewPassword)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to hash password", "error", err)
		return nil, apperr.Internal(err)
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, userNotFound(userID)
		}
		s.logger.Error("❌ [UserService] Failed to update password", "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}

	s.logger.Info("✅ [UserService] Password updated", "user_id", userID)
	return toUserDetails(user), nil
}

// Delete removes the user and all of their tasks. The caller must confirm the
// account email and current password.
func (s *UserService) Delete(ctx context.Context, userID uint, req DeleteUserRequest) error {
	s.logger.Info("🗑️ [UserService] Account deletion attempt", "user_id", userID)

	user, err := findUser(ctx, s.userRepo, userID, s.logger, "UserService")
	if err != nil {
		return err
	}

	if req.Email != user.Email {
		s.logger.Warn("⚠️ [UserService] Deletion email mismatch", "user_id", userID)
		return apperr.New(apperr.KindIllegalArgument, "email does not match the account")
	}

	if err := s.verifyPassword(user, req.CurrentPassword); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return userNotFound(userID)
		}
		s.logger.Error("❌ [UserService] Failed to delete user", "user_id", userID, "error", err)
		return apperr.Internal(err)
	}

	s.logger.Info("✅ [UserService] User deleted", "user_id", userID)
	return nil
}

func (s *UserService) verifyPassword(user *models.User, rawPassword string) error {
	ok, err := s.hasher.Matches(rawPassword, user.PasswordHash)
	if err != nil {
		s.logger.Error("❌ [UserService] Stored password hash is unusable", "user_id", user.ID, "error", err)
		return apperr.Internal(err)
	}
	if !ok {
		s.logger.Warn("⚠️ [UserService] Current password mismatch", "user_id", user.ID)
		return apperr.New(apperr.KindInvalidPassword, "current password is incorrect")
	}
	return nil
}

// findUser resolves a user id, reporting unknown ids as IllegalArgument.
// component tags the log lines with the calling service.
func findUser(ctx context.Context, repo repository.UserRepository, userID uint, logger *slog.Logger, component string) (*models.User, error) {
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.Warn("⚠️ ["+component+"] User not found", "user_id", userID)
			return nil, userNotFound(userID)
		}
		logger.Error("❌ ["+component+"] Database error loading user", "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func validatePassword(password, confirmation string) error {
	switch {
	case strings.TrimSpace(password) == "" || strings.TrimSpace(confirmation) == "":
		return apperr.New(apperr.KindInvalidPassword, "password and confirmation must not be empty")
	case password != confirmation:
		return apperr.New(apperr.KindInvalidPassword, "password and confirmation do not match")
	case len(password) < minPasswordLength:
		return apperr.New(apperr.KindInvalidPassword, "password must be at least %d characters", minPasswordLength)
	case len(password) > maxPasswordLength:
		return apperr.New(apperr.KindInvalidPassword, "password must be at most %d bytes", maxPasswordLength)
	}
	return nil
}

func userNotFound(userID uint) error {
	return apperr.New(apperr.KindIllegalArgument, "user %d not found", userID)
}

func emailTaken(email string) error {
	return apperr.New(apperr.KindEmailAlreadyExists, "email %s is already registered", email)
}

func toUserDetails(user *models.User) *UserDetails {
	return &UserDetails{
		UserID: user.ID,
		Email:  user.Email,
	}
}

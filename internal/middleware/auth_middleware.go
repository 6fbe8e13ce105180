package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/apperr"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/auth"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/response"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
	bearerPrefix = "Bearer "
)

// AuthMiddleware resolves the bearer token to a stored user
type AuthMiddleware struct {
	tokens   auth.TokenService
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(tokens auth.TokenService, userRepo repository.UserRepository, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
		logger:   logger,
	}
}

// RequireAuth validates the JWT and sets the authenticated user in context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.logger.Warn("⚠️ [Middleware] Missing or malformed Authorization header")
			response.Abort(c, apperr.New(apperr.KindInsufficientAuthentication, "bearer token required"))
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

		// The subject is read before validation only to have something to validate against.
		var subject string
		if claims, err := m.tokens.ExtractClaims(tokenString); err == nil {
			subject = claims.Subject
		}

		if !m.tokens.ValidateToken(tokenString, subject) {
			m.logger.Warn("⚠️ [Middleware] Invalid or expired token")
			response.Abort(c, apperr.New(apperr.KindInsufficientAuthentication, "invalid or expired token"))
			return
		}

		user, err := m.userRepo.FindByEmail(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				m.logger.Warn("⚠️ [Middleware] Token subject has no account", "email", subject)
				response.Abort(c, apperr.New(apperr.KindAuthenticationCredentialsNotFound, "no account for the supplied token"))
				return
			}
			m.logger.Error("❌ [Middleware] Failed to load token subject", "error", err)
			response.Abort(c, apperr.Internal(err))
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userEmailKey, user.Email)
		m.logger.Debug("✅ [Middleware] Token validated", "user_id", user.ID)

		c.Next()
	}
}

// CurrentUserID returns the id set by RequireAuth.
func CurrentUserID(c *gin.Context) (uint, bool) {
	id, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := id.(uint)
	return userID, ok
}

// CurrentUserEmail returns the email set by RequireAuth.
func CurrentUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

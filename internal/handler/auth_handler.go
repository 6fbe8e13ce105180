package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/response"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(service *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest leaves password rules to the service so they surface as InvalidPassword.
type RegisterRequest struct {
	Email                string `json:"email" binding:"required"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		h.logger.Warn("⚠️ [Handler] Invalid registration request")
		return
	}

	resp, err := h.service.RegisterUser(c.Request.Context(), service.UserCreationRequest{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, resp)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		h.logger.Warn("⚠️ [Handler] Invalid login request")
		return
	}

	resp, err := h.service.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, resp)
}

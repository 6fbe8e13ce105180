package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/response"
)

// UserHandler handles HTTP requests for the caller's own account
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

type UpdatePasswordRequest struct {
	CurrentPassword         string `json:"currentPassword" binding:"required"`
	NewPassword             string `json:"newPassword"`
	NewPasswordConfirmation string `json:"newPasswordConfirmation"`
}

type DeleteUserRequest struct {
	Email           string `json:"email" binding:"required"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
}

// GetUser returns the caller's account
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	details, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, details)
}

// UpdatePassword changes the caller's password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	details, err := h.service.UpdatePassword(c.Request.Context(), userID, service.UpdatePasswordRequest{
		CurrentPassword:         req.CurrentPassword,
		NewPassword:             req.NewPassword,
		NewPasswordConfirmation: req.NewPasswordConfirmation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, details)
}

// Delete removes the caller's account and tasks
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req DeleteUserRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.service.Delete(c.Request.Context(), userID, service.DeleteUserRequest{
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logger.Info("👋 [Handler] Account deleted", "user_id", userID)
	response.NoContent(c)
}

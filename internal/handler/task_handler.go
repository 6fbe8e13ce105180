package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/response"
)

// TaskHandler handles HTTP requests for the caller's tasks
type TaskHandler struct {
	service *service.TaskService
	logger  *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger,
	}
}

type TaskRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Description string `json:"description" binding:"required,notblank"`
}

func (r TaskRequest) toService() service.TaskRequest {
	return service.TaskRequest{Name: r.Name, Description: r.Description}
}

// ListTasks returns every task the caller owns
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	tasks, err := h.service.GetAllTasksForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, tasks)
}

// CreateTask adds a task for the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), userID, req.toService())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, task)
}

// GetTask returns one of the caller's tasks
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := taskPath(c)
	if !ok {
		return
	}

	task, err := h.service.GetTaskByUserIDAndTaskID(c.Request.Context(), userID, taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, task)
}

// UpdateTask overwrites one of the caller's tasks
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := taskPath(c)
	if !ok {
		return
	}

	var req TaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), userID, taskID, req.toService())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, task)
}

// DeleteTask removes one of the caller's tasks
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := taskPath(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func taskPath(c *gin.Context) (uint, uint, bool) {
	userID, ok := pathUserID(c)
	if !ok {
		return 0, 0, false
	}
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return 0, 0, false
	}
	return userID, taskID, true
}

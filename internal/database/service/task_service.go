package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/apperr"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/repository"
)

// TaskDetails is the outward view of a task.
type TaskDetails struct {
	TaskID      uint   `json:"taskId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      uint   `json:"userId"`
}

// TaskRequest carries the editable fields of a task
type TaskRequest struct {
	Name        string
	Description string
}

// TaskService manages tasks on behalf of their owner. Every task lookup is
// scoped to the owning user in the query, so foreign tasks read as missing.
type TaskService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	logger   *slog.Logger
}

// NewTaskService creates a new task service instance
func NewTaskService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		logger:   logger,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, userID uint, req TaskRequest) (*TaskDetails, error) {
	if err := validateTaskRequest(req); err != nil {
		return nil, err
	}

	user, err := findUser(ctx, s.userRepo, userID, s.logger, "TaskService")
	if err != nil {
		return nil, err
	}

	exists, err := s.taskRepo.ExistsByNameAndUserID(ctx, req.Name, user.ID)
	if err != nil {
		s.logger.Error("❌ [TaskService] Database error checking task name", "error", err)
		return nil, apperr.Internal(err)
	}
	if exists {
		s.logger.Warn("⚠️ [TaskService] Task name already used", "user_id", user.ID, "name", req.Name)
		return nil, taskExists(req.Name)
	}

	task := &models.Task{
		Name:        req.Name,
		Description: req.Description,
		UserID:      user.ID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		// A concurrent request may have inserted the same name after the check.
		if errors.Is(err, repository.ErrDuplicateTaskName) {
			return nil, taskExists(req.Name)
		}
		s.logger.Error("❌ [TaskService] Failed to create task", "error", err)
		return nil, apperr.Internal(err)
	}

	s.logger.Info("✅ [TaskService] Task created", "task_id", task.ID, "user_id", user.ID)
	return toTaskDetails(task), nil
}

// UpdateTask overwrites name and description. The new name is not pre-checked;
// a collision reported by the store still surfaces as TaskAlreadyExists.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, req TaskRequest) (*TaskDetails, error) {
	if err := validateTaskRequest(req); err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Name = req.Name
	task.Description = req.Description
	if err := s.taskRepo.Update(ctx, task); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateTaskName):
			return nil, taskExists(req.Name)
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, taskNotFound(taskID)
		}
		s.logger.Error("❌ [TaskService] Failed to update task", "task_id", taskID, "error", err)
		return nil, apperr.Internal(err)
	}

	s.logger.Info("✅ [TaskService] Task updated", "task_id", taskID, "user_id", userID)
	return toTaskDetails(task), nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	user, err := findUser(ctx, s.userRepo, userID, s.logger, "TaskService")
	if err != nil {
		return err
	}

	if err := s.taskRepo.DeleteByIDAndUserID(ctx, taskID, user.ID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return taskNotFound(taskID)
		}
		s.logger.Error("❌ [TaskService] Failed to delete task", "task_id", taskID, "error", err)
		return apperr.Internal(err)
	}

	s.logger.Info("✅ [TaskService] Task deleted", "task_id", taskID, "user_id", userID)
	return nil
}

func (s *TaskService) GetAllTasksForUser(ctx context.Context, userID uint) ([]TaskDetails, error) {
	user, err := findUser(ctx, s.userRepo, userID, s.logger, "TaskService")
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		s.logger.Error("❌ [TaskService] Failed to list tasks", "user_id", userID, "error", err)
		return nil, apperr.Internal(err)
	}

	details := make([]TaskDetails, 0, len(tasks))
	for i := range tasks {
		details = append(details, *toTaskDetails(&tasks[i]))
	}
	return details, nil
}

func (s *TaskService) GetTaskByUserIDAndTaskID(ctx context.Context, userID, taskID uint) (*TaskDetails, error) {
	task, err := s.findTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return toTaskDetails(task), nil
}

func (s *TaskService) findTask(ctx context.Context, userID, taskID uint) (*models.Task, error) {
	user, err := findUser(ctx, s.userRepo, userID, s.logger, "TaskService")
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByIDAndUserID(ctx, taskID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			s.logger.Warn("⚠️ [TaskService] Task not found for user", "task_id", taskID, "user_id", user.ID)
			return nil, taskNotFound(taskID)
		}
		s.logger.Error("❌ [TaskService] Database error loading task", "task_id", taskID, "error", err)
		return nil, apperr.Internal(err)
	}
	return task, nil
}

func validateTaskRequest(req TaskRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.New(apperr.KindIllegalArgument, "task name must not be empty")
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperr.New(apperr.KindIllegalArgument, "task description must not be empty")
	}
	return nil
}

func taskExists(name string) error {
	return apperr.New(apperr.KindTaskAlreadyExists, "task %q already exists", name)
}

func taskNotFound(taskID uint) error {
	return apperr.New(apperr.KindTaskNotFound, "task %d not found", taskID)
}

func toTaskDetails(task *models.Task) *TaskDetails {
	return &TaskDetails{
		TaskID:      task.ID,
		Name:        task.Name,
		Description: task.Description,
		UserID:      task.UserID,
	}
}

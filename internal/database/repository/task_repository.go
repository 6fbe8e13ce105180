package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/database/models"
)

// TaskRepository defines the interface for task data operations.
// Every lookup is scoped to the owning user inside the query itself.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByIDAndUserID(ctx context.Context, taskID, userID uint) (*models.Task, error)
	ExistsByNameAndUserID(ctx context.Context, name string, userID uint) (bool, error)
	ListByUserID(ctx context.Context, userID uint) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	DeleteByIDAndUserID(ctx context.Context, taskID, userID uint) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository instance
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	err := r.db.WithContext(ctx).Create(task).Error
	if isUniqueViolation(err) {
		return ErrDuplicateTaskName
	}
	return err
}

func (r *taskRepository) FindByIDAndUserID(ctx context.Context, taskID, userID uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ExistsByNameAndUserID(ctx context.Context, name string, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("name = ? AND user_id = ?", name, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *taskRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("task_id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("task_id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"name":        task.Name,
			"description": task.Description,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrDuplicateTaskName
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteByIDAndUserID(ctx context.Context, taskID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

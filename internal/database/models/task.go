package models

import (
	"time"
)

// Task belongs to a single user; Name is unique within that user's tasks.
type Task struct {
	ID          uint      `gorm:"column:task_id;primaryKey" json:"taskId"`
	Name        string    `gorm:"not null;uniqueIndex:uq_tasks_name_user" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	UserID      uint      `gorm:"column:user_id;not null;index;uniqueIndex:uq_tasks_name_user" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (Task) TableName() string {
	return "tasks"
}

package models

import (
	"time"
)

// User is an account holder. Tasks are owned by exactly one user.
type User struct {
	ID           uint      `gorm:"column:user_id;primaryKey" json:"userId"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Relationships
	Tasks []Task `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

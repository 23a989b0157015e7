package models

import "time"

// Role decides what a user is allowed to do.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a customer or an administrator of the store.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;default:'USER'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

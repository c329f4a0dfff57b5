package models

import (
	"time"
)

// User represents a registered user
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FirstName     string    `gorm:"size:50;not null" json:"first_name"`
	LastName      string    `gorm:"size:50;not null" json:"last_name"`
	Age           int       `gorm:"not null" json:"age"`
	Mobile        string    `gorm:"size:20" json:"mob"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"not null" json:"-"` // bcrypt hash
	UserID        string    `gorm:"uniqueIndex;not null;size:6" json:"user_id"` // public 6-digit id
	WalletAddress string    `gorm:"uniqueIndex;not null;size:12" json:"wallet_address"`
	IsAdmin       bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// RegisterRequest is the payload for user registration
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Age       int    `json:"age" binding:"required,gt=0"`
	Mobile    string `json:"mob" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=5"`
}

// LoginRequest is the payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

package models

import "time"

// Roles recognised by the access policy.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is an administrator or editor of the site.
type User struct {
	Base
	Username    string     `json:"username"    gorm:"size:191;uniqueIndex;not null"`
	Password    string     `json:"-"           gorm:"not null"`
	Email       string     `json:"email"       gorm:"size:191"`
	Name        string     `json:"name"`
	Role        string     `json:"role"        gorm:"size:20;not null;default:editor"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func (User) TableName() string { return "users" }

// UserSummary is the public projection attached to media rows.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

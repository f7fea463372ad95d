// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Auth providers a user account can originate from.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
	ProviderGitHub      = "github"
)

// Roles understood by the authorization layer.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Password is empty for accounts
// created through an OAuth provider.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"unique;not null" json:"username"`
	Email         string         `gorm:"unique;not null" json:"email"`
	Password      string         `json:"-"`
	Provider      string         `gorm:"default:'credentials'" json:"provider"`
	Role          string         `gorm:"default:'user';index" json:"role"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	Bio           string         `json:"bio"`
	Avatar        string         `json:"avatar"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is the externally visible projection of a user.
type PublicProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// Public returns the externally visible projection of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Username: u.Username,
		Bio:      u.Bio,
		Avatar:   u.Avatar,
	}
}

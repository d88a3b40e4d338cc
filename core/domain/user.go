package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewUser(username, email, name, avatar string) *User {
	now := time.Now()
	return &User{
		ID:            uuid.New().String(),
		Username:      username,
		Email:         email,
		Name:          name,
		Avatar:        avatar,
		EmailVerified: false,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (u *User) MarkAsDeleted() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

func (u *User) TouchLastLogin() {
	now := time.Now()
	u.LastLogin = &now
	u.UpdatedAt = now
}

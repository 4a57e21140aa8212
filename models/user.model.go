package models

import (
	"time"
)

// Roles a user account can hold.
const (
	RolePatient    = "patient"
	RoleDoctor     = "doctor"
	RoleResearcher = "researcher"
)

// ValidRole reports whether role is one of the supported account roles.
func ValidRole(role string) bool {
	return role == RolePatient || role == RoleDoctor || role == RoleResearcher
}

type User struct {
	ID            int64      `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	Role          string     `json:"role" db:"role"`
	IsVerified    bool       `json:"is_verified" db:"is_verified"`
	LoginAttempts int        `json:"-" db:"login_attempts"`
	IsLocked      bool       `json:"-" db:"is_locked"`
	LockUntil     *time.Time `json:"-" db:"lock_until"`
	LastLogin     *time.Time `json:"last_login" db:"last_login"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type RefreshToken struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Token     string     `json:"token" db:"token"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

type AuditEvent struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Details   *string   `json:"details" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

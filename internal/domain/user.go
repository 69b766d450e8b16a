package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserStats are the gamification counters the quest engine maintains.
type UserStats struct {
	TotalPoints    int `db:"total_points" json:"total_points"`
	WeeklyPoints   int `db:"weekly_points" json:"weekly_points"`
	TotalCompleted int `db:"total_completed" json:"total_completed"`
	CurrentStreak  int `db:"current_streak" json:"current_streak"`
}

// Profile holds the public-facing user fields.
type Profile struct {
	DisplayName string `db:"display_name" json:"display_name"`
	AvatarURL   string `db:"avatar_url" json:"avatar_url,omitempty"`
	IsPublic    bool   `db:"is_public" json:"is_public"`
	Zone        string `db:"zone" json:"zone"`
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Level        int       `db:"level" json:"level"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Profile      Profile   `json:"profile"`
	Stats        UserStats `json:"stats"`
	LastActive   time.Time `db:"last_active" json:"last_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

package models

import "time"

type User struct {
	ID        int       `json:"id,omitempty" db:"id,omitempty"`
	Email     string    `json:"email,omitempty" db:"email,omitempty"`
	Username  string    `json:"username,omitempty" db:"username,omitempty"`
	Password  string    `json:"password,omitempty" db:"password,omitempty"`
	Role      string    `json:"role,omitempty" db:"role,omitempty"`
	IsPro     bool      `json:"is_pro" db:"is_pro"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at,omitempty"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

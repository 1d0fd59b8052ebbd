package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ErrorResponse is the uniform error body. LimitExceeded and LimitsInfo are
// set only for pool-exhaustion responses so the UI can show an availability
// message instead of a generic failure.
type ErrorResponse struct {
	Error         string      `json:"error"`
	LimitExceeded bool        `json:"limit_exceeded,omitempty"`
	LimitsInfo    *LimitsInfo `json:"limits_info,omitempty"`
}

type LimitsInfo struct {
	ContentType ContentType `json:"content_type"`
	Difficulty  Difficulty  `json:"difficulty,omitempty"`
	Requested   int         `json:"requested"`
	Available   int         `json:"available"`
}

package models

import "time"

// LoginRequest represents credentials provided by the client.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned upon successful authentication.
type TokenResponse struct {
	Token string `json:"token"`
}

// Token represents a stored bearer token (one per user).
type Token struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is a single-message error shape for API errors.
type Detail struct {
	Detail string `json:"detail"`
}

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

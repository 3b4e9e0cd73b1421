package model

import "time"

// User is the authenticated validator.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials is the body for login and register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

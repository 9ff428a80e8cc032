package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Name         string     `json:"name"`
	AcademyName  string     `json:"academyName"`
	Contact      string     `json:"contact"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// IsAdmin checks if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SignupRequest is the request body for user signup
type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	AcademyName string `json:"academyName"`
	Contact     string `json:"contact"`
}

// LoginRequest is the request body for user login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned after successful login/signup
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// FindAccountRequest looks up a username by the holder's name and contact
type FindAccountRequest struct {
	Type    string `json:"type"` // "find-id" or "find-password"
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

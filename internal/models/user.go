package models

import "time"

// Role identifies a user's permission level
type Role string

// User roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStatus identifies whether a user may log in
type UserStatus string

// User statuses
const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)

// Valid reports whether the status is one of the known values
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusBanned
}

// User represents a user in the system
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize password hash
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RegisterRequest is the payload for user registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for user login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Stats holds the admin dashboard counters
type Stats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalProjects     int `json:"totalProjects"`
	PublishedProjects int `json:"publishedProjects"`
}

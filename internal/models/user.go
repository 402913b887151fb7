package models

import "time"

// User is an account; Role holds one of the auth roles
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	CNIC         string     `json:"cnic"`
	Address      string     `json:"address,omitempty"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Role         string     `json:"role"`
	MillID       string     `json:"millId,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"max=30"`
	CNIC     string `json:"cnic" validate:"max=30"`
	Address  string `json:"address"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
	MillID   string `json:"millId"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"max=30"`
	CNIC     string `json:"cnic" validate:"max=30"`
	Address  string `json:"address"`
	Password string `json:"password,omitempty"` // Optional
	Role     string `json:"role" validate:"required"`
	MillID   string `json:"millId"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// api/models/auth_models.go
package models

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Annany2002/flashdeck-backend/internal/domain"
)

// --- Auth Request/Response Structs ---

// SignupRequest defines the structure for the signup request body
type SignupRequest struct {
	Username  string `json:"username" binding:"required,alphanum,max=32"`
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Birthday  string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	Password  string `json:"password" binding:"required,min=8"`
	Avatar    int    `json:"avatar" binding:"required,min=1,max=6"`
}

// LoginRequest accepts both the HTML form and JSON bodies.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse defines the structure for the login response body
type LoginResponse struct {
	Message  string      `json:"message"`
	User     domain.User `json:"user"`
	Token    string      `json:"token"`
	Redirect string      `json:"redirect"`
}

// EditProfileRequest replaces the editable profile fields.
type EditProfileRequest struct {
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Birthday  string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	Password  string `json:"password" binding:"required,min=8"`
	Avatar    int    `json:"avatar" binding:"required,min=1,max=6"`
}

// --- JWT Claims ---

// CustomClaims includes standard claims and our custom username claim for JWT
type CustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

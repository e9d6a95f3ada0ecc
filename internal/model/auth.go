package model

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"required,oneof=admin doctor patient"`
}

type RegisterPatientRequest struct {
	CreatePatientRequest
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenClaims is the identity carried by a validated session token.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	Email  string    `json:"email"`
}

// Actor converts the claims to the authorization variant.
func (c *TokenClaims) Actor() Actor {
	return NewActor(c.UserID, c.Role, c.Email)
}

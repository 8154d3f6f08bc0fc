package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the identity embedded when minting a JWT.
type AccessTokenPayload struct {
	UserID int64
	Email  string
	// JTI binds the token to a refresh session; generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to admin clients.
type AccessTokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

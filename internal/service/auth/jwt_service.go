// Package auth issues and validates the bearer tokens that guard the API.
// Tokens are HS256 JWTs naming the client they were issued to; there is no
// user store behind them.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing bearer tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for subject, the name of the
	// client the token is issued to.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken validates tokenString and extracts its claims, or returns
	// ErrInvalidToken, ErrExpiredToken or ErrTokenNotYetValid.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of a token.
type Claims struct {
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	ID        string    `json:"jti"`
}

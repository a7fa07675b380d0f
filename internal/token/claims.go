// Package token issues and verifies the signed access/refresh token pair.
// Both tokens are HS256 JWTs carrying the same identity claims; they differ
// in secret, lifetime and the token_use claim.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind tells access and refresh tokens apart.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Identity is the set of user fields embedded in every token.
type Identity struct {
	UserID uint64
	Name   string
	Email  string
}

// Claims is the JWT payload.  Subject mirrors Email.
type Claims struct {
	UserID   uint64 `json:"user_id"`
	Name     string `json:"user_name"`
	Email    string `json:"user_email"`
	TokenUse Kind   `json:"token_use"`
	jwt.RegisteredClaims
}

// Identity returns the identity fields of the claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Name: c.Name, Email: c.Email}
}

// Pair is what login and refresh hand back to the client.
type Pair struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config carries everything the issuer needs.  It is built once from the
// application config and never read from the environment here.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Issuer signs access/refresh pairs.
type Issuer struct {
	cfg Config
}

// NewIssuer validates cfg.  A missing secret is a configuration error the
// caller should treat as fatal.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, ErrInvalidTTL
	}
	return &Issuer{cfg: cfg}, nil
}

// Issue signs a fresh pair for id.  Every call gets its own iat and jti.
func (i *Issuer) Issue(id Identity) (Pair, error) {
	now := NowTimeFunc().UTC()

	access, accessExp, err := i.sign(id, KindAccess, i.cfg.AccessSecret, now, i.cfg.AccessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := i.sign(id, KindRefresh, i.cfg.RefreshSecret, now, i.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Pair{
		AccessToken:    access,
		AccessExpires:  accessExp,
		RefreshToken:   refresh,
		RefreshExpires: refreshExp,
	}, nil
}

func (i *Issuer) sign(id Identity, kind Kind, secret string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		UserID:   id.UserID,
		Name:     id.Name,
		Email:    id.Email,
		TokenUse: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

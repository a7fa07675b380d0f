package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks tokens of one kind against one secret.
type Verifier struct {
	secret []byte
	kind   Kind
	issuer string
}

// NewVerifier returns ErrMissingSecret when secret is empty.  A non-empty
// issuer is enforced on every token.
func NewVerifier(secret string, kind Kind, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{secret: []byte(secret), kind: kind, issuer: issuer}, nil
}

// Verify parses raw and returns its claims.  Failures wrap ErrTokenExpired
// or ErrTokenInvalid together with the underlying jwt error, so the message
// stays specific while callers branch on errors.Is.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(NowTimeFunc),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.TokenUse != v.kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrTokenInvalid, v.kind, claims.TokenUse)
	}
	return claims, nil
}

package token

import "errors"

var (
	// ErrMissingSecret means the issuer or verifier was built without a key.
	ErrMissingSecret = errors.New("token secret is not configured")
	// ErrInvalidTTL means a token lifetime is zero or negative.
	ErrInvalidTTL = errors.New("token lifetime must be positive")
	// ErrTokenExpired wraps verification failures caused by exp.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid wraps every other verification failure.
	ErrTokenInvalid = errors.New("invalid token")
)

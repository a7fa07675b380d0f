package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages returned for signup validation failures.
const (
	MsgNameRequired     = "Name must not be empty."
	MsgInvalidEmail     = "Must be a valid email."
	MsgEmailInUse       = "Email address is already being used."
	MsgPasswordTooShort = "Password must be at least 7 characters."
	MsgPasswordTooLong  = "Password must be at most 72 bytes."
)

// Password bounds apply to the trimmed password.  The minimum counts
// characters; the maximum counts bytes, since bcrypt rejects longer input.
const (
	MinPasswordLength = 7
	MaxPasswordBytes  = 72
)

// SignupInput is the raw signup request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// normalize trims every field and lower-cases the email.
func (in SignupInput) normalize() SignupInput {
	return SignupInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: strings.TrimSpace(in.Password),
	}
}

// validateSignup checks the normalized input in a fixed order and reports
// only the first failure: name, email format, email uniqueness, password
// length.
func (s *AuthService) validateSignup(ctx context.Context, in SignupInput) error {
	if err := s.validate.Var(in.Name, "required"); err != nil {
		return validationErr(MsgNameRequired)
	}
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		return validationErr(MsgInvalidEmail)
	}
	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return serverErr("check email", err)
	}
	if exists {
		return validationErr(MsgEmailInUse)
	}
	if err := s.validate.Var(in.Password, "min="+strconv.Itoa(MinPasswordLength)); err != nil {
		return validationErr(MsgPasswordTooShort)
	}
	if len(in.Password) > MaxPasswordBytes {
		return validationErr(MsgPasswordTooLong)
	}
	return nil
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

package service

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by AuthService.  Msg is safe to show to the client for
// every kind except KindServer, whose cause stays in Err.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err.Error() == e.Msg {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// PublicMessage is the text the client may see.
func (e *Error) PublicMessage() string {
	if e.Kind == KindServer {
		return "internal server error"
	}
	return e.Msg
}

// KindOf reports the kind of err; anything that is not an *Error is a
// server error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

func validationErr(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func authenticationErr(msg string) error { return &Error{Kind: KindAuthentication, Msg: msg} }

func authorizationErr(err error) error {
	return &Error{Kind: KindAuthorization, Msg: err.Error(), Err: err}
}

func serverErr(msg string, err error) error { return &Error{Kind: KindServer, Msg: msg, Err: err} }

// Package repository persists user records.  The sentinel errors below let
// the service layer tell a missing or duplicate account apart from a store
// failure without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when no user matches the lookup key.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when the unique email constraint rejects an
// insert.
var ErrEmailExists = errors.New("email already exists")

package model

import "time"

// User represents an account as stored in the `users` table.  The json
// tags are omitted because handlers expose their own response types and the
// password hash must never be serialized.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name, trimmed at signup.
//  Email        – unique, trimmed and lower-cased address.
//  PasswordHash – bcrypt hash of the trimmed password.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    CreatedAt    time.Time // users.created_at
}

// Package queue defines the auth events exchanged over the message broker
// and the consumer that turns them into an audit log.
package queue

// AuthEventsQueue is the durable queue every auth event is published to.
const AuthEventsQueue = "auth.events"

// Event types.
const (
    EventSignedUp  = "user.signed_up"
    EventLoggedIn  = "user.logged_in"
    EventRefreshed = "user.token_refreshed"
    EventLoggedOut = "user.logged_out"
)

// AuthEvent is published after a successful auth state transition.  It never
// carries credentials or tokens.
type AuthEvent struct {
    ID         string `json:"id"`
    Type       string `json:"type"`
    UserID     uint64 `json:"user_id"`
    Email      string `json:"email"`
    OccurredAt string `json:"occurred_at"`
}

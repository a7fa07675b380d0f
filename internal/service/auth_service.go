package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/token"
)

// Client-visible authentication failures.
const (
	MsgEmailNotFound     = "Email not found"
	MsgIncorrectPassword = "Incorrect password"
	MsgNullRefreshToken  = "Null refresh token"
)

const publishTimeout = 3 * time.Second

// UserStore is the credential store.  GetByEmail returns
// repository.ErrNotFound for unknown addresses and Create returns
// repository.ErrEmailExists on a unique-key violation.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// AuthService implements signup, login, refresh and logout.  It holds no
// per-session state: refresh tokens are valid until they expire and are
// not tracked, so rotation does not revoke the previous token.
type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	issuer   *token.Issuer
	refresh  *token.Verifier
	events   Publisher
	validate *validator.Validate
}

// NewAuthService wires the collaborators.  A nil publisher disables events.
func NewAuthService(users UserStore, hasher PasswordHasher, issuer *token.Issuer, refresh *token.Verifier, events Publisher) *AuthService {
	if events == nil {
		events = NopPublisher{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		issuer:   issuer,
		refresh:  refresh,
		events:   events,
		validate: newValidator(),
	}
}

// Signup validates and stores a new account.  No token is issued.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	in = in.normalize()
	if err := s.validateSignup(ctx, in); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return serverErr("hash password", err)
	}
	id, err := s.users.Create(ctx, model.User{Name: in.Name, Email: in.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// lost the race against a concurrent signup
			return validationErr(MsgEmailInUse)
		}
		return serverErr("create user", err)
	}

	s.publish(ctx, newEvent(queue.EventSignedUp, id, in.Email))
	return nil
}

// Login checks the credentials and issues a new token pair.  Earlier pairs
// for the same user stay valid.
func (s *AuthService) Login(ctx context.Context, email, password string) (token.Pair, error) {
	u, err := s.users.GetByEmail(ctx, repository.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return token.Pair{}, authenticationErr(MsgEmailNotFound)
		}
		return token.Pair{}, serverErr("load user", err)
	}
	password = strings.TrimSpace(password)
	if len(password) > MaxPasswordBytes || !s.hasher.Verify(u.PasswordHash, password) {
		return token.Pair{}, authenticationErr(MsgIncorrectPassword)
	}

	pair, err := s.issuer.Issue(token.Identity{UserID: u.ID, Name: u.Name, Email: u.Email})
	if err != nil {
		return token.Pair{}, serverErr("issue tokens", err)
	}

	s.publish(ctx, newEvent(queue.EventLoggedIn, u.ID, u.Email))
	return pair, nil
}

// Refresh verifies a refresh token and rotates it: the returned pair is
// built from the verified claims without consulting the store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return token.Pair{}, authenticationErr(MsgNullRefreshToken)
	}

	claims, err := s.refresh.Verify(refreshToken)
	if err != nil {
		return token.Pair{}, authorizationErr(err)
	}

	pair, err := s.issuer.Issue(claims.Identity())
	if err != nil {
		return token.Pair{}, serverErr("issue tokens", err)
	}

	s.publish(ctx, newEvent(queue.EventRefreshed, claims.UserID, claims.Email))
	return pair, nil
}

// Logout always succeeds.  The caller clears the cookie; a verifiable
// refresh token only adds a logout event.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	if claims, err := s.refresh.Verify(refreshToken); err == nil {
		s.publish(ctx, newEvent(queue.EventLoggedOut, claims.UserID, claims.Email))
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, ev queue.AuthEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Uint64("user_id", ev.UserID).Msg("publish auth event failed")
	}
}

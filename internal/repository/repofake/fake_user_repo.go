// Package repofake provides an in-memory credential store for tests and
// local runs without MySQL.
package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
)

type UserRepo struct {
	lock   sync.RWMutex
	nextID uint64
	users  map[string]model.User // normalized email -> user

	// Err, when set, is returned by every call.
	Err error
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]model.User)}
}

func (r *UserRepo) Create(_ context.Context, u model.User) (uint64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.Err != nil {
		return 0, r.Err
	}
	email := repository.NormalizeEmail(u.Email)
	if _, ok := r.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	r.nextID++
	u.ID = r.nextID
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	r.users[email] = u
	return u.ID, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.Err != nil {
		return model.User{}, r.Err
	}
	u, ok := r.users[repository.NormalizeEmail(email)]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.Err != nil {
		return false, r.Err
	}
	_, ok := r.users[repository.NormalizeEmail(email)]
	return ok, nil
}

// Len returns the number of stored users.
func (r *UserRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.users)
}

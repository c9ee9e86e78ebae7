package service

import (
	"context"
	"errors"

	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/repository"
	"github.com/inkwellhq/inkwell/internal/security"
)

// ErrNoSession is returned by lookups that require a live session before
// touching the store.
var ErrNoSession = errors.New("no live session")

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Lookup fetches the public projection for a verified session's subject.
// A decoded session whose user row is gone yields ErrUserNotFound, never an
// internal error. Results are memoized per request when a memo is present.
func (s *UserService) Lookup(ctx context.Context, subject uint) (*domain.UserPublicView, error) {
	memo, hasMemo := LookupMemoFromContext(ctx)
	if hasMemo {
		if view, ok := memo.Get(subject); ok {
			return view, nil
		}
	}
	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		return nil, err
	}
	view := user.PublicView()
	if hasMemo {
		memo.Set(subject, view)
	}
	return view, nil
}

// LookupByUsername fails closed: without a live session no query runs.
func (s *UserService) LookupByUsername(ctx context.Context, sess *security.Session, username string) (*domain.UserPublicView, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.PublicView(), nil
}

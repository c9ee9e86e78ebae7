package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/repository"
	"github.com/inkwellhq/inkwell/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

type AuthService struct {
	users repository.UserRepository
	codec *security.TokenCodec
}

func NewAuthService(users repository.UserRepository, codec *security.TokenCodec) *AuthService {
	return &AuthService{users: users, codec: codec}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, security.TokenPair, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" || in.Email == "" || len(in.Password) < 8 {
		return nil, security.TokenPair{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, security.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, security.TokenPair{}, err
	}
	pair, err := s.codec.Issue(user.ID, time.Now())
	if err != nil {
		return nil, security.TokenPair{}, err
	}
	return user, pair, nil
}

// Login verifies the password for an email-or-username identifier. Lookup
// misses and hash mismatches collapse into one error so callers cannot tell
// which applied.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.User, security.TokenPair, error) {
	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, security.TokenPair{}, ErrInvalidCredentials
		}
		return nil, security.TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, security.TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.codec.Issue(user.ID, time.Now())
	if err != nil {
		return nil, security.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh validates a refresh token and mints a replacement pair. The
// subject is re-checked against the user store: a deleted user's token is
// denied even while its signature is still good.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (security.TokenPair, error) {
	sess, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return security.TokenPair{}, security.ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, sess.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return security.TokenPair{}, security.ErrInvalidToken
		}
		return security.TokenPair{}, err
	}
	return s.codec.Issue(user.ID, time.Now())
}

func (s *AuthService) IsUser(ctx context.Context, identifier string) (bool, error) {
	_, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

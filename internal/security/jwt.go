package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every decode failure: malformed value, bad
// signature, wrong token type and expired timestamp. Callers never learn
// which case applied.
var ErrInvalidToken = errors.New("invalid token")

// Session is the identity claim carried inside a signed cookie value. It is
// never persisted server-side.
type Session struct {
	Subject   uint
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is one issuance: an access token and the refresh token minted
// alongside it.
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenCodec struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenCodec(issuer, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		issuer:        issuer,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue mints both tokens of a session against the provided clock. It has no
// side effects; attaching the pair to a response is the caller's job, and
// only on a 200.
func (c *TokenCodec) Issue(subject uint, now time.Time) (TokenPair, error) {
	accessExp := now.Add(c.accessTTL)
	refreshExp := now.Add(c.refreshTTL)

	access, err := c.sign("access", subject, now, accessExp, c.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := c.sign("refresh", subject, now, refreshExp, c.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (c *TokenCodec) DecodeAccess(raw string) (*Session, error) {
	return c.decode(raw, c.accessSecret, "access")
}

func (c *TokenCodec) DecodeRefresh(raw string) (*Session, error) {
	return c.decode(raw, c.refreshSecret, "refresh")
}

func (c *TokenCodec) sign(tokenType string, subject uint, now, expiresAt time.Time, secret []byte) (string, error) {
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatUint(uint64(subject), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *TokenCodec) decode(raw string, secret []byte, tokenType string) (*Session, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	subject, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	s := &Session{Subject: uint(subject)}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

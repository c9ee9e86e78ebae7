package service

import (
	"net/http"

	"github.com/inkwellhq/inkwell/internal/security"
)

// SessionReader recovers a session from an incoming request without any
// network or database access. It only ever consults the access-token
// cookie; the refresh token is none of its business. Reads are idempotent
// and side-effect free, so callers may re-check after a refresh attempt.
type SessionReader struct {
	codec *security.TokenCodec
}

func NewSessionReader(codec *security.TokenCodec) *SessionReader {
	return &SessionReader{codec: codec}
}

// Read returns the session embedded in the access-token cookie, or absent
// on any decode failure. Missing, malformed and expired all look the same.
func (s *SessionReader) Read(r *http.Request) (*security.Session, bool) {
	return s.ReadValue(security.GetCookie(r, security.AccessTokenCookie))
}

// ReadValue decodes a raw access-token value. The guard uses it to observe
// a freshly reissued token without mutating the inbound request.
func (s *SessionReader) ReadValue(raw string) (*security.Session, bool) {
	if raw == "" {
		return nil, false
	}
	sess, err := s.codec.DecodeAccess(raw)
	if err != nil {
		return nil, false
	}
	return sess, true
}

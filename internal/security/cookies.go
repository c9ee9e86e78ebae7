package security

import "net/http"

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	AccessTokenMaxAge  = 3600
	RefreshTokenMaxAge = 604800
)

// CookiePolicy fixes the attributes both session cookies are issued with:
// http-only, same-site=lax, path=/. Secure is on in production only.
type CookiePolicy struct {
	Secure bool
}

func (p CookiePolicy) SetSessionCookies(w http.ResponseWriter, pair TokenPair) {
	http.SetCookie(w, p.sessionCookie(AccessTokenCookie, pair.Access, AccessTokenMaxAge))
	http.SetCookie(w, p.sessionCookie(RefreshTokenCookie, pair.Refresh, RefreshTokenMaxAge))
}

func (p CookiePolicy) ClearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, p.sessionCookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, p.sessionCookie(RefreshTokenCookie, "", -1))
}

func (p CookiePolicy) sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

package smokecheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
)

const timeout = 2 * time.Minute

func run(ctx context.Context, baseURL string) ([]string, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Jar: jar, Timeout: 15 * time.Second}
	var details []string

	resp, err := do(ctx, client, http.MethodGet, baseURL+"/health/live", nil)
	if err != nil {
		return details, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return details, fmt.Errorf("health/live: status %d", resp.StatusCode)
	}
	details = append(details, "health/live: ok")

	suffix := uuid.NewString()[:8]
	register := map[string]string{
		"username": "smoke_" + suffix,
		"email":    "smoke_" + suffix + "@example.com",
		"password": "smokecheck-" + suffix,
		"fullName": "Smoke Check",
	}
	resp, err = do(ctx, client, http.MethodPost, baseURL+"/auth/register", register)
	if err != nil {
		return details, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return details, fmt.Errorf("register: status %d", resp.StatusCode)
	}
	if !hasSessionCookies(resp) {
		return details, fmt.Errorf("register: session cookies not set")
	}
	details = append(details, "register: ok, both cookies set")

	resp, err = do(ctx, client, http.MethodGet, baseURL+"/api/auth/me", nil)
	if err != nil {
		return details, err
	}
	var me struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		FullName string `json:"fullName"`
	}
	if err := decodeBody(resp, &me); err != nil {
		return details, fmt.Errorf("me: %w", err)
	}
	if resp.StatusCode != http.StatusOK || me.Username != register["username"] {
		return details, fmt.Errorf("me: status %d username %q", resp.StatusCode, me.Username)
	}
	details = append(details, fmt.Sprintf("me: ok, user_id=%d", me.ID))

	resp, err = do(ctx, client, http.MethodPost, baseURL+"/auth/refresh", nil)
	if err != nil {
		return details, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return details, fmt.Errorf("refresh: status %d", resp.StatusCode)
	}
	if !hasSessionCookies(resp) {
		return details, fmt.Errorf("refresh: cookies not reissued")
	}
	details = append(details, "refresh: ok, both cookies reissued")

	resp, err = do(ctx, client, http.MethodPost, baseURL+"/auth/logout", nil)
	if err != nil {
		return details, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return details, fmt.Errorf("logout: status %d", resp.StatusCode)
	}
	resp, err = do(ctx, client, http.MethodGet, baseURL+"/api/auth/me", nil)
	if err != nil {
		return details, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		return details, fmt.Errorf("me after logout: status %d, want 401", resp.StatusCode)
	}
	details = append(details, "logout: ok, session gone")

	return details, nil
}

func do(ctx context.Context, client *http.Client, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return client.Do(req)
}

func decodeBody(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(v)
}

func hasSessionCookies(resp *http.Response) bool {
	var access, refresh bool
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "accessToken":
			access = c.Value != ""
		case "refreshToken":
			refresh = c.Value != ""
		}
	}
	return access && refresh
}

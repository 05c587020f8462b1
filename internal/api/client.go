// Package api wraps the remote session endpoints consumed by the
// session-lifecycle manager.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fga-eps-mds/capju-session-go/internal/models"
)

// SessionStatus mirrors the /sessionStatus response body.
type SessionStatus struct {
	Active  bool   `json:"active"`
	Message string `json:"message,omitempty"`
}

// TokenSource supplies the current session token for the Authorization
// header; return an empty string when no session exists.
type TokenSource func(ctx context.Context) string

// Client talks to the session endpoints of the user service.
type Client struct {
	http    *http.Client
	baseURL string
	token   TokenSource
}

// NewClient creates a session API client. tokenSource may be nil for
// unauthenticated use (login only).
func NewClient(baseURL string, timeout time.Duration, tokenSource TokenSource) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   tokenSource,
	}
}

// SignIn authenticates and returns the signed session token.
func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (string, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", responseError(resp)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return out.Token, nil
}

// SignOut ends the current session, tagging it with the initiator.
func (c *Client) SignOut(ctx context.Context, initiator string) error {
	return c.post(ctx, "/logout/"+url.PathEscape(initiator))
}

// SignOutExpiredSession ends the current session because its token is about
// to expire.
func (c *Client) SignOutExpiredSession(ctx context.Context) error {
	return c.post(ctx, "/logoutExpiredSession")
}

// CheckSessionStatus asks the server whether the session is still active.
func (c *Client) CheckSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/sessionStatus/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}
	var st SessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// LogoutAsAdmin force-ends another user's session.
func (c *Client) LogoutAsAdmin(ctx context.Context, sessionID string) error {
	req, err := c.newRequest(ctx, http.MethodPatch, "/logoutAsAdmin/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != nil {
		if tok := c.token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// responseError surfaces the server-provided message when one exists.
func responseError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &payload); err == nil {
		if payload.Error != "" {
			return fmt.Errorf("%s", payload.Error)
		}
		if payload.Message != "" {
			return fmt.Errorf("%s", payload.Message)
		}
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

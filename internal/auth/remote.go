package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

// RemoteProvider talks to a hosted auth service with a GoTrue-style API.
type RemoteProvider struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	logger     internal.Logger
}

func NewRemoteProvider(baseURL, apiKey string, logger internal.Logger) *RemoteProvider {
	return &RemoteProvider{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int         `json:"expires_in"`
	User        *remoteUser `json:"user"`
	// signup with email confirmation enabled returns the bare user
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (p *RemoteProvider) SignUp(ctx context.Context, email, password string) (*internal.Session, error) {
	return p.credentials(ctx, "/signup", email, password, "sign up failed")
}

func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*internal.Session, error) {
	return p.credentials(ctx, "/token?grant_type=password", email, password, "sign in failed")
}

func (p *RemoteProvider) SignOut(ctx context.Context, token string) error {
	resp, err := p.do(ctx, http.MethodPost, "/logout", token, nil)
	if err != nil {
		return internal.NewAuthError("sign out failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized {
		return p.failure(resp, "sign out failed")
	}
	return nil
}

func (p *RemoteProvider) Validate(ctx context.Context, token string) (*internal.Session, error) {
	resp, err := p.do(ctx, http.MethodGet, "/user", token, nil)
	if err != nil {
		return nil, internal.NewAuthError("session check failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		p.logger.Warnf("auth service rejected token: %d", resp.StatusCode)
		return nil, ErrInvalidToken
	}
	var u remoteUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil || u.ID == "" {
		p.logger.Errorf("failed to decode auth user: %v", err)
		return nil, ErrInvalidToken
	}
	return &internal.Session{UserID: u.ID, Email: u.Email, AccessToken: token}, nil
}

func (p *RemoteProvider) credentials(ctx context.Context, path, email, password, failMsg string) (*internal.Session, error) {
	body, err := json.Marshal(map[string]string{"email": strings.TrimSpace(email), "password": password})
	if err != nil {
		return nil, internal.NewAuthError(failMsg, err)
	}
	resp, err := p.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, internal.NewAuthError(failMsg, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, p.failure(resp, failMsg)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		p.logger.Errorf("failed to decode auth response: %v", err)
		return nil, internal.NewAuthError(failMsg, err)
	}
	u := tr.User
	if u == nil {
		u = &remoteUser{ID: tr.ID, Email: tr.Email}
	}
	if u.ID == "" {
		return nil, internal.NewAuthError(failMsg, fmt.Errorf("auth response without user"))
	}
	sess := &internal.Session{UserID: u.ID, Email: u.Email, AccessToken: tr.AccessToken}
	if tr.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return sess, nil
}

func (p *RemoteProvider) do(ctx context.Context, method, path, token string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		p.logger.Errorf("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("apikey", p.APIKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		p.logger.Errorf("failed to call auth service: %v", err)
		return nil, err
	}
	return resp, nil
}

func (p *RemoteProvider) failure(resp *http.Response, fallback string) error {
	var e errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	msg := e.text()
	if msg == "" {
		msg = fallback
	}
	p.logger.Warnf("auth service returned %d: %s", resp.StatusCode, msg)
	return internal.NewAuthError(msg, fmt.Errorf("auth service status %d", resp.StatusCode))
}

// Package gotrue is an HTTP client for a hosted GoTrue (Supabase Auth) service.
package gotrue

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

	"github.com/hongminglow/afriglobal-be/internal/identity"
)

// Ensure Client satisfies the identity.Provider interface at compile time.
var _ identity.Provider = (*Client)(nil)

// Client talks to the GoTrue REST API under <baseURL>/auth/v1.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// NewClient creates a client for the project at baseURL authenticated with the anon key.
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey: anonKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// apiError is the union of the error payloads GoTrue returns.
type apiError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return "unknown error"
}

// userOrSession decodes a signup response, which is a bare user when email
// confirmation is required and a session otherwise.
type userOrSession struct {
	identity.User
	AccessToken string         `json:"access_token"`
	Session     *identity.User `json:"user"`
}

// SignUp registers a new account. Confirmation mail links back to params.EmailRedirectTo.
func (c *Client) SignUp(ctx context.Context, params identity.SignUpParams) (*identity.User, error) {
	body := map[string]any{
		"email":    params.Email,
		"password": params.Password,
	}
	if len(params.Data) > 0 {
		body["data"] = params.Data
	}
	query := url.Values{}
	if params.EmailRedirectTo != "" {
		query.Set("redirect_to", params.EmailRedirectTo)
	}

	var out userOrSession
	if err := c.do(ctx, http.MethodPost, "/signup", query, "", body, &out); err != nil {
		return nil, err
	}
	if out.Session != nil && out.Session.ID != "" {
		return out.Session, nil
	}
	if out.User.ID == "" {
		return nil, nil
	}
	user := out.User
	return &user, nil
}

// SignInWithPassword exchanges an email/password pair for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	var session identity.Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token", query, "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, accessToken, nil, nil)
}

// GetUser resolves an access token to its user.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*identity.User, error) {
	if accessToken == "" {
		return nil, identity.ErrUnauthorized
	}
	var user identity.User
	if err := c.do(ctx, http.MethodGet, "/user", nil, accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPasswordForEmail sends a recovery mail linking to redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	query := url.Values{}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return c.do(ctx, http.MethodPost, "/recover", query, "", map[string]string{"email": email}, nil)
}

// UpdateUser changes attributes of the user behind accessToken.
func (c *Client) UpdateUser(ctx context.Context, accessToken string, params identity.UpdateUserParams) (*identity.User, error) {
	body := map[string]any{}
	if params.Email != "" {
		body["email"] = params.Email
	}
	if params.Password != "" {
		body["password"] = params.Password
	}
	if len(params.Data) > 0 {
		body["data"] = params.Data
	}
	var user identity.User
	if err := c.do(ctx, http.MethodPut, "/user", nil, accessToken, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// OAuthURL returns the authorize URL that starts an OAuth sign-in with provider.
func (c *Client) OAuthURL(provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", fmt.Errorf("%w: provider is required", identity.ErrUpstream)
	}
	query := url.Values{"provider": {provider}}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/authorize?" + query.Encode(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, accessToken string, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gotrue: encode %s request: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("gotrue: build %s request: %w", path, err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := accessToken
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", identity.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp, path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%w: decode %s response: %v", identity.ErrUpstream, path, err)
	}
	return nil
}

func decodeError(resp *http.Response, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)
	msg := apiErr.text()

	switch {
	case apiErr.ErrorCode == "user_already_exists" || apiErr.ErrorCode == "email_exists":
		return fmt.Errorf("%w: %s", identity.ErrUserExists, msg)
	case apiErr.Error == "invalid_grant" || apiErr.ErrorCode == "invalid_credentials":
		return fmt.Errorf("%w: %s", identity.ErrInvalidCredentials, msg)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", identity.ErrUnauthorized, msg)
	default:
		return fmt.Errorf("%w: %s returned %d: %s", identity.ErrUpstream, path, resp.StatusCode, msg)
	}
}

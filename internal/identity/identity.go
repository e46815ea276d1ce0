// Package identity describes the hosted identity service that owns credentials
// and sessions. Local profiles are keyed by User.ID.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnauthorized indicates a missing, expired or rejected access token.
	ErrUnauthorized = errors.New("identity: unauthorized")
	// ErrInvalidCredentials indicates a rejected email/password pair.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	// ErrUserExists indicates the email is already registered with the provider.
	ErrUserExists = errors.New("identity: user already registered")
	// ErrUpstream wraps any other failure reported by the provider.
	ErrUpstream = errors.New("identity: upstream error")
)

// User is the identity provider's view of an account.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	ConfirmedAt  *time.Time     `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// FullName returns the full_name metadata entry, or "" when absent.
func (u *User) FullName() string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	name, _ := u.UserMetadata["full_name"].(string)
	return name
}

// Session is an authenticated session issued by the provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// SignUpParams are the inputs of a signup call.
type SignUpParams struct {
	Email           string
	Password        string
	EmailRedirectTo string
	Data            map[string]any
}

// UpdateUserParams holds the mutable account attributes. Empty fields are left unchanged.
type UpdateUserParams struct {
	Email    string
	Password string
	Data     map[string]any
}

// Provider is the set of identity operations the application consumes.
type Provider interface {
	SignUp(ctx context.Context, params SignUpParams) (*User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUser(ctx context.Context, accessToken string, params UpdateUserParams) (*User, error)
	OAuthURL(provider, redirectTo string) (string, error)
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/afriglobal-be/internal/auth"
	"github.com/hongminglow/afriglobal-be/internal/http/respond"
	"github.com/hongminglow/afriglobal-be/internal/identity"
)

const (
	userKey  contextKey = "identityUser"
	tokenKey contextKey = "accessToken"
)

// Authenticator resolves the caller's access token to an identity user.
// With a verifier, tokens are checked locally; otherwise the provider is asked.
type Authenticator struct {
	provider   identity.Provider
	verifier   *auth.TokenManager
	cookieName string
}

// NewAuthenticator creates an Authenticator. verifier may be nil.
func NewAuthenticator(provider identity.Provider, verifier *auth.TokenManager, cookieName string) *Authenticator {
	return &Authenticator{provider: provider, verifier: verifier, cookieName: cookieName}
}

// CookieName is the cookie that carries the access token.
func (a *Authenticator) CookieName() string {
	return a.cookieName
}

// Token extracts the access token from the Authorization header or session cookie.
func (a *Authenticator) Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(a.cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Resolve returns the user behind token.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*identity.User, error) {
	if token == "" {
		return nil, identity.ErrUnauthorized
	}
	if a.verifier != nil {
		return a.verifier.Parse(token)
	}
	return a.provider.GetUser(ctx, token)
}

// Session attaches the caller's identity to the context when a valid token is
// present. It never rejects a request.
func (a *Authenticator) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.Token(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, identity.ErrUnauthorized) {
				slog.Warn("session lookup failed", "error", err, "request_id", GetRequestID(r.Context()))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
	})
}

// RequireUser rejects requests without an authenticated identity with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying user and token.
func WithUser(ctx context.Context, user *identity.User, token string) context.Context {
	if user != nil {
		setAccessLogUser(ctx, user.ID)
	}
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}

// UserFromContext returns the authenticated identity, or nil.
func UserFromContext(ctx context.Context) *identity.User {
	if u, ok := ctx.Value(userKey).(*identity.User); ok {
		return u
	}
	return nil
}

// TokenFromContext returns the access token of the authenticated caller.
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}

// Package local is an in-process identity provider for development and tests.
// Accounts live in memory; access tokens use the hosted provider's claim shape
// so the rest of the application cannot tell the two apart.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/afriglobal-be/internal/auth"
	"github.com/hongminglow/afriglobal-be/internal/identity"
)

var _ identity.Provider = (*Provider)(nil)

type account struct {
	user         identity.User
	passwordHash []byte
}

// Provider keeps accounts keyed by normalized email.
type Provider struct {
	tokens     *auth.TokenManager
	bcryptCost int

	mu       sync.RWMutex
	accounts map[string]*account
	byID     map[string]string
	revoked  map[string]time.Time
}

// NewProvider creates an empty provider signing tokens with tokens.
func NewProvider(tokens *auth.TokenManager, bcryptCost int) *Provider {
	return &Provider{
		tokens:     tokens,
		bcryptCost: bcryptCost,
		accounts:   make(map[string]*account),
		byID:       make(map[string]string),
		revoked:    make(map[string]time.Time),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account. Accounts are confirmed immediately.
func (p *Provider) SignUp(_ context.Context, params identity.SignUpParams) (*identity.User, error) {
	email := normalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", identity.ErrUpstream)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", identity.ErrUpstream, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[email]; exists {
		return nil, identity.ErrUserExists
	}

	now := time.Now().UTC()
	user := identity.User{
		ID:           uuid.NewString(),
		Email:        email,
		UserMetadata: copyData(params.Data),
		ConfirmedAt:  &now,
		CreatedAt:    now,
	}
	p.accounts[email] = &account{user: user, passwordHash: hash}
	p.byID[user.ID] = email

	slog.Debug("local identity created", "user_id", user.ID, "redirect_to", params.EmailRedirectTo)
	user.UserMetadata = copyData(user.UserMetadata)
	return &user, nil
}

// SignInWithPassword checks the credentials and issues an access token.
func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (*identity.Session, error) {
	p.mu.RLock()
	acc, ok := p.accounts[normalizeEmail(email)]
	var user identity.User
	var hash []byte
	if ok {
		user = acc.user
		user.UserMetadata = copyData(acc.user.UserMetadata)
		hash = acc.passwordHash
	}
	p.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, identity.ErrInvalidCredentials
	}

	token, err := p.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", identity.ErrUpstream, err)
	}
	return &identity.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(p.tokens.TTL().Seconds()),
		User:        &user,
	}, nil
}

// SignOut revokes accessToken until it would have expired anyway.
func (p *Provider) SignOut(_ context.Context, accessToken string) error {
	if _, err := p.tokens.Parse(accessToken); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	for tok, until := range p.revoked {
		if now.After(until) {
			delete(p.revoked, tok)
		}
	}
	p.revoked[accessToken] = now.Add(p.tokens.TTL())
	return nil
}

// GetUser resolves a live access token to the current account state.
func (p *Provider) GetUser(_ context.Context, accessToken string) (*identity.User, error) {
	claimed, err := p.tokens.Parse(accessToken)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, revoked := p.revoked[accessToken]; revoked {
		return nil, fmt.Errorf("%w: session signed out", identity.ErrUnauthorized)
	}
	email, ok := p.byID[claimed.ID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown user", identity.ErrUnauthorized)
	}
	user := p.accounts[email].user
	user.UserMetadata = copyData(user.UserMetadata)
	return &user, nil
}

// ResetPasswordForEmail only logs; the local provider does not send mail.
func (p *Provider) ResetPasswordForEmail(_ context.Context, email, redirectTo string) error {
	slog.Info("local identity password recovery requested", "email", normalizeEmail(email), "redirect_to", redirectTo)
	return nil
}

// UpdateUser changes the password, email or metadata of the token's user.
func (p *Provider) UpdateUser(ctx context.Context, accessToken string, params identity.UpdateUserParams) (*identity.User, error) {
	current, err := p.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var hash []byte
	if params.Password != "" {
		hash, err = bcrypt.GenerateFromPassword([]byte(params.Password), p.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("%w: hash password: %v", identity.ErrUpstream, err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	oldEmail := p.byID[current.ID]
	acc, ok := p.accounts[oldEmail]
	if !ok {
		return nil, fmt.Errorf("%w: unknown user", identity.ErrUnauthorized)
	}
	newEmail := normalizeEmail(params.Email)
	changeEmail := newEmail != "" && newEmail != oldEmail
	if _, taken := p.accounts[newEmail]; changeEmail && taken {
		return nil, identity.ErrUserExists
	}

	if hash != nil {
		acc.passwordHash = hash
	}
	if changeEmail {
		delete(p.accounts, oldEmail)
		acc.user.Email = newEmail
		p.accounts[newEmail] = acc
		p.byID[acc.user.ID] = newEmail
	}
	if len(params.Data) > 0 {
		if acc.user.UserMetadata == nil {
			acc.user.UserMetadata = make(map[string]any, len(params.Data))
		}
		for k, v := range params.Data {
			acc.user.UserMetadata[k] = v
		}
	}

	user := acc.user
	user.UserMetadata = copyData(acc.user.UserMetadata)
	return &user, nil
}

// OAuthURL is not supported without a hosted provider.
func (p *Provider) OAuthURL(provider, _ string) (string, error) {
	return "", fmt.Errorf("%w: oauth provider %q is not available in local mode", identity.ErrUpstream, provider)
}

func copyData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

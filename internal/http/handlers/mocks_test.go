package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hongminglow/afriglobal-be/internal/identity"
	"github.com/hongminglow/afriglobal-be/internal/models"
	"github.com/hongminglow/afriglobal-be/internal/storage"
)

// --- Mock identity provider ---

type mockProvider struct {
	signUpFn      func(ctx context.Context, params identity.SignUpParams) (*identity.User, error)
	signInFn      func(ctx context.Context, email, password string) (*identity.Session, error)
	signOutFn     func(ctx context.Context, token string) error
	getUserFn     func(ctx context.Context, token string) (*identity.User, error)
	resetFn       func(ctx context.Context, email, redirectTo string) error
	updateUserFn  func(ctx context.Context, token string, params identity.UpdateUserParams) (*identity.User, error)
	oauthURLFn    func(provider, redirectTo string) (string, error)
	signUpCalls   int
	lastResetLink string
}

func (m *mockProvider) SignUp(ctx context.Context, params identity.SignUpParams) (*identity.User, error) {
	m.signUpCalls++
	if m.signUpFn != nil {
		return m.signUpFn(ctx, params)
	}
	return &identity.User{
		ID:           "id-" + params.Email,
		Email:        params.Email,
		UserMetadata: params.Data,
	}, nil
}

func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return &identity.Session{
		AccessToken: "tok-" + email,
		TokenType:   "bearer",
		ExpiresIn:   3600,
		User:        &identity.User{ID: "id-" + email, Email: email},
	}, nil
}

func (m *mockProvider) SignOut(ctx context.Context, token string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, token)
	}
	return nil
}

func (m *mockProvider) GetUser(ctx context.Context, token string) (*identity.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, token)
	}
	return nil, identity.ErrUnauthorized
}

func (m *mockProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	m.lastResetLink = redirectTo
	if m.resetFn != nil {
		return m.resetFn(ctx, email, redirectTo)
	}
	return nil
}

func (m *mockProvider) UpdateUser(ctx context.Context, token string, params identity.UpdateUserParams) (*identity.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, token, params)
	}
	return &identity.User{ID: "u-1"}, nil
}

func (m *mockProvider) OAuthURL(provider, redirectTo string) (string, error) {
	if m.oauthURLFn != nil {
		return m.oauthURLFn(provider, redirectTo)
	}
	return fmt.Sprintf("https://id.example.com/authorize?provider=%s&redirect_to=%s", provider, redirectTo), nil
}

// --- Mock user store ---

type mockStore struct {
	mu          sync.Mutex
	users       map[string]models.User
	createErr   error
	findErr     error
	pingErr     error
	createCalls int
	updateCalls int
}

func newMockStore(users ...models.User) *mockStore {
	s := &mockStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (m *mockStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return models.User{}, m.createErr
	}
	for _, existing := range m.users {
		if existing.ID == u.ID || existing.Email == u.Email {
			return models.User{}, fmt.Errorf("%w: users_email_unique_idx", storage.ErrAlreadyExists)
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = u
	return u, nil
}

func (m *mockStore) FindByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return models.User{}, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *mockStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return models.User{}, m.findErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (m *mockStore) UpdateRole(_ context.Context, id, role string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	u, ok := m.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return u, nil
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/afriglobal-be/internal/account"
	"github.com/hongminglow/afriglobal-be/internal/identity"
	"github.com/hongminglow/afriglobal-be/internal/middleware"
	"github.com/hongminglow/afriglobal-be/internal/models"
)

func newPageHandler(provider *mockProvider, store *mockStore) *PageHandler {
	accounts := account.NewService(provider, store, nil, "https://app.example.com/auth/callback")
	authn := middleware.NewAuthenticator(provider, nil, cookieName)
	return NewPageHandler(accounts, provider, authn, false)
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func signupValues() url.Values {
	return url.Values{
		"fullName":        {"Ada Obi"},
		"email":           {"ada@example.com"},
		"password":        {"pa55word!"},
		"confirmPassword": {"pa55word!"},
		"terms":           {"on"},
	}
}

func TestSignUpPage_RendersForm(t *testing.T) {
	h := newPageHandler(&mockProvider{}, newMockStore())

	rec := httptest.NewRecorder()
	h.SignUpPage(rec, httptest.NewRequest(http.MethodGet, "/sign-up", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="confirmPassword"`)
	assert.Contains(t, rec.Body.String(), `name="terms"`)
}

func TestSignUpSubmit_ClientChecksBlockSubmission(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(url.Values)
		want   string
	}{
		{"password mismatch", func(v url.Values) { v.Set("confirmPassword", "other") }, "Passwords do not match"},
		{"terms not accepted", func(v url.Values) { v.Del("terms") }, "Please accept the terms and conditions"},
		{"mismatch reported before terms", func(v url.Values) {
			v.Set("confirmPassword", "other")
			v.Del("terms")
		}, "Passwords do not match"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := &mockProvider{}
			store := newMockStore()
			h := newPageHandler(provider, store)
			values := signupValues()
			tc.mutate(values)

			rec := httptest.NewRecorder()
			h.SignUpSubmit(rec, formRequest("/sign-up", values))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.Zero(t, provider.signUpCalls)
			assert.Zero(t, store.createCalls)
		})
	}
}

func TestSignUpSubmit_Success(t *testing.T) {
	provider := &mockProvider{}
	store := newMockStore()
	h := newPageHandler(provider, store)

	rec := httptest.NewRecorder()
	h.SignUpSubmit(rec, formRequest("/sign-up", signupValues()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please check your email at ada@example.com to confirm your registration.")
	assert.Equal(t, 1, provider.signUpCalls)
	assert.Contains(t, store.users, "id-ada@example.com")
}

func TestLoginSubmit_RedirectsToRolePicker(t *testing.T) {
	h := newPageHandler(&mockProvider{}, newMockStore())

	rec := httptest.NewRecorder()
	h.LoginSubmit(rec, formRequest("/login", url.Values{"email": {"ada@example.com"}, "password": {"pw"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/choose-role", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tok-ada@example.com", cookies[0].Value)
}

func TestLoginSubmit_InvalidCredentials(t *testing.T) {
	provider := &mockProvider{
		signInFn: func(context.Context, string, string) (*identity.Session, error) {
			return nil, identity.ErrInvalidCredentials
		},
	}
	h := newPageHandler(provider, newMockStore())

	rec := httptest.NewRecorder()
	h.LoginSubmit(rec, formRequest("/login", url.Values{"email": {"ada@example.com"}, "password": {"bad"}}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestRolePage_RedirectsWhenSignedOut(t *testing.T) {
	h := newPageHandler(&mockProvider{}, newMockStore())

	rec := httptest.NewRecorder()
	h.RolePage(rec, httptest.NewRequest(http.MethodGet, "/choose-role", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRolePage_PreselectsInvestor(t *testing.T) {
	h := newPageHandler(&mockProvider{}, newMockStore())
	req := httptest.NewRequest(http.MethodGet, "/choose-role", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), kofi(), "tok"))

	rec := httptest.NewRecorder()
	h.RolePage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="investor" checked`)
	assert.NotContains(t, body, `value="exporter" checked`)
	assert.Contains(t, body, "Exporter")
}

func TestRoleSubmit_ConfirmsSelection(t *testing.T) {
	store := newMockStore()
	h := newPageHandler(&mockProvider{}, store)
	req := formRequest("/choose-role", url.Values{"role": {models.Exporter}})
	req = req.WithContext(middleware.WithUser(req.Context(), kofi(), "tok"))

	rec := httptest.NewRecorder()
	h.RoleSubmit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Selected role: Exporter")
	assert.Equal(t, models.Exporter, store.users["u-1"].Role)
}

func TestRoleSubmit_InvalidRole(t *testing.T) {
	store := newMockStore()
	h := newPageHandler(&mockProvider{}, store)
	req := formRequest("/choose-role", url.Values{"role": {"admin"}})
	req = req.WithContext(middleware.WithUser(req.Context(), kofi(), "tok"))

	rec := httptest.NewRecorder()
	h.RoleSubmit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid role")
	assert.Zero(t, store.createCalls)
}

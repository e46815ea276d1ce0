package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/afriglobal-be/internal/account"
	"github.com/hongminglow/afriglobal-be/internal/config"
	"github.com/hongminglow/afriglobal-be/internal/http/respond"
	"github.com/hongminglow/afriglobal-be/internal/identity"
	"github.com/hongminglow/afriglobal-be/internal/middleware"
	"github.com/hongminglow/afriglobal-be/internal/models/dto"
)

const (
	msgCheckEmail      = "Check your email to confirm your registration"
	msgProfileDeferred = "Registration successful. Profile will be completed later."
	msgInvalidJSON     = "Invalid JSON payload"
	msgMissingFields   = "Missing required fields"
	msgAuthFailed      = "Authentication failed"
	msgInternal        = "Internal server error"
)

// oauthProviders are the providers offered for social sign-in.
var oauthProviders = map[string]bool{"google": true}

// AuthHandler owns the signup and session endpoints backed by the identity provider.
type AuthHandler struct {
	accounts *account.Service
	provider identity.Provider
	authn    *middleware.Authenticator
	cfg      *config.Config
	validate *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *account.Service, provider identity.Provider, authn *middleware.Authenticator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		provider: provider,
		authn:    authn,
		cfg:      cfg,
		validate: newValidator(),
	}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.accounts.SignUp(r.Context(), account.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		status, message := signupError(err)
		if status >= http.StatusInternalServerError {
			slog.Error("signup failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		} else {
			slog.Warn("signup rejected by identity provider", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		}
		respond.Error(w, status, message)
		return
	}

	switch result.Outcome {
	case account.OutcomeDeferred:
		respond.JSON(w, http.StatusOK, dto.SignupResponse{
			Message: msgProfileDeferred,
			User:    dto.PendingProfile{Email: result.Identity.Email, ID: result.Identity.ID},
		})
	default:
		respond.JSON(w, http.StatusOK, dto.SignupResponse{User: result.Profile, Message: msgCheckEmail})
	}
}

// signupError maps a SignUp failure to a status and a client-safe message.
func signupError(err error) (int, string) {
	switch {
	case errors.Is(err, account.ErrIdentity):
		return http.StatusBadRequest, msgAuthFailed
	case errors.Is(err, account.ErrNoIdentityUser):
		return http.StatusInternalServerError, "Failed to create user"
	case errors.Is(err, account.ErrProfile):
		return http.StatusInternalServerError, "Failed to create user profile"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// Login handles POST /api/auth/login and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	session, err := h.provider.SignInWithPassword(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("login failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		respond.Error(w, http.StatusBadRequest, msgAuthFailed)
		return
	}

	h.setSessionCookie(w, session)
	respond.JSON(w, http.StatusOK, dto.LoginResponse{User: session.User, Session: session})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if err := h.provider.SignOut(r.Context(), token); err != nil && !errors.Is(err, identity.ErrUnauthorized) {
		slog.Error("logout failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		respond.Error(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{"user": middleware.UserFromContext(r.Context())})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if err := h.provider.ResetPasswordForEmail(r.Context(), strings.TrimSpace(req.Email), h.cfg.PasswordResetURL()); err != nil {
		slog.Error("password reset failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		respond.Error(w, http.StatusBadRequest, "Password reset failed")
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "If an account exists for this email, a reset link has been sent"})
}

// UpdatePassword handles PUT /api/auth/password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	token := middleware.TokenFromContext(r.Context())
	if _, err := h.provider.UpdateUser(r.Context(), token, identity.UpdateUserParams{Password: req.Password}); err != nil {
		if errors.Is(err, identity.ErrUnauthorized) {
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		slog.Error("password update failed", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		respond.Error(w, http.StatusBadRequest, "Password update failed")
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

// OAuth handles GET /api/auth/oauth/{provider} by redirecting to the provider.
func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "provider"))
	if !oauthProviders[name] {
		respond.Error(w, http.StatusBadRequest, "Unsupported OAuth provider")
		return
	}

	target, err := h.provider.OAuthURL(name, h.cfg.EmailRedirectURL())
	if err != nil {
		slog.Error("oauth url failed", "provider", name, "error", err)
		respond.Error(w, http.StatusBadRequest, msgAuthFailed)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *identity.Session) {
	setSessionCookie(w, h.authn.CookieName(), session, h.cfg.SecureCookies())
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.authn.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func setSessionCookie(w http.ResponseWriter, name string, session *identity.Session, secure bool) {
	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, msgInvalidJSON)
		return false
	}
	return true
}

package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/afriglobal-be/internal/account"
	"github.com/hongminglow/afriglobal-be/internal/forms"
	"github.com/hongminglow/afriglobal-be/internal/identity"
	"github.com/hongminglow/afriglobal-be/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandler serves the server-rendered signup, login and role pages.
type PageHandler struct {
	accounts  *account.Service
	provider  identity.Provider
	authn     *middleware.Authenticator
	secure    bool
	templates *template.Template
}

type pageData struct {
	Title  string
	Error  string
	Notice string
	Email  string
	Form   any
}

// NewPageHandler parses the embedded templates.
func NewPageHandler(accounts *account.Service, provider identity.Provider, authn *middleware.Authenticator, secureCookies bool) *PageHandler {
	return &PageHandler{
		accounts:  accounts,
		provider:  provider,
		authn:     authn,
		secure:    secureCookies,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// SignUpPage handles GET /sign-up.
func (h *PageHandler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "signup.html", pageData{Title: "Create your account", Form: forms.SignupForm{}})
}

// SignUpSubmit handles POST /sign-up.
func (h *PageHandler) SignUpSubmit(w http.ResponseWriter, r *http.Request) {
	form, err := forms.ParseSignupForm(r)
	if err != nil {
		h.render(w, http.StatusBadRequest, "signup.html", pageData{Title: "Create your account", Error: "Invalid form submission", Form: form})
		return
	}

	data := pageData{Title: "Create your account", Form: forms.SignupForm{FullName: form.FullName, Email: form.Email, Terms: form.Terms}}
	if err := form.Validate(); err != nil {
		data.Error = err.Error()
		h.render(w, http.StatusBadRequest, "signup.html", data)
		return
	}
	if form.Email == "" || form.Password == "" || form.FullName == "" {
		data.Error = msgMissingFields
		h.render(w, http.StatusBadRequest, "signup.html", data)
		return
	}

	result, err := h.accounts.SignUp(r.Context(), account.SignUpInput{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
	})
	if err != nil {
		status, message := signupError(err)
		slog.Warn("signup form rejected", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		data.Error = message
		h.render(w, status, "signup.html", data)
		return
	}

	data.Form = forms.SignupForm{}
	data.Notice = fmt.Sprintf("Please check your email at %s to confirm your registration.", result.Identity.Email)
	h.render(w, http.StatusOK, "signup.html", data)
}

// LoginPage handles GET /login.
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", pageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login and redirects to the role picker.
func (h *PageHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", pageData{Title: "Sign in", Error: "Invalid form submission"})
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.render(w, http.StatusBadRequest, "login.html", pageData{Title: "Sign in", Error: msgMissingFields, Email: email})
		return
	}

	session, err := h.provider.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		status, message := http.StatusBadRequest, msgAuthFailed
		if errors.Is(err, identity.ErrInvalidCredentials) {
			status, message = http.StatusUnauthorized, "Invalid credentials"
		}
		h.render(w, status, "login.html", pageData{Title: "Sign in", Error: message, Email: email})
		return
	}

	setSessionCookie(w, h.authn.CookieName(), session, h.secure)
	http.Redirect(w, r, "/choose-role", http.StatusSeeOther)
}

// RolePage handles GET /choose-role.
func (h *PageHandler) RolePage(w http.ResponseWriter, r *http.Request) {
	if middleware.UserFromContext(r.Context()) == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "role.html", pageData{Title: "Choose your role", Form: forms.NewRoleForm(r.URL.Query().Get("role"))})
}

// RoleSubmit handles POST /choose-role.
func (h *PageHandler) RoleSubmit(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())
	if caller == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "role.html", pageData{Title: "Choose your role", Error: "Invalid form submission", Form: forms.NewRoleForm("")})
		return
	}

	selected := r.PostFormValue("role")
	form := forms.NewRoleForm(selected)
	user, err := h.accounts.UpdateRole(r.Context(), *caller, selected)
	if err != nil {
		status, message := http.StatusInternalServerError, "Internal Error"
		if errors.Is(err, account.ErrInvalidRole) {
			status, message = http.StatusBadRequest, "Invalid role"
		} else {
			slog.Error("role form update failed", "error", err, "user_id", caller.ID)
		}
		h.render(w, status, "role.html", pageData{Title: "Choose your role", Error: message, Form: form})
		return
	}

	form = forms.NewRoleForm(user.Role)
	h.render(w, http.StatusOK, "role.html", pageData{
		Title:  "Choose your role",
		Notice: "Selected role: " + form.SelectedTitle(),
		Form:   form,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render page", "template", name, "error", err)
	}
}

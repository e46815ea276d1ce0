package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hongminglow/afriglobal-be/internal/account"
	"github.com/hongminglow/afriglobal-be/internal/auth"
	"github.com/hongminglow/afriglobal-be/internal/config"
	"github.com/hongminglow/afriglobal-be/internal/http/handlers"
	"github.com/hongminglow/afriglobal-be/internal/identity"
	"github.com/hongminglow/afriglobal-be/internal/metrics"
	"github.com/hongminglow/afriglobal-be/internal/middleware"
	"github.com/hongminglow/afriglobal-be/internal/storage"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Provider identity.Provider
	Store    storage.UserStore
	// Verifier checks access tokens locally. Nil means every token is sent
	// to the provider.
	Verifier *auth.TokenManager
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	limiter *middleware.RateLimiter
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	var limiter *middleware.RateLimiter
	if cfg.SignupRatePerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.SignupRatePerMinute, 5*time.Minute)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, deps, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, limiter: limiter}
}

// NewRouter builds the HTTP handler tree. limiter may be nil to disable signup
// rate limiting.
func NewRouter(cfg *config.Config, deps Deps, limiter *middleware.RateLimiter) http.Handler {
	recorder := metrics.NewCollector(deps.Registry)
	accounts := account.NewService(deps.Provider, deps.Store, recorder, cfg.EmailRedirectURL())
	authn := middleware.NewAuthenticator(deps.Provider, deps.Verifier, cfg.SessionCookie)

	authHandler := handlers.NewAuthHandler(accounts, deps.Provider, authn, cfg)
	roleHandler := handlers.NewRoleHandler(accounts)
	pageHandler := handlers.NewPageHandler(accounts, deps.Provider, authn, cfg.SecureCookies())
	health := handlers.NewHealthHandler(time.Now(), deps.Store, cfg.Version)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logging(deps.Logger, recorder))
	r.Use(middleware.Recovery)
	r.Use(authn.Session)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Method(http.MethodGet, "/health", health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))

	r.Route("/api/auth", func(r chi.Router) {
		signup := http.Handler(http.HandlerFunc(authHandler.SignUp))
		if limiter != nil {
			signup = limiter.Middleware(signup)
		}
		r.Method(http.MethodPost, "/signup", signup)
		r.Post("/login", authHandler.Login)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Get("/oauth/{provider}", authHandler.OAuth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/logout", authHandler.Logout)
			r.Get("/session", authHandler.Session)
			r.Put("/password", authHandler.UpdatePassword)
		})
	})

	r.With(middleware.RequireUser).Put("/api/user/role", roleHandler.Update)

	r.Get("/sign-up", pageHandler.SignUpPage)
	if limiter != nil {
		r.With(limiter.Middleware).Post("/sign-up", pageHandler.SignUpSubmit)
	} else {
		r.Post("/sign-up", pageHandler.SignUpSubmit)
	}
	r.Get("/login", pageHandler.LoginPage)
	r.Post("/login", pageHandler.LoginSubmit)
	r.Get("/choose-role", pageHandler.RolePage)
	r.Post("/choose-role", pageHandler.RoleSubmit)

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.inner.Shutdown(ctx)
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	IdentityModeGoTrue = "gotrue"
	IdentityModeLocal  = "local"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	Version        string `envconfig:"VERSION" default:"dev"`
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"true"`
	SiteURL        string `envconfig:"SITE_URL" default:"http://localhost:3000"`

	IdentityMode      string `envconfig:"IDENTITY_MODE" default:"gotrue"`
	SupabaseURL       string `envconfig:"SUPABASE_URL"`
	SupabaseAnonKey   string `envconfig:"SUPABASE_ANON_KEY"`
	SupabaseJWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`

	LocalJWTSecret     string `envconfig:"LOCAL_JWT_SECRET"`
	LocalJWTIssuer     string `envconfig:"LOCAL_JWT_ISSUER" default:"afriglobal-local"`
	LocalJWTTTLMinutes int    `envconfig:"LOCAL_JWT_TTL_MINUTES" default:"60"`
	BcryptCost         int    `envconfig:"BCRYPT_COST" default:"10"`

	SessionCookie       string   `envconfig:"SESSION_COOKIE" default:"sb-access-token"`
	CORSOrigins         []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	SignupRatePerMinute int      `envconfig:"SIGNUP_RATE_PER_MINUTE" default:"10"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `envconfig:"TRUST_PROXY_HEADERS" default:"false"`
}

// LoadDotEnv loads a .env file into the environment when one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found; relying on existing environment")
	}
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	cfg.IdentityMode = strings.ToLower(strings.TrimSpace(cfg.IdentityMode))
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.IdentityMode {
	case IdentityModeGoTrue:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required when IDENTITY_MODE=gotrue")
		}
	case IdentityModeLocal:
		if c.LocalJWTSecret == "" {
			return errors.New("LOCAL_JWT_SECRET is required when IDENTITY_MODE=local")
		}
	default:
		return fmt.Errorf("unsupported IDENTITY_MODE %q", c.IdentityMode)
	}
	if c.LocalJWTTTLMinutes <= 0 {
		c.LocalJWTTTLMinutes = 60
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

// EmailRedirectURL is where confirmation links land after signup.
func (c *Config) EmailRedirectURL() string {
	return c.SiteURL + "/auth/callback"
}

// PasswordResetURL is where password-recovery links land.
func (c *Config) PasswordResetURL() string {
	return c.SiteURL + "/reset-password"
}

// SecureCookies reports whether session cookies must be marked Secure.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.SiteURL, "https://")
}

// LocalJWTTTL returns the lifetime of tokens issued in local identity mode.
func (c *Config) LocalJWTTTL() time.Duration {
	return time.Duration(c.LocalJWTTTLMinutes) * time.Minute
}

func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/afriglobal-be/internal/identity"
)

// Audience is the aud claim the identity provider stamps on user access tokens.
const Audience = "authenticated"

// Claims mirrors the access-token payload issued by the identity provider.
type Claims struct {
	Email        string         `json:"email"`
	Role         string         `json:"role,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
// An empty issuer disables the issuer check on Parse.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL returns the lifetime of issued tokens.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Generate issues a signed JWT string for the provided user.
func (t *TokenManager) Generate(user identity.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:        user.Email,
		Role:         Audience,
		UserMetadata: user.UserMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies the signature, expiry and audience of raw and returns the
// user it was issued for. Verification failures wrap identity.ErrUnauthorized.
func (t *TokenManager) Parse(raw string) (*identity.User, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", identity.ErrUnauthorized, errors.New("token has no subject"))
	}

	return &identity.User{
		ID:           claims.Subject,
		Email:        claims.Email,
		UserMetadata: claims.UserMetadata,
	}, nil
}

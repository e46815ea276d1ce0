// Package account reconciles accounts held by the identity provider with the
// local user profiles.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hongminglow/afriglobal-be/internal/identity"
	"github.com/hongminglow/afriglobal-be/internal/metrics"
	"github.com/hongminglow/afriglobal-be/internal/models"
	"github.com/hongminglow/afriglobal-be/internal/storage"
)

var (
	// ErrIdentity wraps a failed identity-provider call.
	ErrIdentity = errors.New("identity provider rejected the request")
	// ErrNoIdentityUser is returned when signup succeeded without returning a user.
	ErrNoIdentityUser = errors.New("identity provider returned no user")
	// ErrInvalidRole is returned for roles outside models.Roles.
	ErrInvalidRole = errors.New("invalid role")
	// ErrProfile wraps a local store failure after the identity account was created.
	ErrProfile = errors.New("failed to create user profile")
)

// FallbackFullName is used when the identity carries no full_name metadata.
const FallbackFullName = "Utilisateur"

// Outcome tells how a signup was reconciled with the local store.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeExisting Outcome = "existing"
	OutcomeDeferred Outcome = "deferred"
)

// SignUpInput is a validated signup request.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

// SignUpResult is the reconciled signup. When Outcome is OutcomeDeferred only
// Identity is meaningful; Profile is the zero value.
type SignUpResult struct {
	Outcome  Outcome
	Profile  models.User
	Identity identity.User
}

// Service owns the signup and role reconciliation policies.
type Service struct {
	provider        identity.Provider
	store           storage.UserStore
	metrics         metrics.Recorder
	emailRedirectTo string
}

// NewService creates a Service. Confirmation emails link back to emailRedirectTo.
func NewService(provider identity.Provider, store storage.UserStore, recorder metrics.Recorder, emailRedirectTo string) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		provider:        provider,
		store:           store,
		metrics:         recorder,
		emailRedirectTo: emailRedirectTo,
	}
}

// SignUp creates the identity account and then mirrors it into the local store
// with the default role. The identity call always completes before the store
// is touched, and nothing is retried.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error) {
	fullName := strings.TrimSpace(in.FullName)
	idUser, err := s.provider.SignUp(ctx, identity.SignUpParams{
		Email:           strings.TrimSpace(in.Email),
		Password:        in.Password,
		EmailRedirectTo: s.emailRedirectTo,
		Data:            map[string]any{"full_name": fullName},
	})
	if err != nil {
		s.metrics.RecordSignup("identity_error")
		return SignUpResult{}, fmt.Errorf("%w: %w", ErrIdentity, err)
	}
	if idUser == nil || idUser.ID == "" {
		s.metrics.RecordSignup("no_identity_user")
		return SignUpResult{}, ErrNoIdentityUser
	}

	result := SignUpResult{Identity: *idUser}
	profile, err := s.store.CreateUser(ctx, models.User{
		ID:       idUser.ID,
		Email:    idUser.Email,
		FullName: fullName,
		Role:     models.DefaultRole,
	})
	switch {
	case err == nil:
		result.Outcome = OutcomeCreated
		result.Profile = profile
	case errors.Is(err, storage.ErrAlreadyExists):
		existing, findErr := s.findExisting(ctx, *idUser)
		switch {
		case findErr == nil:
			result.Outcome = OutcomeExisting
			result.Profile = existing
		case errors.Is(findErr, storage.ErrUnavailable):
			// A matching profile exists; only reading it back failed.
			slog.Warn("existing profile lookup deferred, database unavailable", "user_id", idUser.ID, "error", findErr)
			result.Outcome = OutcomeDeferred
		default:
			s.reportOrphan(*idUser, findErr)
			return SignUpResult{}, fmt.Errorf("%w: %w", ErrProfile, findErr)
		}
	case errors.Is(err, storage.ErrUnavailable):
		slog.Warn("profile creation deferred, database unavailable", "user_id", idUser.ID, "error", err)
		result.Outcome = OutcomeDeferred
	default:
		s.reportOrphan(*idUser, err)
		return SignUpResult{}, fmt.Errorf("%w: %w", ErrProfile, err)
	}

	s.metrics.RecordSignup(string(result.Outcome))
	return result, nil
}

func (s *Service) findExisting(ctx context.Context, idUser identity.User) (models.User, error) {
	existing, err := s.store.FindByEmail(ctx, idUser.Email)
	if errors.Is(err, storage.ErrNotFound) {
		// The conflict was on the id rather than the email.
		return s.store.FindByID(ctx, idUser.ID)
	}
	return existing, err
}

// reportOrphan flags an identity account that has no local profile. The
// divergence is not repaired here.
func (s *Service) reportOrphan(idUser identity.User, err error) {
	s.metrics.RecordSignup("profile_error")
	s.metrics.RecordOrphanedIdentity()
	slog.Error("identity account created without local profile",
		"user_id", idUser.ID,
		"email", idUser.Email,
		"error", err,
	)
}

// UpdateRole ensures a local profile exists for caller and sets its role.
func (s *Service) UpdateRole(ctx context.Context, caller identity.User, role string) (models.User, error) {
	if !models.ValidRole(role) {
		s.metrics.RecordRoleUpdate("invalid_role")
		return models.User{}, ErrInvalidRole
	}

	_, err := s.store.FindByID(ctx, caller.ID)
	switch {
	case err == nil:
		return s.setRole(ctx, caller.ID, role)
	case !errors.Is(err, storage.ErrNotFound):
		s.metrics.RecordRoleUpdate("error")
		return models.User{}, fmt.Errorf("find user %s: %w", caller.ID, err)
	}

	fullName := strings.TrimSpace(caller.FullName())
	if fullName == "" {
		fullName = FallbackFullName
	}
	created, err := s.store.CreateUser(ctx, models.User{
		ID:       caller.ID,
		Email:    caller.Email,
		FullName: fullName,
		Role:     role,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Lost a race with a concurrent signup or role update.
		return s.setRole(ctx, caller.ID, role)
	}
	if err != nil {
		s.metrics.RecordRoleUpdate("error")
		return models.User{}, fmt.Errorf("create user %s: %w", caller.ID, err)
	}
	s.metrics.RecordRoleUpdate("created")
	return created, nil
}

func (s *Service) setRole(ctx context.Context, id, role string) (models.User, error) {
	updated, err := s.store.UpdateRole(ctx, id, role)
	if err != nil {
		s.metrics.RecordRoleUpdate("error")
		return models.User{}, fmt.Errorf("update role for %s: %w", id, err)
	}
	s.metrics.RecordRoleUpdate("updated")
	return updated, nil
}

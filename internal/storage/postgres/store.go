package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/afriglobal-be/internal/models"
	"github.com/hongminglow/afriglobal-be/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

const userColumns = `id, email, full_name, role, created_at, updated_at`

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new Store. The pool connects lazily, so an
// unreachable database surfaces as storage.ErrUnavailable on first use.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.ID, user.Email, user.FullName, user.Role)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, classify(err)
	}
	return created, nil
}

// FindByID fetches a user by identity-provider id.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return models.User{}, classify(err)
	}
	return user, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		return models.User{}, classify(err)
	}
	return user, nil
}

// UpdateRole sets the role of an existing user and leaves every other field untouched.
func (s *Store) UpdateRole(ctx context.Context, id, role string) (models.User, error) {
	const query = `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(s.pool.QueryRow(ctx, query, id, role))
	if err != nil {
		return models.User{}, classify(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// classify maps driver errors onto the storage sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%w: %s", storage.ErrAlreadyExists, pgErr.ConstraintName)
		// Class 08 is connection exceptions; 57P0x are admin/crash shutdowns.
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P0"):
			return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}

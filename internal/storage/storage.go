package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/afriglobal-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnavailable indicates the database could not be reached.
var ErrUnavailable = errors.New("database unavailable")

// UserStore captures persistence operations needed by the account service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateRole(ctx context.Context, id, role string) (models.User, error)
	Ping(ctx context.Context) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/afriglobal-be/internal/storage"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, storage.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), storage.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_unique_idx"}, storage.ErrAlreadyExists},
		{"connection failure", &pgconn.PgError{Code: "08006"}, storage.ErrUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, storage.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, storage.ErrUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}
}

func TestClassify_PassesThroughOtherErrors(t *testing.T) {
	checkViolation := &pgconn.PgError{Code: "23514"}
	got := classify(checkViolation)
	assert.Same(t, checkViolation, got)

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
	assert.NoError(t, classify(nil))
}

package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWithReadRetry_ExhaustionTagsUnavailable(t *testing.T) {
	attempts := 0
	err := withReadRetry(context.Background(), func() error {
		attempts++
		return driver.ErrBadConn
	})

	require.Error(t, err)
	assert.Equal(t, maxReadAttempts, attempts)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, driver.ErrBadConn)
}

func TestWithReadRetry_NonTransientReturnsImmediately(t *testing.T) {
	t.Run("record not found", func(t *testing.T) {
		attempts := 0
		err := withReadRetry(context.Background(), func() error {
			attempts++
			return gorm.ErrRecordNotFound
		})

		assert.Equal(t, 1, attempts)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("success", func(t *testing.T) {
		attempts := 0
		err := withReadRetry(context.Background(), func() error {
			attempts++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func TestWithReadRetry_RecoversMidway(t *testing.T) {
	attempts := 0
	err := withReadRetry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &net.OpError{Op: "read", Err: errors.New("connection reset")}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithReadRetry_ContextCancelStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := withReadRetry(ctx, func() error {
		return driver.ErrBadConn
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"record not found", gorm.ErrRecordNotFound, false},
		{"duplicate key", gorm.ErrDuplicatedKey, false},
		{"context canceled", context.Canceled, false},
		{"bad connection", driver.ErrBadConn, true},
		{"wrapped bad connection", fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"network error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"plain error", errors.New("syntax error"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isTransient(tc.err))
		})
	}
}

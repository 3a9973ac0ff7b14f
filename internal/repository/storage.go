package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/hotelstay/service-booking/internal/common/domain"
)

// DefaultStorageTimeout bounds a storage call when no timeout is configured.
const DefaultStorageTimeout = 5 * time.Second

// SQLSTATE codes the repositories react to.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
	pgQueryCanceled      = "57014"
	pgLockNotAvailable   = "55P03"
	pgSerialization      = "40001"
	pgDeadlock           = "40P01"
)

// storage carries the handle and call timeout shared by the repositories.
type storage struct {
	db      *gorm.DB
	timeout time.Duration
}

func newStorage(db *gorm.DB, timeout time.Duration) storage {
	if timeout <= 0 {
		timeout = DefaultStorageTimeout
	}
	return storage{db: db, timeout: timeout}
}

// begin returns a session bound to a context with the storage timeout applied.
func (s storage) begin(ctx context.Context) (*gorm.DB, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), ctx, cancel
}

// mapError converts a driver error into a domain error. Domain errors pass through.
func mapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsDomainError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewStorageTimeoutError(op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgQueryCanceled, pgLockNotAvailable:
			return domain.NewStorageTimeoutError(op, err)
		case pgSerialization, pgDeadlock:
			return domain.NewStorageFailureError(op, err)
		}
		if strings.HasPrefix(string(pqErr.Code), "08") {
			return domain.NewStorageFailureError(op, err)
		}
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return domain.NewStorageFailureError(op, err)
}

func pqCode(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

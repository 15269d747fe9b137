package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStockConflict is returned when a guarded stock decrement matched no row,
// meaning another transaction changed the quantity after it was validated.
var ErrStockConflict = errors.New("stock changed concurrently")

const txAttempts = 3

// RunWithRetry executes fn inside a transaction, re-running the whole unit of
// work after a transient conflict. fn must re-read any state it validates:
// values from a failed attempt are stale.
func (r *GormRepo) RunWithRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = r.DB.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStockConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres serialization failure / deadlock surfaced through the driver.
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") || strings.Contains(msg, "SQLSTATE 40P01")
}

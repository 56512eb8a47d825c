package order

import (
	"context"
	"time"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store"
)

// checkRateLimit fails when the user's most recent operation of the same
// type is still inside the cooldown window. It has no side effect: the
// caller appends the new log entry only after the guarded operation fully
// succeeds.
func (e *Engine) checkRateLimit(ctx context.Context, tx store.Tx, userID int64, op domain.OperationType) error {
	last, found, err := tx.LastOperation(ctx, userID, op)
	if err != nil {
		return err
	}
	if found && e.now().Sub(last) < e.cfg.RateLimitWindow {
		return domain.OrderLimitExceeded(windowMinutes(e.cfg.RateLimitWindow))
	}
	return nil
}

func windowMinutes(w time.Duration) int {
	minutes := int(w / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

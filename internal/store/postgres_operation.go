package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/marketplace/internal/domain"
)

// LastOperation reads the single most recent log entry of the given type.
// The rate limiter cares only about that one timestamp.
func (t *pgTx) LastOperation(ctx context.Context, userID int64, op domain.OperationType) (time.Time, bool, error) {
	var at time.Time
	err := t.tx.QueryRowContext(ctx,
		`SELECT created_at FROM user_operations
		 WHERE user_id = $1 AND operation_type = $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, op,
	).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

func (t *pgTx) AppendOperation(ctx context.Context, userID int64, op domain.OperationType, at time.Time) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO user_operations (user_id, operation_type, created_at) VALUES ($1, $2, $3)`,
		userID, op, at)
	return err
}

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/marketplace/internal/domain"
)

func (t *pgTx) CreateUser(ctx context.Context, u *domain.User) error {
	return t.tx.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		u.Username, u.PasswordHash, u.Role, u.CreatedAt,
	).Scan(&u.ID)
}

func (t *pgTx) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return t.scanUser(t.tx.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1`, id))
}

func (t *pgTx) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return t.scanUser(t.tx.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`, username))
}

func (t *pgTx) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (t *pgTx) LockUser(ctx context.Context, id int64) error {
	var locked int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (t *pgTx) CreateRefreshToken(ctx context.Context, rt *domain.RefreshToken) error {
	return t.tx.QueryRowContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt,
	).Scan(&rt.ID)
}

func (t *pgTx) RefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = $1`,
		token,
	).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (t *pgTx) DeleteRefreshToken(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	return err
}

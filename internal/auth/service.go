package auth

import (
	"context"
	"errors"
	"time"

	"github.com/example/marketplace/internal/domain"
	"github.com/example/marketplace/internal/store"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements registration, login and refresh-token rotation.
// Refresh tokens are persisted so they can be revoked; a token missing from
// the store is rejected even when its signature is valid.
type Service struct {
	store store.Store
	jwt   *JWTService
}

func NewService(st store.Store, jwt *JWTService) *Service {
	return &Service{store: st, jwt: jwt}
}

// Register creates a user with a unique username.
func (s *Service) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var created *domain.User
	err = s.store.WithinTx(ctx, func(tx store.Tx) error {
		_, err := tx.UserByUsername(ctx, username)
		if err == nil {
			return domain.UsernameConflict()
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		u := &domain.User{
			Username:     username,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    time.Now(),
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies credentials and issues a token pair, persisting the refresh
// token.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair *TokenPair
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		u, err := tx.UserByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenInvalid()
		}
		if err != nil {
			return err
		}
		if !CheckPassword(password, u.PasswordHash) {
			return domain.TokenInvalid()
		}

		p, err := s.issueTokens(ctx, tx, u.ID, u.Role)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh validates a refresh token against both its signature and the
// store, then rotates it: the old token is deleted and a new pair issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.RefreshTokenInvalid()
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, domain.RefreshTokenInvalid()
	}

	var pair *TokenPair
	err = s.store.WithinTx(ctx, func(tx store.Tx) error {
		stored, err := tx.RefreshToken(ctx, refreshToken)
		if errors.Is(err, store.ErrNotFound) {
			return domain.RefreshTokenInvalid()
		}
		if err != nil {
			return err
		}
		if err := tx.DeleteRefreshToken(ctx, stored.ID); err != nil {
			return err
		}

		p, err := s.issueTokens(ctx, tx, userID, domain.Role(claims.Role))
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *Service) issueTokens(ctx context.Context, tx store.Tx, userID int64, role domain.Role) (*TokenPair, error) {
	access, _, err := s.jwt.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := s.jwt.GenerateRefreshToken(userID, role)
	if err != nil {
		return nil, err
	}

	err = tx.CreateRefreshToken(ctx, &domain.RefreshToken{
		UserID:    userID,
		Token:     refresh,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TokenBlacklist хранит jti отозванных refresh-токенов до истечения их срока.
type TokenBlacklist interface {
	Blacklist(ctx context.Context, jti string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type tokenBlacklistRepository struct {
	db *sql.DB
}

// NewTokenBlacklistRepository хранит черный список в таблице token_blacklist.
func NewTokenBlacklistRepository(db *sql.DB) TokenBlacklist {
	return &tokenBlacklistRepository{db: db}
}

func (r *tokenBlacklistRepository) Blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	query := `INSERT INTO token_blacklist (jti, expires_at) VALUES ($1, $2)
	          ON CONFLICT (jti) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, jti, expiresAt); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *tokenBlacklistRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1 AND expires_at > NOW())"
	if err := r.db.QueryRowContext(ctx, query, jti).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists, nil
}

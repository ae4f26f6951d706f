package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RefreshTokenStore struct {
	db *pgxpool.Pool
}

func NewRefreshTokenStore(db *pgxpool.Pool) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

func (s *RefreshTokenStore) Create(ctx context.Context, t *domain.RefreshToken) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		t.Token, t.UserID, t.ExpiresAt,
	).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Consume deletes and returns the row in one statement, so concurrent callers
// presenting the same token cannot both succeed.
func (s *RefreshTokenStore) Consume(ctx context.Context, token string) (*domain.RefreshToken, error) {
	t := &domain.RefreshToken{Token: token}
	err := conn(ctx, s.db).QueryRow(ctx,
		`DELETE FROM refresh_tokens WHERE token = $1
		 RETURNING user_id, expires_at, created_at`,
		token,
	).Scan(&t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	return t, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, token string) error {
	if _, err := conn(ctx, s.db).Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := conn(ctx, s.db).Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

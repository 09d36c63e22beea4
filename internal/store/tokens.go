package store

import (
	"context"
	"fmt"
	"time"

	"github.com/magheya/lds-backend/internal/models"
)

// InsertToken persists t and sets its ID. CreatedAt is filled from the
// store clock when zero.
func (s *Store) InsertToken(ctx context.Context, t *models.AuthToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.timestamp()
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO auth_tokens (user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		t.UserID, t.Token, toMillis(t.ExpiresAt), toMillis(t.CreatedAt),
	).Scan(&t.ID)
	if err != nil {
		return translateErr(fmt.Errorf("insert token: %w", err))
	}
	return nil
}

// FindToken returns the token row whether or not it has expired, or
// apperr.ErrNotFound.
func (s *Store) FindToken(ctx context.Context, token string) (*models.AuthToken, error) {
	var t models.AuthToken
	var expires, created int64
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, user_id, token, expires_at, created_at
		FROM auth_tokens WHERE token = ?`), token,
	).Scan(&t.ID, &t.UserID, &t.Token, &expires, &created)
	if err != nil {
		return nil, translateErr(fmt.Errorf("find token: %w", err))
	}
	t.ExpiresAt = fromMillis(expires)
	t.CreatedAt = fromMillis(created)
	return &t, nil
}

func (s *Store) DeleteToken(ctx context.Context, token string) (bool, error) {
	return s.exec(ctx, `DELETE FROM auth_tokens WHERE token = ?`, token)
}

// DeleteTokensForUser revokes every token of the admin and returns how
// many were removed.
func (s *Store) DeleteTokensForUser(ctx context.Context, userID int64) (int64, error) {
	return s.execCount(ctx, `DELETE FROM auth_tokens WHERE user_id = ?`, userID)
}

// DeleteExpiredTokens removes tokens with expires_at <= now.
func (s *Store) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	return s.execCount(ctx, `DELETE FROM auth_tokens WHERE expires_at <= ?`, toMillis(now))
}

func (s *Store) execCount(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.RowsAffected()
}

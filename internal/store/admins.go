package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/models"
)

const adminColumns = `id, username, password, role, created_at`

// GetAdminByUsername returns apperr.ErrNotFound for unknown usernames.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+adminColumns+` FROM admins WHERE username = ?`), username)
	return scanAdmin(row)
}

func (s *Store) GetAdminByID(ctx context.Context, id int64) (*models.AdminAccount, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+adminColumns+` FROM admins WHERE id = ?`), id)
	return scanAdmin(row)
}

// CreateAdmin inserts an account with an already hashed password. A taken
// username yields apperr.ErrConstraint.
func (s *Store) CreateAdmin(ctx context.Context, username, passwordHash, role string) (*models.AdminAccount, error) {
	a := &models.AdminAccount{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    s.timestamp(),
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO admins (username, password, role, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		a.Username, a.PasswordHash, a.Role, toMillis(a.CreatedAt),
	).Scan(&a.ID)
	if err != nil {
		return nil, translateErr(fmt.Errorf("insert admin: %w", err))
	}
	return a, nil
}

// EnsureAdmin creates the account when no admin with that username exists.
// It reports whether a row was created.
func (s *Store) EnsureAdmin(ctx context.Context, username, passwordHash, role string) (bool, error) {
	_, err := s.GetAdminByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	if _, err := s.CreateAdmin(ctx, username, passwordHash, role); err != nil {
		return false, err
	}
	return true, nil
}

func scanAdmin(row scanner) (*models.AdminAccount, error) {
	var a models.AdminAccount
	var created int64
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &created); err != nil {
		return nil, translateErr(fmt.Errorf("scan admin: %w", err))
	}
	a.CreatedAt = fromMillis(created)
	return &a, nil
}

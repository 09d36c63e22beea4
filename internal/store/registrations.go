package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magheya/lds-backend/internal/models"
)

func (s *Store) SaveRegistration(ctx context.Context, in models.RegistrationInput) (*models.Registration, error) {
	r := &models.Registration{
		EventID:   in.EventID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Timestamp: s.timestamp(),
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO registrations (event_id, name, email, phone, timestamp)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		r.EventID, r.Name, r.Email, arg(r.Phone), toMillis(r.Timestamp),
	).Scan(&r.ID)
	if err != nil {
		return nil, translateErr(fmt.Errorf("insert registration: %w", err))
	}
	return r, nil
}

func (s *Store) GetAllRegistrations(ctx context.Context) ([]models.Registration, error) {
	return s.listRegistrations(ctx, `
		SELECT id, event_id, name, email, phone, timestamp
		FROM registrations
		ORDER BY timestamp DESC, id DESC`)
}

func (s *Store) GetRegistrationsByEvent(ctx context.Context, eventID int64) ([]models.Registration, error) {
	return s.listRegistrations(ctx, `
		SELECT id, event_id, name, email, phone, timestamp
		FROM registrations
		WHERE event_id = ?
		ORDER BY timestamp DESC, id DESC`, eventID)
}

func (s *Store) DeleteRegistration(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, `DELETE FROM registrations WHERE id = ?`, id)
}

func (s *Store) listRegistrations(ctx context.Context, query string, args ...any) ([]models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	regs := []models.Registration{}
	for rows.Next() {
		var r models.Registration
		var phone sql.NullString
		var ts int64
		if err := rows.Scan(&r.ID, &r.EventID, &r.Name, &r.Email, &phone, &ts); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		r.Phone = nullString(phone)
		r.Timestamp = fromMillis(ts)
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

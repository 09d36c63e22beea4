package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magheya/lds-backend/internal/models"
)

func (s *Store) SaveDonation(ctx context.Context, in models.DonationInput) (*models.Donation, error) {
	d := &models.Donation{
		Type:        in.Type,
		Amount:      in.Amount,
		Name:        in.Name,
		Email:       in.Email,
		Description: in.Description,
		Timestamp:   s.timestamp(),
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO donations (type, amount, name, email, description, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		d.Type, arg(d.Amount), d.Name, d.Email, arg(d.Description), toMillis(d.Timestamp),
	).Scan(&d.ID)
	if err != nil {
		return nil, translateErr(fmt.Errorf("insert donation: %w", err))
	}
	return d, nil
}

func (s *Store) GetAllDonations(ctx context.Context) ([]models.Donation, error) {
	return s.listDonations(ctx, `
		SELECT id, type, amount, name, email, description, timestamp
		FROM donations
		ORDER BY timestamp DESC, id DESC`)
}

func (s *Store) GetDonationsByType(ctx context.Context, donationType string) ([]models.Donation, error) {
	return s.listDonations(ctx, `
		SELECT id, type, amount, name, email, description, timestamp
		FROM donations
		WHERE type = ?
		ORDER BY timestamp DESC, id DESC`, donationType)
}

func (s *Store) listDonations(ctx context.Context, query string, args ...any) ([]models.Donation, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	donations := []models.Donation{}
	for rows.Next() {
		var d models.Donation
		var amount sql.NullFloat64
		var description sql.NullString
		var ts int64
		if err := rows.Scan(&d.ID, &d.Type, &amount, &d.Name, &d.Email, &description, &ts); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		d.Amount = nullFloat(amount)
		d.Description = nullString(description)
		d.Timestamp = fromMillis(ts)
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

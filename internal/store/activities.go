package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magheya/lds-backend/internal/models"
)

// The Recent* queries feed the dashboard activity feed. Each returns at
// most limit rows, newest first.

func (s *Store) RecentRegistrations(ctx context.Context, limit int) ([]models.RecentRegistration, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT r.id, r.name, e.name, r.timestamp
		FROM registrations r
		LEFT JOIN events e ON e.id = r.event_id
		ORDER BY r.timestamp DESC, r.id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent registrations: %w", err)
	}
	defer rows.Close()

	var out []models.RecentRegistration
	for rows.Next() {
		var r models.RecentRegistration
		var eventName sql.NullString
		var ts int64
		if err := rows.Scan(&r.ID, &r.Name, &eventName, &ts); err != nil {
			return nil, fmt.Errorf("scan recent registration: %w", err)
		}
		r.EventName = nullString(eventName)
		r.Timestamp = fromMillis(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RecentDonations(ctx context.Context, limit int) ([]models.RecentDonation, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, name, type, amount, timestamp
		FROM donations
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent donations: %w", err)
	}
	defer rows.Close()

	var out []models.RecentDonation
	for rows.Next() {
		var d models.RecentDonation
		var amount sql.NullFloat64
		var ts int64
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &amount, &ts); err != nil {
			return nil, fmt.Errorf("scan recent donation: %w", err)
		}
		d.Amount = nullFloat(amount)
		d.Timestamp = fromMillis(ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) RecentOrders(ctx context.Context, limit int) ([]models.RecentOrder, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, customer_name, total, timestamp
		FROM orders
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	defer rows.Close()

	var out []models.RecentOrder
	for rows.Next() {
		var o models.RecentOrder
		var ts int64
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.Total, &ts); err != nil {
			return nil, fmt.Errorf("scan recent order: %w", err)
		}
		o.Timestamp = fromMillis(ts)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) RecentMessages(ctx context.Context, limit int) ([]models.RecentMessage, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, name, subject, timestamp
		FROM messages
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	var out []models.RecentMessage
	for rows.Next() {
		var m models.RecentMessage
		var ts int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Subject, &ts); err != nil {
			return nil, fmt.Errorf("scan recent message: %w", err)
		}
		m.Timestamp = fromMillis(ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

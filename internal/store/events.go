package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magheya/lds-backend/internal/models"
)

func (s *Store) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	return s.listEvents(ctx, `SELECT id, name, date, description, image, type, created_at FROM events ORDER BY id`)
}

func (s *Store) GetEventsByType(ctx context.Context, eventType string) ([]models.Event, error) {
	return s.listEvents(ctx, `SELECT id, name, date, description, image, type, created_at FROM events WHERE type = ? ORDER BY id`, eventType)
}

func (s *Store) listEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var created int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Description, &e.Image, &e.Type, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CreatedAt = fromMillis(created)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) AddEvent(ctx context.Context, in models.EventInput) (*models.Event, error) {
	e := &models.Event{
		Name:        in.Name,
		Date:        in.Date,
		Description: in.Description,
		Image:       in.Image,
		Type:        in.Type,
		CreatedAt:   s.timestamp(),
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO events (name, date, description, image, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		e.Name, e.Date, e.Description, e.Image, e.Type, toMillis(e.CreatedAt),
	).Scan(&e.ID)
	if err != nil {
		return nil, translateErr(fmt.Errorf("insert event: %w", err))
	}
	return e, nil
}

// UpdateEvent applies the non-nil patch fields and reports whether the
// event exists.
func (s *Store) UpdateEvent(ctx context.Context, id int64, patch models.EventPatch) (bool, error) {
	var found bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE events SET
				name = COALESCE(?, name),
				date = COALESCE(?, date),
				description = COALESCE(?, description),
				image = COALESCE(?, image),
				type = COALESCE(?, type)
			WHERE id = ?`),
			arg(patch.Name), arg(patch.Date), arg(patch.Description), arg(patch.Image), arg(patch.Type), id,
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		found = n > 0
		return nil
	})
	return found, err
}

// DeleteEvent removes the event; its registrations cascade.
func (s *Store) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, `DELETE FROM events WHERE id = ?`, id)
}

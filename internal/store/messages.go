package store

import (
	"context"
	"fmt"

	"github.com/magheya/lds-backend/internal/models"
)

const messageColumns = `id, name, email, subject, message, read, timestamp`

func (s *Store) SaveMessage(ctx context.Context, in models.MessageInput) (*models.Message, error) {
	m := &models.Message{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		Timestamp: s.timestamp(),
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO messages (name, email, subject, message, read, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		m.Name, m.Email, m.Subject, m.Message, false, toMillis(m.Timestamp),
	).Scan(&m.ID)
	if err != nil {
		return nil, translateErr(fmt.Errorf("insert message: %w", err))
	}
	return m, nil
}

func (s *Store) GetAllMessages(ctx context.Context) ([]models.Message, error) {
	return s.listMessages(ctx, `SELECT `+messageColumns+` FROM messages ORDER BY timestamp DESC, id DESC`)
}

func (s *Store) GetUnreadMessages(ctx context.Context) ([]models.Message, error) {
	return s.listMessages(ctx, `SELECT `+messageColumns+` FROM messages WHERE read = ? ORDER BY timestamp DESC, id DESC`, false)
}

// GetMessageByID returns apperr.ErrNotFound when the message does not exist.
func (s *Store) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+messageColumns+` FROM messages WHERE id = ?`), id)
	m, err := scanMessage(row)
	if err != nil {
		return nil, translateErr(err)
	}
	return &m, nil
}

func (s *Store) MarkMessageAsRead(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, `UPDATE messages SET read = ? WHERE id = ?`, true, id)
}

func (s *Store) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	return s.exec(ctx, `DELETE FROM messages WHERE id = ?`, id)
}

func (s *Store) listMessages(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanMessage(row scanner) (models.Message, error) {
	var m models.Message
	var ts int64
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Read, &ts); err != nil {
		return m, fmt.Errorf("scan message: %w", err)
	}
	m.Timestamp = fromMillis(ts)
	return m, nil
}

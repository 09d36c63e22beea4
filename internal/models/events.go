package models

import "time"

// Event types used by the site. The column is free-form.
const (
	EventUpcoming   = "upcoming"
	EventPast       = "past"
	EventSolidarity = "solidarity"
)

type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventInput is the body for POST /api/events.
type EventInput struct {
	Name        string `json:"name" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Type        string `json:"type"`
}

// EventPatch lists the event fields an update may touch.
type EventPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Date        *string `json:"date" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Type        *string `json:"type"`
}

type Registration struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Timestamp time.Time `json:"timestamp"`
}

// RegistrationInput is the body for POST /api/registrations.
type RegistrationInput struct {
	EventID int64   `json:"event_id" validate:"gt=0"`
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone"`
}

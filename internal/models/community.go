package models

import "time"

// DonationMoney is the donation type that carries an amount.
const DonationMoney = "money"

type Donation struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      *float64  `json:"amount"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description *string   `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// DonationInput is the body for POST /api/donations.
type DonationInput struct {
	Type        string   `json:"type" validate:"required"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Description *string  `json:"description"`
}

// Message is a contact form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageInput is the body for POST /api/messages.
type MessageInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

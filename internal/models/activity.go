package models

import "time"

// Activity types in the dashboard feed.
const (
	ActivityRegistration = "registration"
	ActivityDonation     = "donation"
	ActivityOrder        = "order"
	ActivityMessage      = "message"
)

// Activity is one entry of the admin dashboard feed.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	RelatedID int64     `json:"related_id"`
}

// RecentRegistration is a registration joined with its event name, which
// is nil when the event row is gone.
type RecentRegistration struct {
	ID        int64
	Name      string
	EventName *string
	Timestamp time.Time
}

type RecentDonation struct {
	ID        int64
	Name      string
	Type      string
	Amount    *float64
	Timestamp time.Time
}

type RecentOrder struct {
	ID           int64
	CustomerName string
	Total        float64
	Timestamp    time.Time
}

type RecentMessage struct {
	ID        int64
	Name      string
	Subject   string
	Timestamp time.Time
}

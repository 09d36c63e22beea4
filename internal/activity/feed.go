// Package activity builds the admin dashboard feed of recent
// registrations, donations, orders and messages.
package activity

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/httpjson"
	"github.com/magheya/lds-backend/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Source returns the newest rows of each table, at most limit per table.
type Source interface {
	RecentRegistrations(ctx context.Context, limit int) ([]models.RecentRegistration, error)
	RecentDonations(ctx context.Context, limit int) ([]models.RecentDonation, error)
	RecentOrders(ctx context.Context, limit int) ([]models.RecentOrder, error)
	RecentMessages(ctx context.Context, limit int) ([]models.RecentMessage, error)
}

type Feed struct {
	src     Source
	printer *message.Printer
}

func NewFeed(src Source) *Feed {
	return &Feed{src: src, printer: message.NewPrinter(language.French)}
}

// Recent merges the newest limit rows of every source, newest first, and
// keeps the first limit entries. Each source is limited on its own, so a
// busy table can crowd out recent rows of a quiet one.
func (f *Feed) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	regs, err := f.src.RecentRegistrations(ctx, limit)
	if err != nil {
		return nil, err
	}
	donations, err := f.src.RecentDonations(ctx, limit)
	if err != nil {
		return nil, err
	}
	orders, err := f.src.RecentOrders(ctx, limit)
	if err != nil {
		return nil, err
	}
	msgs, err := f.src.RecentMessages(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.Activity, 0, len(regs)+len(donations)+len(orders)+len(msgs))
	for _, r := range regs {
		out = append(out, f.registration(r))
	}
	for _, d := range donations {
		out = append(out, f.donation(d))
	}
	for _, o := range orders {
		out = append(out, f.order(o))
	}
	for _, m := range msgs {
		out = append(out, f.message(m))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Feed) registration(r models.RecentRegistration) models.Activity {
	event := "un événement"
	if r.EventName != nil {
		event = *r.EventName
	}
	return models.Activity{
		ID:        fmt.Sprintf("reg_%d", r.ID),
		Type:      models.ActivityRegistration,
		Timestamp: r.Timestamp,
		Message:   f.printer.Sprintf("%s s'est inscrit(e) à \"%s\"", r.Name, event),
		RelatedID: r.ID,
	}
}

func (f *Feed) donation(d models.RecentDonation) models.Activity {
	var msg string
	if d.Type == models.DonationMoney {
		var amount float64
		if d.Amount != nil {
			amount = *d.Amount
		}
		msg = f.printer.Sprintf("%s a fait un don de %v€", d.Name, amount)
	} else {
		msg = f.printer.Sprintf("%s a fait un don de type %s", d.Name, d.Type)
	}
	return models.Activity{
		ID:        fmt.Sprintf("don_%d", d.ID),
		Type:      models.ActivityDonation,
		Timestamp: d.Timestamp,
		Message:   msg,
		RelatedID: d.ID,
	}
}

func (f *Feed) order(o models.RecentOrder) models.Activity {
	return models.Activity{
		ID:        fmt.Sprintf("ord_%d", o.ID),
		Type:      models.ActivityOrder,
		Timestamp: o.Timestamp,
		Message:   f.printer.Sprintf("%s a passé une commande de %v€", o.CustomerName, o.Total),
		RelatedID: o.ID,
	}
}

func (f *Feed) message(m models.RecentMessage) models.Activity {
	subject := m.Subject
	if subject == "" {
		subject = "Sans objet"
	}
	return models.Activity{
		ID:        fmt.Sprintf("msg_%d", m.ID),
		Type:      models.ActivityMessage,
		Timestamp: m.Timestamp,
		Message:   f.printer.Sprintf("Nouveau message de %s: \"%s\"", m.Name, subject),
		RelatedID: m.ID,
	}
}

// ParseLimit reads the ?limit= query value. Empty means DefaultLimit.
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, fmt.Errorf("%w: limit must be an integer between 1 and %d", apperr.ErrValidation, MaxLimit)
	}
	return n, nil
}

// Handler serves GET /api/activities.
func Handler(feed *Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := ParseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			httpjson.Error(w, r, err)
			return
		}
		items, err := feed.Recent(r.Context(), limit)
		if err != nil {
			httpjson.Error(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, items)
	}
}

// Package community serves donations and contact messages.
package community

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/httpjson"
	"github.com/magheya/lds-backend/internal/models"
)

type Store interface {
	SaveDonation(ctx context.Context, in models.DonationInput) (*models.Donation, error)
	GetAllDonations(ctx context.Context) ([]models.Donation, error)
	GetDonationsByType(ctx context.Context, donationType string) ([]models.Donation, error)

	SaveMessage(ctx context.Context, in models.MessageInput) (*models.Message, error)
	GetAllMessages(ctx context.Context) ([]models.Message, error)
	GetUnreadMessages(ctx context.Context) ([]models.Message, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	MarkMessageAsRead(ctx context.Context, id int64) (bool, error)
	DeleteMessage(ctx context.Context, id int64) (bool, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// CreateDonation is public. Money donations must carry an amount.
func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var in models.DonationInput
	if err := httpjson.Bind(r, &in); err != nil {
		httpjson.Error(w, r, err)
		return
	}
	if in.Type == models.DonationMoney && in.Amount == nil {
		httpjson.WriteError(w, http.StatusBadRequest, "amount is required for money donations")
		return
	}
	d, err := h.store.SaveDonation(r.Context(), in)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) ListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.store.GetAllDonations(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, donations)
}

func (h *Handler) ListDonationsByType(w http.ResponseWriter, r *http.Request) {
	donations, err := h.store.GetDonationsByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, donations)
}

// CreateMessage stores a contact form submission as unread.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var in models.MessageInput
	if err := httpjson.Bind(r, &in); err != nil {
		httpjson.Error(w, r, err)
		return
	}
	m, err := h.store.SaveMessage(r.Context(), in)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.store.GetAllMessages(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) ListUnreadMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.store.GetUnreadMessages(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	m, err := h.store.GetMessageByID(r.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.MarkMessageAsRead(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.DeleteMessage(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

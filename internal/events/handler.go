// Package events serves association events and the registrations to them.
package events

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/magheya/lds-backend/internal/httpjson"
	"github.com/magheya/lds-backend/internal/models"
	"github.com/magheya/lds-backend/internal/upload"
)

type Store interface {
	GetAllEvents(ctx context.Context) ([]models.Event, error)
	GetEventsByType(ctx context.Context, eventType string) ([]models.Event, error)
	AddEvent(ctx context.Context, in models.EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int64, patch models.EventPatch) (bool, error)
	DeleteEvent(ctx context.Context, id int64) (bool, error)

	SaveRegistration(ctx context.Context, in models.RegistrationInput) (*models.Registration, error)
	GetAllRegistrations(ctx context.Context) ([]models.Registration, error)
	GetRegistrationsByEvent(ctx context.Context, eventID int64) ([]models.Registration, error)
	DeleteRegistration(ctx context.Context, id int64) (bool, error)
}

type Handler struct {
	store     Store
	uploads   upload.Uploader
	maxUpload int64
}

func NewHandler(store Store, uploads upload.Uploader, maxUpload int64) *Handler {
	return &Handler{store: store, uploads: uploads, maxUpload: maxUpload}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.GetAllEvents(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) ListEventsByType(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.GetEventsByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	body, image, err := upload.BodyWithFile(r.Context(), h.uploads, r, "image", h.maxUpload)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	var in models.EventInput
	if err := httpjson.BindMap(body, &in); err != nil {
		upload.Discard(r.Context(), h.uploads, image)
		httpjson.Error(w, r, err)
		return
	}
	e, err := h.store.AddEvent(r.Context(), in)
	if err != nil {
		upload.Discard(r.Context(), h.uploads, image)
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	body, image, err := upload.BodyWithFile(r.Context(), h.uploads, r, "image", h.maxUpload)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	var patch models.EventPatch
	if err := httpjson.BindMap(body, &patch); err != nil {
		upload.Discard(r.Context(), h.uploads, image)
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.UpdateEvent(r.Context(), id, patch)
	if err != nil || !ok {
		upload.Discard(r.Context(), h.uploads, image)
	}
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

// DeleteEvent removes the event together with its registrations.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.DeleteEvent(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

// CreateRegistration is public. An unknown event_id answers 409.
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var in models.RegistrationInput
	if err := httpjson.Bind(r, &in); err != nil {
		httpjson.Error(w, r, err)
		return
	}
	reg, err := h.store.SaveRegistration(r.Context(), in)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, reg)
}

func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.store.GetAllRegistrations(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) ListRegistrationsByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := httpjson.IDParam(r, "eventID")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	regs, err := h.store.GetRegistrationsByEvent(r.Context(), eventID)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.DeleteRegistration(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

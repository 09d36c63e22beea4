// Package shop serves the merchandise catalogue and customer orders.
package shop

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/httpjson"
	"github.com/magheya/lds-backend/internal/models"
	"github.com/magheya/lds-backend/internal/upload"
)

// Store defines the product and order persistence the handlers need.
type Store interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	AddProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (bool, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)

	SaveOrder(ctx context.Context, in models.OrderInput) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (bool, error)
	DeleteOrder(ctx context.Context, id int64) (bool, error)
}

// Handler holds the shop HTTP handlers.
type Handler struct {
	store     Store
	uploads   upload.Uploader
	maxUpload int64
	log       *slog.Logger
}

func NewHandler(store Store, uploads upload.Uploader, maxUpload int64, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, uploads: uploads, maxUpload: maxUpload, log: log}
}

// ListProducts returns every product with its sizes.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.GetAllProducts(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) ListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.GetProductsByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, products)
}

// CreateProduct accepts JSON, form or multipart bodies. A multipart
// "image" file is stored and its public path replaces the image field.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	body, image, err := upload.BodyWithFile(r.Context(), h.uploads, r, "image", h.maxUpload)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}

	var in models.ProductInput
	if err := httpjson.BindMap(body, &in); err != nil {
		upload.Discard(r.Context(), h.uploads, image)
		httpjson.Error(w, r, err)
		return
	}
	p, err := h.store.AddProduct(r.Context(), in)
	if err != nil {
		upload.Discard(r.Context(), h.uploads, image)
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
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

	var patch models.ProductPatch
	if err := httpjson.BindMap(body, &patch); err != nil {
		upload.Discard(r.Context(), h.uploads, image)
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.UpdateProduct(r.Context(), id, patch)
	if err != nil || !ok {
		upload.Discard(r.Context(), h.uploads, image)
	}
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.DeleteProduct(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

// CreateOrder stores the order and its items. The client total is kept
// as sent; a mismatch with the items is only logged.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderInput
	if err := httpjson.Bind(r, &in); err != nil {
		httpjson.Error(w, r, err)
		return
	}

	var sum float64
	for _, it := range in.Items {
		sum += it.Price * float64(it.Quantity)
	}
	if math.Abs(sum-in.Total) > 0.005 {
		h.log.WarnContext(r.Context(), "order total does not match items",
			"customer_email", in.CustomerEmail, "total", in.Total, "items_sum", sum)
	}

	o, err := h.store.SaveOrder(r.Context(), in)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "order created", "order_id", o.ID, "items", len(o.Items))
	httpjson.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.GetAllOrders(r.Context())
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	o, err := h.store.GetOrderByID(r.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	var in models.OrderStatusInput
	if err := httpjson.Bind(r, &in); err != nil {
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.UpdateOrderStatus(r.Context(), id, in.Status)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "id")
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	ok, err := h.store.DeleteOrder(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, err)
		return
	}
	httpjson.Success(w, ok)
}

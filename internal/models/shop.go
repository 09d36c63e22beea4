package models

import "time"

// Product is a merchandise item with its ordered size labels.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Stock       int64     `json:"stock"`
	Sizes       []string  `json:"sizes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductInput is the body for POST /api/products.
type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Stock       int64    `json:"stock" validate:"gte=0"`
	Sizes       []string `json:"sizes"`
}

// ProductPatch lists the product fields an update may touch. Nil fields
// keep their stored value. A non-nil Sizes replaces the whole size set,
// so an empty slice clears it.
type ProductPatch struct {
	Name        *string   `json:"name" validate:"omitempty,min=1"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	Category    *string   `json:"category"`
	Stock       *int64    `json:"stock" validate:"omitempty,gte=0"`
	Sizes       *[]string `json:"sizes"`
}

// Order is a customer order with its line items.
type Order struct {
	ID            int64       `json:"id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Total         float64     `json:"total"`
	Status        string      `json:"status"`
	Timestamp     time.Time   `json:"timestamp"`
	Items         []OrderItem `json:"items"`
}

type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Size      *string `json:"size"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderInput is the body for POST /api/orders.
type OrderInput struct {
	CustomerName  string           `json:"customer_name" validate:"required"`
	CustomerEmail string           `json:"customer_email" validate:"required,email"`
	Total         float64          `json:"total" validate:"gte=0"`
	Status        string           `json:"status"`
	Items         []OrderItemInput `json:"items" validate:"min=1,dive"`
}

// OrderItemInput references its product through either id or product_id.
type OrderItemInput struct {
	ID        *int64  `json:"id"`
	ProductID *int64  `json:"product_id"`
	Size      *string `json:"size"`
	Quantity  int64   `json:"quantity" validate:"gte=1"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// ProductRef returns the referenced product id, preferring id over
// product_id.
func (i OrderItemInput) ProductRef() (int64, bool) {
	if i.ID != nil {
		return *i.ID, true
	}
	if i.ProductID != nil {
		return *i.ProductID, true
	}
	return 0, false
}

// OrderStatusInput is the body for PUT /api/orders/{id}/status.
type OrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magheya/lds-backend/internal/apperr"
	"github.com/magheya/lds-backend/internal/models"
)

const defaultOrderStatus = "pending"

// SaveOrder inserts the order and every line item in one transaction. The
// caller supplied total is stored as is.
func (s *Store) SaveOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	o := &models.Order{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Total:         in.Total,
		Status:        in.Status,
		Timestamp:     s.timestamp(),
		Items:         make([]models.OrderItem, 0, len(in.Items)),
	}
	if o.Status == "" {
		o.Status = defaultOrderStatus
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.q(`
			INSERT INTO orders (customer_name, customer_email, total, status, timestamp)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`),
			o.CustomerName, o.CustomerEmail, o.Total, o.Status, toMillis(o.Timestamp),
		).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, item := range in.Items {
			productID, ok := item.ProductRef()
			if !ok {
				return fmt.Errorf("%w: item %d has no product id", apperr.ErrValidation, i)
			}
			line := models.OrderItem{
				OrderID:   o.ID,
				ProductID: productID,
				Size:      item.Size,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			err := tx.QueryRowContext(ctx, s.q(`
				INSERT INTO order_items (order_id, product_id, size, quantity, price)
				VALUES (?, ?, ?, ?, ?)
				RETURNING id`),
				line.OrderID, line.ProductID, arg(line.Size), line.Quantity, line.Price,
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}
			o.Items = append(o.Items, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_name, customer_email, total, status, timestamp
		FROM orders
		ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := []models.Order{}
	index := map[int64]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := s.orderItems(ctx, `SELECT id, order_id, product_id, size, quantity, price FROM order_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, nil
}

// GetOrderByID returns apperr.ErrNotFound when the order does not exist.
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, customer_name, customer_email, total, status, timestamp
		FROM orders WHERE id = ?`), id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, translateErr(err)
	}

	items, err := s.orderItems(ctx, `SELECT id, order_id, product_id, size, quantity, price FROM order_items WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, items...)
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) (bool, error) {
	return s.exec(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
}

// DeleteOrder removes the line items, then the order.
func (s *Store) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM order_items WHERE order_id = ?`), id); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM orders WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (models.Order, error) {
	var o models.Order
	var ts int64
	if err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Total, &o.Status, &ts); err != nil {
		return o, fmt.Errorf("scan order: %w", err)
	}
	o.Timestamp = fromMillis(ts)
	o.Items = []models.OrderItem{}
	return o, nil
}

func (s *Store) orderItems(ctx context.Context, query string, args ...any) ([]models.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		var size sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &size, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.Size = nullString(size)
		items = append(items, it)
	}
	return items, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magheya/lds-backend/internal/models"
)

const productColumns = `p.id, p.name, p.price, p.description, p.image, p.category, p.stock, p.created_at`

func (s *Store) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.listProducts(ctx, "", nil)
}

func (s *Store) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.listProducts(ctx, "WHERE p.category = ?", []any{category})
}

// listProducts loads the product rows first and their sizes in a second
// query, so no result set stays open while the other is read.
func (s *Store) listProducts(ctx context.Context, where string, args []any) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+productColumns+` FROM products p `+where+` ORDER BY p.id`), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := []models.Product{}
	index := map[int64]int{}
	for rows.Next() {
		var p models.Product
		var created int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Category, &p.Stock, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.CreatedAt = fromMillis(created)
		p.Sizes = []string{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(products) == 0 {
		return products, nil
	}

	sizeRows, err := s.db.QueryContext(ctx, s.q(`
		SELECT ps.product_id, ps.size
		FROM product_sizes ps
		JOIN products p ON p.id = ps.product_id
		`+where+`
		ORDER BY ps.id`), args...)
	if err != nil {
		return nil, fmt.Errorf("list product sizes: %w", err)
	}
	defer sizeRows.Close()

	for sizeRows.Next() {
		var productID int64
		var size string
		if err := sizeRows.Scan(&productID, &size); err != nil {
			return nil, fmt.Errorf("scan product size: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Sizes = append(products[i].Sizes, size)
		}
	}
	return products, sizeRows.Err()
}

// AddProduct inserts the product and its sizes in one transaction.
func (s *Store) AddProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	p := &models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		Stock:       in.Stock,
		Sizes:       append([]string{}, in.Sizes...),
		CreatedAt:   s.timestamp(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.q(`
			INSERT INTO products (name, price, description, image, category, stock, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			p.Name, p.Price, p.Description, p.Image, p.Category, p.Stock, toMillis(p.CreatedAt),
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return s.insertSizes(ctx, tx, p.ID, p.Sizes)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies the non-nil patch fields. When patch.Sizes is set
// the stored sizes are replaced by it. It reports whether the product
// exists.
func (s *Store) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (bool, error) {
	var found bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE products SET
				name = COALESCE(?, name),
				price = COALESCE(?, price),
				description = COALESCE(?, description),
				image = COALESCE(?, image),
				category = COALESCE(?, category),
				stock = COALESCE(?, stock)
			WHERE id = ?`),
			arg(patch.Name), arg(patch.Price), arg(patch.Description), arg(patch.Image), arg(patch.Category), arg(patch.Stock), id,
		)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		found = n > 0
		if !found || patch.Sizes == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM product_sizes WHERE product_id = ?`), id); err != nil {
			return fmt.Errorf("clear product sizes: %w", err)
		}
		return s.insertSizes(ctx, tx, id, *patch.Sizes)
	})
	return found, err
}

// DeleteProduct removes the sizes, then the product. Order items that
// reference the product go with it through the foreign key cascade.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM product_sizes WHERE product_id = ?`), id); err != nil {
			return fmt.Errorf("delete product sizes: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM products WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
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

func (s *Store) insertSizes(ctx context.Context, tx *sql.Tx, productID int64, sizes []string) error {
	if len(sizes) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO product_sizes (product_id, size) VALUES (?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare size insert: %w", err)
	}
	defer stmt.Close()

	for _, size := range sizes {
		if _, err := stmt.ExecContext(ctx, productID, size); err != nil {
			return fmt.Errorf("insert size %q: %w", size, err)
		}
	}
	return nil
}

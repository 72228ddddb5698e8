package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
)

const productColumns = `id, order_id, name, description, price, stock_quantity, percentage_discount, created_at`

type ProductRepository struct {
	s *Store
}

// Save stores a standalone product. When OrderID is set the order must exist.
func (r *ProductRepository) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	var saved domain.Product
	err := r.s.inTx(ctx, "save product", func(tx *sql.Tx) error {
		lineNo := 0
		if p.OrderID.Valid {
			// Appended after the products the order was created with.
			err := tx.QueryRowContext(ctx,
				r.s.rebind(`SELECT COUNT(*) FROM products WHERE order_id = ?`), p.OrderID.UUID).Scan(&lineNo)
			if err != nil {
				return fail("save product", err)
			}
		}
		var err error
		saved, err = r.s.insertProduct(ctx, tx, p, lineNo)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	return saved, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Product, bool, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	p, err := scanProduct(r.s.db.QueryRowContext(ctx, r.s.rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, fail("find product", err)
	}
	return p, true, nil
}

func (r *ProductRepository) FindPage(ctx context.Context, page domain.Page) ([]domain.Product, int, error) {
	var total int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fail("count products", err)
	}

	q := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id LIMIT ? OFFSET ?`
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(q), page.Size, page.Offset())
	if err != nil {
		return nil, 0, fail("list products", err)
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, 0, fail("list products", err)
	}
	return products, total, nil
}

func (s *Store) insertProduct(ctx context.Context, q querier, p domain.Product, lineNo int) (domain.Product, error) {
	const insert = `
		INSERT INTO products
			(id, order_id, line_no, name, description, price, stock_quantity, percentage_discount, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	p.ID, p.CreatedAt = s.stamp(p.ID, p.CreatedAt)
	_, err := q.ExecContext(ctx, s.rebind(insert),
		p.ID,
		p.OrderID,
		lineNo,
		p.Name,
		p.Description,
		p.Price.String(),
		p.StockQuantity,
		p.PercentageDiscount,
		formatTime(p.CreatedAt),
	)
	if err != nil {
		return domain.Product{}, fail("save product", err)
	}
	return p, nil
}

// productsByOrder loads the products of the given orders in their
// submission order.
func (s *Store) productsByOrder(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.Product, error) {
	out := make(map[uuid.UUID][]domain.Product, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	marks, args := inClause(orderIDs)
	rows, err := q.QueryContext(ctx, s.rebind(
		`SELECT `+productColumns+` FROM products WHERE order_id IN (`+marks+`) ORDER BY line_no, created_at, id`), args...)
	if err != nil {
		return nil, fail("load products", err)
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, fail("load products", err)
	}
	for _, p := range products {
		out[p.OrderID.UUID] = append(out[p.OrderID.UUID], p)
	}
	return out, nil
}

func scanProduct(sc scanner) (domain.Product, error) {
	var (
		p         domain.Product
		createdAt string
	)
	err := sc.Scan(&p.ID, &p.OrderID, &p.Name, &p.Description, &p.Price,
		&p.StockQuantity, &p.PercentageDiscount, &createdAt)
	if err != nil {
		return domain.Product{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.CreatedAt = t
	return p, nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
)

const orderColumns = `id, customer_id, description, amount, created_at`

// OrderRepository persists an order together with its products in one
// transaction.
type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Save(ctx context.Context, o domain.Order) (domain.Order, error) {
	const insertOrder = `
		INSERT INTO orders (id, customer_id, description, amount, created_at)
		VALUES (?, ?, ?, ?, ?)`

	o.ID, o.CreatedAt = r.s.stamp(o.ID, o.CreatedAt)

	err := r.s.inTx(ctx, "save order", func(tx *sql.Tx) error {
		parents, err := r.s.customerSnapshots(ctx, tx, []uuid.UUID{o.CustomerID})
		if err != nil {
			return err
		}
		customer, ok := parents[o.CustomerID]
		if !ok {
			return missingParent("save order", customerMissing(o.CustomerID))
		}

		if _, err := tx.ExecContext(ctx, r.s.rebind(insertOrder),
			o.ID, o.CustomerID, o.Description, o.Amount.String(), formatTime(o.CreatedAt)); err != nil {
			return fail("save order", err)
		}

		products := make([]domain.Product, len(o.Products))
		for i, p := range o.Products {
			p.OrderID = uuid.NullUUID{UUID: o.ID, Valid: true}
			saved, err := r.s.insertProduct(ctx, tx, p, i)
			if err != nil {
				return err
			}
			products[i] = saved
		}

		o.Customer = customer
		o.Products = products
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Order, bool, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	o, err := scanOrder(r.s.db.QueryRowContext(ctx, r.s.rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, fail("find order", err)
	}

	orders := []domain.Order{o}
	if err := r.s.resolveOrders(ctx, r.s.db, orders); err != nil {
		return domain.Order{}, false, err
	}
	return orders[0], true, nil
}

func (r *OrderRepository) FindPage(ctx context.Context, page domain.Page) ([]domain.Order, int, error) {
	var total int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fail("count orders", err)
	}

	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at, id LIMIT ? OFFSET ?`
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(q), page.Size, page.Offset())
	if err != nil {
		return nil, 0, fail("list orders", err)
	}
	orders, err := collect(rows, scanOrder)
	if err != nil {
		return nil, 0, fail("list orders", err)
	}
	if err := r.s.resolveOrders(ctx, r.s.db, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// resolveOrders attaches the customer snapshot and the products of each order.
func (s *Store) resolveOrders(ctx context.Context, q querier, orders []domain.Order) error {
	orderIDs := make([]uuid.UUID, len(orders))
	customerIDs := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]bool, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
		if !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			customerIDs = append(customerIDs, o.CustomerID)
		}
	}

	customers, err := s.customerSnapshots(ctx, q, customerIDs)
	if err != nil {
		return err
	}
	products, err := s.productsByOrder(ctx, q, orderIDs)
	if err != nil {
		return err
	}
	for i := range orders {
		orders[i].Customer = customers[orders[i].CustomerID]
		orders[i].Products = orEmpty(products[orders[i].ID])
	}
	return nil
}

// ordersByCustomer loads the orders owned by the given customers, with their
// products and without the customer back-reference.
func (s *Store) ordersByCustomer(ctx context.Context, q querier, customerIDs []uuid.UUID) (map[uuid.UUID][]domain.Order, error) {
	out := make(map[uuid.UUID][]domain.Order, len(customerIDs))
	if len(customerIDs) == 0 {
		return out, nil
	}
	marks, args := inClause(customerIDs)
	rows, err := q.QueryContext(ctx, s.rebind(
		`SELECT `+orderColumns+` FROM orders WHERE customer_id IN (`+marks+`) ORDER BY created_at, id`), args...)
	if err != nil {
		return nil, fail("load orders", err)
	}
	orders, err := collect(rows, scanOrder)
	if err != nil {
		return nil, fail("load orders", err)
	}

	orderIDs := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	products, err := s.productsByOrder(ctx, q, orderIDs)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Products = orEmpty(products[o.ID])
		out[o.CustomerID] = append(out[o.CustomerID], o)
	}
	return out, nil
}

func scanOrder(sc scanner) (domain.Order, error) {
	var (
		o         domain.Order
		createdAt string
	)
	if err := sc.Scan(&o.ID, &o.CustomerID, &o.Description, &o.Amount, &createdAt); err != nil {
		return domain.Order{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.CreatedAt = t
	o.Products = []domain.Product{}
	return o, nil
}

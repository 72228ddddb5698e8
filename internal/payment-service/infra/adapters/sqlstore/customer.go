package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
)

const customerColumns = `id, name, email, phone, active, created_at`

// CustomerRepository persists customer rows. Orders are persisted through
// OrderRepository and assembled here on read.
type CustomerRepository struct {
	s *Store
}

func (r *CustomerRepository) Save(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	const q = `
		INSERT INTO customers (id, name, email, phone, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	c.ID, c.CreatedAt = r.s.stamp(c.ID, c.CreatedAt)
	_, err := r.s.db.ExecContext(ctx, r.s.rebind(q),
		c.ID, c.Name, c.Email, c.Phone, c.Active, formatTime(c.CreatedAt))
	if err != nil {
		return domain.Customer{}, fail("save customer", err)
	}
	c.Orders = []domain.Order{}
	return c, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Customer, bool, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`

	c, err := scanCustomer(r.s.db.QueryRowContext(ctx, r.s.rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, false, nil
	}
	if err != nil {
		return domain.Customer{}, false, fail("find customer", err)
	}

	orders, err := r.s.ordersByCustomer(ctx, r.s.db, []uuid.UUID{c.ID})
	if err != nil {
		return domain.Customer{}, false, err
	}
	c.Orders = orEmpty(orders[c.ID])
	return c, true, nil
}

func (r *CustomerRepository) FindPage(ctx context.Context, page domain.Page) ([]domain.Customer, int, error) {
	var total int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fail("count customers", err)
	}

	q := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at, id LIMIT ? OFFSET ?`
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(q), page.Size, page.Offset())
	if err != nil {
		return nil, 0, fail("list customers", err)
	}
	customers, err := collect(rows, scanCustomer)
	if err != nil {
		return nil, 0, fail("list customers", err)
	}

	ids := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	orders, err := r.s.ordersByCustomer(ctx, r.s.db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range customers {
		customers[i].Orders = orEmpty(orders[customers[i].ID])
	}
	return customers, total, nil
}

// customerSnapshots loads the scalar fields of the given customers. The
// snapshots carry no orders.
func (s *Store) customerSnapshots(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]*domain.Customer, error) {
	out := make(map[uuid.UUID]*domain.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	marks, args := inClause(ids)
	rows, err := q.QueryContext(ctx,
		s.rebind(`SELECT `+customerColumns+` FROM customers WHERE id IN (`+marks+`)`), args...)
	if err != nil {
		return nil, fail("load customers", err)
	}
	customers, err := collect(rows, scanCustomer)
	if err != nil {
		return nil, fail("load customers", err)
	}
	for _, c := range customers {
		out[c.ID] = c.Snapshot()
	}
	return out, nil
}

func scanCustomer(sc scanner) (domain.Customer, error) {
	var (
		c         domain.Customer
		createdAt string
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Active, &createdAt); err != nil {
		return domain.Customer{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.Customer{}, err
	}
	c.CreatedAt = t
	c.Orders = []domain.Order{}
	return c, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var errNoCustomer = errors.New("customer does not exist")

func customerMissing(id uuid.UUID) error {
	return fmt.Errorf("%w: %s", errNoCustomer, id)
}

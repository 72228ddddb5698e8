package memstore

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
)

type CustomerRepository struct {
	s *Store
}

// Save stores the customer row only; orders are saved through OrderRepository.
func (r *CustomerRepository) Save(_ context.Context, c domain.Customer) (domain.Customer, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID, c.CreatedAt = s.stamp(c.ID, c.CreatedAt)
	if _, dup := s.customers[c.ID]; dup {
		return domain.Customer{}, integrity("save customer", "customer %s already exists", c.ID)
	}
	c.Orders = nil
	s.customers[c.ID] = c

	c.Orders = []domain.Order{}
	return c, nil
}

func (r *CustomerRepository) FindByID(_ context.Context, id uuid.UUID) (domain.Customer, bool, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return domain.Customer{}, false, nil
	}
	return s.resolveCustomer(c), true, nil
}

func (r *CustomerRepository) FindPage(_ context.Context, page domain.Page) ([]domain.Customer, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		all = append(all, c)
	}
	slices.SortFunc(all, func(a, b domain.Customer) int {
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	items := pageOf(all, page)
	for i := range items {
		items[i] = s.resolveCustomer(items[i])
	}
	return items, len(all), nil
}

type OrderRepository struct {
	s *Store
}

// Save stores the order and its products atomically. Nothing is written when
// the customer is unknown or a product breaks a constraint.
func (r *OrderRepository) Save(_ context.Context, o domain.Order) (domain.Order, error) {
	const op = "save order"
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID, o.CreatedAt = s.stamp(o.ID, o.CreatedAt)
	if _, dup := s.orders[o.ID]; dup {
		return domain.Order{}, integrity(op, "order %s already exists", o.ID)
	}
	customer, ok := s.customers[o.CustomerID]
	if !ok {
		return domain.Order{}, integrity(op, "customer %s does not exist", o.CustomerID)
	}

	products := make([]domain.Product, len(o.Products))
	for i, p := range o.Products {
		p.ID, p.CreatedAt = s.stamp(p.ID, p.CreatedAt)
		p.OrderID = uuid.NullUUID{UUID: o.ID, Valid: true}
		if _, dup := s.products[p.ID]; dup {
			return domain.Order{}, integrity(op, "product %s already exists", p.ID)
		}
		if err := checkProduct(op, p); err != nil {
			return domain.Order{}, err
		}
		products[i] = p
	}

	row := o
	row.Customer, row.Products = nil, nil
	s.orders[o.ID] = row
	for i, p := range products {
		s.products[p.ID] = productRow{Product: p, lineNo: i}
	}

	o.Customer = customer.Snapshot()
	o.Products = products
	return o, nil
}

func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (domain.Order, bool, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false, nil
	}
	return s.resolveOrder(o, true), true, nil
}

func (r *OrderRepository) FindPage(_ context.Context, page domain.Page) ([]domain.Order, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		all = append(all, o)
	}
	slices.SortFunc(all, func(a, b domain.Order) int {
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	items := pageOf(all, page)
	for i := range items {
		items[i] = s.resolveOrder(items[i], true)
	}
	return items, len(all), nil
}

type ProductRepository struct {
	s *Store
}

// Save stores a standalone product, appended to its order when OrderID is set.
func (r *ProductRepository) Save(_ context.Context, p domain.Product) (domain.Product, error) {
	const op = "save product"
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID, p.CreatedAt = s.stamp(p.ID, p.CreatedAt)
	if _, dup := s.products[p.ID]; dup {
		return domain.Product{}, integrity(op, "product %s already exists", p.ID)
	}
	if err := checkProduct(op, p); err != nil {
		return domain.Product{}, err
	}

	lineNo := 0
	if p.OrderID.Valid {
		if _, ok := s.orders[p.OrderID.UUID]; !ok {
			return domain.Product{}, integrity(op, "order %s does not exist", p.OrderID.UUID)
		}
		lineNo = len(s.orderProducts(p.OrderID.UUID))
	}

	s.products[p.ID] = productRow{Product: p, lineNo: lineNo}
	return p, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (domain.Product, bool, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false, nil
	}
	return p.Product, true, nil
}

func (r *ProductRepository) FindPage(_ context.Context, page domain.Page) ([]domain.Product, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p.Product)
	}
	slices.SortFunc(all, func(a, b domain.Product) int {
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return pageOf(all, page), len(all), nil
}

// Package memstore keeps the entity graph in process memory.
//
// Rows are held in one map per entity and linked only by parent keys; the
// children of an entity are assembled on read. It backs the "memory" database
// driver and the HTTP tests.
package memstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
)

type Store struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]domain.Customer
	orders    map[uuid.UUID]domain.Order
	products  map[uuid.UUID]productRow

	now   func() time.Time
	newID func() uuid.UUID
}

// productRow remembers where a product sits inside its order.
type productRow struct {
	domain.Product
	lineNo int
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// SequentialIDs returns a generator yielding 00000000-0000-0000-0000-000000000001,
// ...0002 and so on. Safe for concurrent use.
func SequentialIDs() func() uuid.UUID {
	var n atomic.Uint64
	return func() uuid.UUID {
		var id uuid.UUID
		binary.BigEndian.PutUint64(id[8:], n.Add(1))
		return id
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		customers: make(map[uuid.UUID]domain.Customer),
		orders:    make(map[uuid.UUID]domain.Order),
		products:  make(map[uuid.UUID]productRow),
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Customers() *CustomerRepository { return &CustomerRepository{s: s} }
func (s *Store) Orders() *OrderRepository       { return &OrderRepository{s: s} }
func (s *Store) Products() *ProductRepository   { return &ProductRepository{s: s} }

// stamp must be called with the write lock held.
func (s *Store) stamp(id uuid.UUID, createdAt time.Time) (uuid.UUID, time.Time) {
	if id == uuid.Nil {
		id = s.newID()
	}
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	return id, createdAt.UTC().Round(0)
}

func integrity(op, format string, args ...any) error {
	return &domain.PersistenceError{Op: op, Reason: domain.ReasonIntegrity, Err: fmt.Errorf(format, args...)}
}

// checkProduct mirrors the column constraints of the SQL schema.
func checkProduct(op string, p domain.Product) error {
	if p.StockQuantity < 0 {
		return integrity(op, "product %s: stock quantity %d below zero", p.ID, p.StockQuantity)
	}
	if p.PercentageDiscount < domain.MinDiscount || p.PercentageDiscount > domain.MaxDiscount {
		return integrity(op, "product %s: discount %d out of range", p.ID, p.PercentageDiscount)
	}
	return nil
}

// byCreation orders rows by creation time then identifier, the same order
// the SQL store uses.
func byCreation(aAt, bAt time.Time, aID, bID uuid.UUID) int {
	if c := aAt.Compare(bAt); c != 0 {
		return c
	}
	return bytes.Compare(aID[:], bID[:])
}

func pageOf[T any](all []T, page domain.Page) []T {
	start := page.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := min(start+page.Size, len(all))
	return slices.Clone(all[start:end])
}

// The helpers below must be called with at least the read lock held.

func (s *Store) orderProducts(orderID uuid.UUID) []domain.Product {
	rows := make([]productRow, 0)
	for _, p := range s.products {
		if p.OrderID.Valid && p.OrderID.UUID == orderID {
			rows = append(rows, p)
		}
	}
	slices.SortFunc(rows, func(a, b productRow) int {
		if a.lineNo != b.lineNo {
			return a.lineNo - b.lineNo
		}
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	out := make([]domain.Product, len(rows))
	for i, r := range rows {
		out[i] = r.Product
	}
	return out
}

// resolveOrder attaches products and, when withCustomer is set, the parent
// snapshot.
func (s *Store) resolveOrder(o domain.Order, withCustomer bool) domain.Order {
	o.Products = s.orderProducts(o.ID)
	o.Customer = nil
	if withCustomer {
		if c, ok := s.customers[o.CustomerID]; ok {
			o.Customer = c.Snapshot()
		}
	}
	return o
}

func (s *Store) resolveCustomer(c domain.Customer) domain.Customer {
	owned := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.CustomerID == c.ID {
			owned = append(owned, o)
		}
	}
	slices.SortFunc(owned, func(a, b domain.Order) int {
		return byCreation(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	for i := range owned {
		owned[i] = s.resolveOrder(owned[i], false)
	}
	c.Orders = owned
	return c
}

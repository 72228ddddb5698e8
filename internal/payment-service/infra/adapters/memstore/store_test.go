package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/ports"
)

var (
	_ ports.CustomerRepository = (*CustomerRepository)(nil)
	_ ports.OrderRepository    = (*OrderRepository)(nil)
	_ ports.ProductRepository  = (*ProductRepository)(nil)
)

var frozen = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	return New(
		WithClock(func() time.Time { return frozen }),
		WithIDGenerator(SequentialIDs()),
	)
}

func TestSequentialIDs(t *testing.T) {
	next := SequentialIDs()

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", next().String())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", next().String())
}

func TestOrderSaveAssemblesGraph(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	c, err := s.Customers().Save(ctx, domain.Customer{Name: "Atlas", Active: true})
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", c.ID.String())
	assert.Equal(t, frozen, c.CreatedAt)

	o, err := s.Orders().Save(ctx, domain.Order{
		Amount:     decimal.RequireFromString("10"),
		CustomerID: c.ID,
		Products:   []domain.Product{{Name: "p1"}, {Name: "p2"}},
	})
	require.NoError(t, err)
	require.NotNil(t, o.Customer)
	assert.Equal(t, "Atlas", o.Customer.Name)
	assert.Empty(t, o.Customer.Orders)
	require.Len(t, o.Products, 2)
	assert.Equal(t, o.ID, o.Products[0].OrderID.UUID)

	got, ok, err := s.Orders().FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, o, got)

	owner, _, err := s.Customers().FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, owner.Orders, 1)
	assert.Nil(t, owner.Orders[0].Customer)
	assert.Equal(t, o.Products, owner.Orders[0].Products)
}

func TestOrderSaveUnknownCustomer(t *testing.T) {
	s := newTestStore()

	_, err := s.Orders().Save(context.Background(), domain.Order{CustomerID: uuid.New(), Products: []domain.Product{{Name: "x"}}})

	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.True(t, domain.IsIntegrityViolation(err))
	assert.Empty(t, s.orders)
	assert.Empty(t, s.products)
}

func TestOrderSaveIsAtomicOnBadProduct(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	c, err := s.Customers().Save(ctx, domain.Customer{Name: "c"})
	require.NoError(t, err)

	_, err = s.Orders().Save(ctx, domain.Order{
		CustomerID: c.ID,
		Products:   []domain.Product{{Name: "ok"}, {Name: "bad", StockQuantity: -1}},
	})

	assert.True(t, domain.IsIntegrityViolation(err))
	assert.Empty(t, s.orders)
	assert.Empty(t, s.products)
}

func TestProductSave(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.Products().Save(ctx, domain.Product{Name: "orphan", OrderID: uuid.NullUUID{UUID: uuid.New(), Valid: true}})
	assert.True(t, domain.IsIntegrityViolation(err))

	_, err = s.Products().Save(ctx, domain.Product{Name: "too generous", PercentageDiscount: 101})
	assert.True(t, domain.IsIntegrityViolation(err))

	c, err := s.Customers().Save(ctx, domain.Customer{})
	require.NoError(t, err)
	o, err := s.Orders().Save(ctx, domain.Order{CustomerID: c.ID, Products: []domain.Product{{Name: "a"}}})
	require.NoError(t, err)

	p, err := s.Products().Save(ctx, domain.Product{Name: "b", OrderID: uuid.NullUUID{UUID: o.ID, Valid: true}})
	require.NoError(t, err)

	got, _, err := s.Orders().FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 2)
	assert.Equal(t, p, got.Products[1])
}

func TestFindByIDAbsent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, ok, err := s.Customers().FindByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Orders().FindByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Products().FindByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFindPage(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	empty, total, err := s.Customers().FindPage(ctx, domain.NewPage(1, 20))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Zero(t, total)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := s.Customers().Save(ctx, domain.Customer{Name: name})
		require.NoError(t, err)
	}

	second, total, err := s.Customers().FindPage(ctx, domain.NewPage(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, second, 2)
	assert.Equal(t, "c", second[0].Name)
	assert.Equal(t, "d", second[1].Name)

	beyond, _, err := s.Customers().FindPage(ctx, domain.NewPage(9, 2))
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestConcurrentSaves(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, err := s.Customers().Save(ctx, domain.Customer{Name: "busy"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Orders().Save(ctx, domain.Order{CustomerID: c.ID, Products: []domain.Product{{Name: "p"}}})
			assert.NoError(t, err)
			_, _, err = s.Orders().FindPage(ctx, domain.NewPage(1, 10))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, total, err := s.Orders().FindPage(ctx, domain.NewPage(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 50, total)
}

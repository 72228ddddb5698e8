package mappers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
)

var createdAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleOrder() domain.Order {
	customerID := uuid.New()
	orderID := uuid.New()
	return domain.Order{
		ID:          orderID,
		Description: "book",
		Amount:      decimal.RequireFromString("19.99"),
		CreatedAt:   createdAt,
		CustomerID:  customerID,
		Customer: &domain.Customer{
			ID:        customerID,
			Name:      "Ada Lovelace",
			Email:     "ada@example.com",
			Phone:     "+44 20 7946 0000",
			CreatedAt: createdAt,
			Active:    true,
			Orders:    []domain.Order{},
		},
		Products: []domain.Product{{
			ID:                 uuid.New(),
			Name:               "Atlas",
			Price:              decimal.RequireFromString("19.99"),
			StockQuantity:      3,
			PercentageDiscount: 0,
			CreatedAt:          createdAt,
			OrderID:            uuid.NullUUID{UUID: orderID, Valid: true},
		}},
	}
}

func TestOrderToDTO(t *testing.T) {
	o := sampleOrder()

	got := OrderToDTO(o)

	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, "book", got.Description)
	assert.True(t, o.Amount.Equal(got.Amount))
	require.NotNil(t, got.Customer)
	assert.Equal(t, o.CustomerID, got.Customer.ID)
	assert.Equal(t, "ada@example.com", got.Customer.Email)
	assert.NotNil(t, got.Customer.Orders)
	assert.Empty(t, got.Customer.Orders, "embedded customer must not re-expand its orders")
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Atlas", got.Products[0].Name)
	assert.Nil(t, got.Products[0].Order, "products under an order omit the back-reference")
}

func TestOrderRoundTrip(t *testing.T) {
	o := sampleOrder()

	assert.Equal(t, o, OrderFromDTO(OrderToDTO(o)))
}

func TestOrderRoundTripWithCustomerKeyOnly(t *testing.T) {
	o := sampleOrder()
	o.Customer = nil

	d := OrderToDTO(o)
	require.NotNil(t, d.Customer)
	assert.Equal(t, o.CustomerID, d.Customer.ID)

	assert.Equal(t, o, OrderFromDTO(d))
}

func TestOrderDTORoundTripIsIdempotent(t *testing.T) {
	in := dto.OrderDTO{
		Description: "book",
		Amount:      decimal.RequireFromString("19.99"),
		Customer:    &dto.CustomerDTO{ID: uuid.New()},
		Products: []dto.ProductDTO{
			{Name: "Atlas", Price: decimal.RequireFromString("19.99"), StockQuantity: 3},
		},
	}

	once := OrderToDTO(OrderFromDTO(in))
	twice := OrderToDTO(OrderFromDTO(once))

	assert.Equal(t, once, twice)
}

func TestOrderFromDTOWithoutIdentifier(t *testing.T) {
	got := OrderFromDTO(dto.OrderDTO{
		Description: "no id yet",
		Products:    []dto.ProductDTO{{Name: "Atlas"}},
	})

	assert.Equal(t, uuid.Nil, got.ID)
	assert.Equal(t, uuid.Nil, got.CustomerID)
	assert.Nil(t, got.Customer)
	require.Len(t, got.Products, 1)
	assert.Equal(t, uuid.Nil, got.Products[0].ID)
	assert.False(t, got.Products[0].OrderID.Valid)
}

func TestOrderFromDTODropsNestedCustomerOrders(t *testing.T) {
	customerID := uuid.New()
	got := OrderFromDTO(dto.OrderDTO{
		Customer: &dto.CustomerDTO{
			ID:     customerID,
			Name:   "Ada",
			Orders: []dto.OrderDTO{{Description: "older order"}},
		},
	})

	require.NotNil(t, got.Customer)
	assert.Equal(t, customerID, got.CustomerID)
	assert.Empty(t, got.Customer.Orders)
}

func TestCustomerRoundTrip(t *testing.T) {
	o := sampleOrder()
	c := *o.Customer
	owned := o
	owned.Customer = nil
	c.Orders = []domain.Order{owned}

	d := CustomerToDTO(c)
	require.Len(t, d.Orders, 1)
	assert.Nil(t, d.Orders[0].Customer, "orders under a customer omit the back-reference")

	assert.Equal(t, c, CustomerFromDTO(d))
}

func TestCollectionsAreNeverNil(t *testing.T) {
	d := CustomerToDTO(domain.Customer{ID: uuid.New()})
	assert.NotNil(t, d.Orders)

	od := OrderToDTO(domain.Order{})
	assert.NotNil(t, od.Products)
	assert.Nil(t, od.Customer)

	c := CustomerFromDTO(dto.CustomerDTO{})
	assert.NotNil(t, c.Orders)

	assert.NotNil(t, CustomersToDTOs(nil))
	assert.NotNil(t, ProductsFromDTOs(nil))
}

func TestProductRoundTrip(t *testing.T) {
	t.Run("assigned", func(t *testing.T) {
		p := sampleOrder().Products[0]

		d := ProductToDTO(p)
		require.NotNil(t, d.Order)
		assert.Equal(t, p.OrderID.UUID, d.Order.ID)
		assert.Empty(t, d.Order.Products, "order stub must not re-expand its products")

		assert.Equal(t, p, ProductFromDTO(d))
	})

	t.Run("unassigned", func(t *testing.T) {
		p := domain.Product{ID: uuid.New(), Name: "Globe", Price: decimal.NewFromInt(5)}

		d := ProductToDTO(p)
		assert.Nil(t, d.Order)
		assert.Equal(t, p, ProductFromDTO(d))
	})
}

func TestBatchVariantsPreserveOrderAndLength(t *testing.T) {
	a, b, c := sampleOrder(), sampleOrder(), sampleOrder()
	orders := []domain.Order{a, b, c}

	dtos := OrdersToDTOs(orders)
	require.Len(t, dtos, 3)
	for i := range orders {
		assert.Equal(t, orders[i].ID, dtos[i].ID)
	}
	assert.Equal(t, orders, OrdersFromDTOs(dtos))

	customers := []domain.Customer{*a.Customer, *b.Customer}
	assert.Equal(t, customers, CustomersFromDTOs(CustomersToDTOs(customers)))

	products := append(a.Products, b.Products...)
	assert.Equal(t, products, ProductsFromDTOs(ProductsToDTOs(products)))
}

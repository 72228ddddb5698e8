package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name         string
		number, size int
		want         Page
	}{
		{"defaults", 0, 0, Page{Number: 1, Size: 20}},
		{"passthrough", 3, 50, Page{Number: 3, Size: 50}},
		{"size clamped", 1, 500, Page{Number: 1, Size: 100}},
		{"exactly max", 2, 100, Page{Number: 2, Size: 100}},
		{"negative", -4, -1, Page{Number: 1, Size: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPage(tt.number, tt.size))
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, NewPage(1, 20).Offset())
	assert.Equal(t, 40, NewPage(3, 20).Offset())
}

func TestValidationErrorMatchesKind(t *testing.T) {
	err := fmt.Errorf("create order: %w", InvalidOrder(Violation{Field: "customer", Reason: "required"}))

	assert.True(t, errors.Is(err, ErrInvalidOrder))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "customer: required")

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 1)
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("FOREIGN KEY constraint failed")
	err := fmt.Errorf("create order: %w", &PersistenceError{Op: "save order", Reason: ReasonIntegrity, Err: cause})

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsIntegrityViolation(err))
	assert.False(t, IsIntegrityViolation(&PersistenceError{Op: "find", Reason: ReasonUnavailable, Err: cause}))
	assert.False(t, IsIntegrityViolation(cause))
}

func TestCustomerSnapshotDropsOrders(t *testing.T) {
	c := Customer{
		ID:     uuid.New(),
		Name:   "Ada",
		Active: true,
		Orders: []Order{{ID: uuid.New()}},
	}

	snap := c.Snapshot()

	require.NotNil(t, snap)
	assert.Equal(t, c.ID, snap.ID)
	assert.Equal(t, "Ada", snap.Name)
	assert.True(t, snap.Active)
	assert.NotNil(t, snap.Orders)
	assert.Empty(t, snap.Orders)
}

func TestProductDiscountedPrice(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("20.00"), PercentageDiscount: 25}
	assert.True(t, decimal.RequireFromString("15").Equal(p.DiscountedPrice()))

	p.PercentageDiscount = 0
	assert.True(t, p.Price.Equal(p.DiscountedPrice()))
}

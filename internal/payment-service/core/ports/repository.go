package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
)

// Repository is the persistence gateway for one entity type.
//
// Save assigns the identifier and creation time when they are absent and
// returns the entity as stored. Storage failures come back as
// *domain.PersistenceError. Absence is never an error: FindByID reports it
// with false and FindPage with an empty slice.
type Repository[T any, ID comparable] interface {
	Save(ctx context.Context, entity T) (T, error)
	FindByID(ctx context.Context, id ID) (T, bool, error)
	// FindPage returns one page in a stable order plus the total row count.
	FindPage(ctx context.Context, page domain.Page) ([]T, int, error)
}

type (
	CustomerRepository = Repository[domain.Customer, uuid.UUID]
	OrderRepository    = Repository[domain.Order, uuid.UUID]
	ProductRepository  = Repository[domain.Product, uuid.UUID]
)

package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a delete targets an ID the ledger never held
// or already released.
var ErrNotFound = errors.New("ledger: transaction not found")

// Repository is the persistence collaborator for admitted records. The ledger
// is an insertion-ordered sequence; implementations must return records in the
// order they were added. Date ordering is a presentation concern.
type Repository interface {
	// Add appends a validated transaction. IDs are unique within the ledger;
	// adding a duplicate ID is an error.
	Add(ctx context.Context, tx Transaction) error
	// List returns all transactions in insertion order.
	List(ctx context.Context) ([]Transaction, error)
	// Delete removes one transaction by ID. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

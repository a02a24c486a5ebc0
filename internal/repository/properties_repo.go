package repository

import (
	"context"
	"errors"

	"github.com/absarsolarch/ab-3/internal/domain"
)

// ErrNotFound is returned when an operation targets an id that does not exist.
var ErrNotFound = errors.New("property not found")

// ErrUnavailable is returned by the selector when every connection attempt to
// both backend kinds has been exhausted. Callers must treat the data tier as
// down; no operation retries the connection mid-request.
var ErrUnavailable = errors.New("backend unavailable")

// PropertiesRepository 物业Repository接口
// Both backends present identical external behavior; callers never branch on
// backend kind.
type PropertiesRepository interface {
	// Create assigns the next id from the backend's own counter, stores the
	// record and returns the id. Id assignment is atomic: concurrent creates
	// never collide.
	Create(ctx context.Context, p *domain.Property) (int64, error)
	// UpdateStatus rewrites only the status field of an existing record,
	// preserving all others verbatim. Returns ErrNotFound for an absent id;
	// it never fabricates a record.
	UpdateStatus(ctx context.Context, id int64, status string) error
	// Delete removes a record. Deleting a non-existent id is not an error.
	Delete(ctx context.Context, id int64) error
	// Get returns a record by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*domain.Property, error)
	// List returns every record ordered by created_at descending.
	List(ctx context.Context) ([]domain.Property, error)
	// Clear deletes all records and resets the id counter to zero.
	Clear(ctx context.Context) error
}

package website

import "context"

// Repository defines the interface for website persistence
type Repository interface {
	// Save persists a new website and assigns its ID
	Save(ctx context.Context, w *Website) error

	// Update persists mutated configuration or derived state
	Update(ctx context.Context, w *Website) error

	// FindByID retrieves a website by its ID
	FindByID(ctx context.Context, id int64) (*Website, error)

	// FindByUser retrieves all websites owned by a user
	FindByUser(ctx context.Context, userID int64) ([]*Website, error)

	// FindAll retrieves every website regardless of owner
	FindAll(ctx context.Context) ([]*Website, error)

	// FindActive retrieves every active website, for scheduling
	FindActive(ctx context.Context) ([]*Website, error)

	// Delete removes a website and cascades to its checks, alerts and findings
	Delete(ctx context.Context, id int64) error

	// Exists reports whether the website row is still present. The pipeline
	// re-checks this before committing run results for a possibly-deleted site.
	Exists(ctx context.Context, id int64) (bool, error)
}

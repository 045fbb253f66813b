package defense

import "context"

// Repository defines the interface for defense action persistence
type Repository interface {
	// Save persists an action and assigns its ID
	Save(ctx context.Context, a *Action) error

	// Update persists a state transition
	Update(ctx context.Context, a *Action) error

	// FindByID retrieves an action by its ID
	FindByID(ctx context.Context, id int64) (*Action, error)

	// FindByWebsite retrieves actions for a website, newest first
	FindByWebsite(ctx context.Context, websiteID int64) ([]*Action, error)
}

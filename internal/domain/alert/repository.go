package alert

import (
	"context"
	"time"
)

// Repository defines the interface for alert persistence
type Repository interface {
	// Save persists an alert and assigns its ID
	Save(ctx context.Context, a *Alert) error

	// Update persists read-state or delivery-state transitions
	Update(ctx context.Context, a *Alert) error

	// FindByID retrieves an alert by its ID
	FindByID(ctx context.Context, id int64) (*Alert, error)

	// FindByWebsite retrieves alerts for a website, newest first, up to limit
	// (limit <= 0 means no limit)
	FindByWebsite(ctx context.Context, websiteID int64, limit int) ([]*Alert, error)

	// FindRecent retrieves alerts across all websites created since the cutoff
	FindRecent(ctx context.Context, since time.Time, limit int) ([]*Alert, error)

	// FindOpenDuplicate looks up an unread alert for the same
	// (website, type, dedup key), used for duplicate suppression
	FindOpenDuplicate(ctx context.Context, websiteID int64, alertType Type, dedupKey string) (*Alert, error)

	// FindUnsent retrieves alerts for a website whose email was never
	// delivered, oldest first
	FindUnsent(ctx context.Context, websiteID int64) ([]*Alert, error)

	// UnreadCount counts unread alerts for a user's websites
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

package check

import "context"

// Repository defines the interface for monitoring check persistence
type Repository interface {
	// Save persists a check record and assigns its ID
	Save(ctx context.Context, c *MonitoringCheck) error

	// FindByID retrieves a check by its ID
	FindByID(ctx context.Context, id int64) (*MonitoringCheck, error)

	// FindByWebsite retrieves checks for a website, newest first, up to limit
	// (limit <= 0 means no limit)
	FindByWebsite(ctx context.Context, websiteID int64, limit int) ([]*MonitoringCheck, error)

	// Latest retrieves the most recent check for a website, or nil
	Latest(ctx context.Context, websiteID int64) (*MonitoringCheck, error)

	// CountRecentFailures counts consecutive most-recent checks whose HTTP
	// status was a 5xx, used to confirm downtime
	CountRecentFailures(ctx context.Context, websiteID int64) (int, error)
}

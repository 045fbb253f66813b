// Package alerts provides the application-level alert operations.
package alerts

import (
	"context"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
)

type Service struct {
	alerts alert.Repository
}

func NewService(alerts alert.Repository) *Service {
	return &Service{alerts: alerts}
}

// ListByWebsite returns a website's alerts, newest first.
func (s *Service) ListByWebsite(ctx context.Context, websiteID int64, limit int) ([]*alert.Alert, error) {
	return s.alerts.FindByWebsite(ctx, websiteID, limit)
}

// Recent returns alerts across all websites created since the cutoff.
func (s *Service) Recent(ctx context.Context, since time.Time, limit int) ([]*alert.Alert, error) {
	return s.alerts.FindRecent(ctx, since, limit)
}

// MarkRead flips the read flag; reading an alert also releases its dedup
// slot so a recurring condition can raise a fresh alert.
func (s *Service) MarkRead(ctx context.Context, id int64) (*alert.Alert, error) {
	a, err := s.alerts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.MarkRead()
	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UnreadCount counts unread alerts for the user's websites.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.alerts.UnreadCount(ctx, userID)
}

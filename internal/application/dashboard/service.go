// Package dashboard computes the aggregate overview numbers.
package dashboard

import (
	"context"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
)

// Stats is the dashboard summary for one user.
type Stats struct {
	TotalWebsites   int     `json:"total_websites"`
	ActiveWebsites  int     `json:"active_websites"`
	HealthySites    int     `json:"healthy_sites"`
	WarningSites    int     `json:"warning_sites"`
	CriticalSites   int     `json:"critical_sites"`
	AverageScore    float64 `json:"average_score"`
	UnreadAlerts    int     `json:"unread_alerts"`
	AlertsLast24h   int     `json:"alerts_last_24h"`
	CriticalLast24h int     `json:"critical_last_24h"`
}

type Service struct {
	websites website.Repository
	alerts   alert.Repository
	now      func() time.Time
}

func NewService(websites website.Repository, alerts alert.Repository) *Service {
	return &Service{
		websites: websites,
		alerts:   alerts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Stats aggregates the user's monitoring state. userID 0 spans all users.
func (s *Service) Stats(ctx context.Context, userID int64) (*Stats, error) {
	var (
		sites []*website.Website
		err   error
	)
	if userID > 0 {
		sites, err = s.websites.FindByUser(ctx, userID)
	} else {
		sites, err = s.websites.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalWebsites: len(sites)}
	scoreSum := 0
	owned := make(map[int64]bool, len(sites))
	for _, w := range sites {
		owned[w.ID()] = true
		if w.Active() {
			stats.ActiveWebsites++
		}
		switch w.Status() {
		case website.StatusHealthy:
			stats.HealthySites++
		case website.StatusWarning:
			stats.WarningSites++
		case website.StatusCritical:
			stats.CriticalSites++
		}
		scoreSum += w.SecurityScore()
	}
	if len(sites) > 0 {
		stats.AverageScore = float64(scoreSum) / float64(len(sites))
	}

	if stats.UnreadAlerts, err = s.alerts.UnreadCount(ctx, userID); err != nil {
		return nil, err
	}

	recent, err := s.alerts.FindRecent(ctx, s.now().Add(-24*time.Hour), 0)
	if err != nil {
		return nil, err
	}
	for _, a := range recent {
		if !owned[a.WebsiteID()] {
			continue
		}
		stats.AlertsLast24h++
		if a.Severity() == alert.SeverityCritical {
			stats.CriticalLast24h++
		}
	}
	return stats, nil
}

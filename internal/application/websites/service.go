// Package websites provides the application-level website operations shared
// by the HTTP API and the CLI.
package websites

import (
	"context"
	"fmt"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
)

// ManualChecker runs an on-demand check, refusing duplicates for a site
// already in flight.
type ManualChecker interface {
	CheckNow(ctx context.Context, websiteID int64) (*check.MonitoringCheck, error)
}

// Service provides website CRUD plus manual check dispatch.
type Service struct {
	websites website.Repository
	checks   check.Repository
	checker  ManualChecker
}

func NewService(websites website.Repository, checks check.Repository, checker ManualChecker) *Service {
	return &Service{websites: websites, checks: checks, checker: checker}
}

// Create registers a new website for monitoring.
func (s *Service) Create(ctx context.Context, userID int64, url, name, notifyEmail string, intervalMinutes int) (*website.Website, error) {
	w, err := website.New(userID, url, name, notifyEmail, intervalMinutes)
	if err != nil {
		return nil, err
	}
	if err := s.websites.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("save website: %w", err)
	}
	return w, nil
}

// Get retrieves one website.
func (s *Service) Get(ctx context.Context, id int64) (*website.Website, error) {
	return s.websites.FindByID(ctx, id)
}

// List retrieves a user's websites; userID 0 lists everything.
func (s *Service) List(ctx context.Context, userID int64) ([]*website.Website, error) {
	if userID > 0 {
		return s.websites.FindByUser(ctx, userID)
	}
	return s.websites.FindAll(ctx)
}

// Update applies configuration changes to a website.
func (s *Service) Update(ctx context.Context, id int64, name, notifyEmail string, intervalMinutes int, active bool) (*website.Website, error) {
	w, err := s.websites.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.UpdateConfig(name, notifyEmail, intervalMinutes, active); err != nil {
		return nil, err
	}
	if err := s.websites.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update website: %w", err)
	}
	return w, nil
}

// Delete removes a website and all dependent records.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.websites.Delete(ctx, id)
}

// CheckNow triggers an immediate manual check.
func (s *Service) CheckNow(ctx context.Context, id int64) (*check.MonitoringCheck, error) {
	return s.checker.CheckNow(ctx, id)
}

// Checks lists a website's check history, newest first.
func (s *Service) Checks(ctx context.Context, websiteID int64, limit int) ([]*check.MonitoringCheck, error) {
	if _, err := s.websites.FindByID(ctx, websiteID); err != nil {
		return nil, err
	}
	return s.checks.FindByWebsite(ctx, websiteID, limit)
}

// LatestCheck returns a website's most recent check, or nil.
func (s *Service) LatestCheck(ctx context.Context, websiteID int64) (*check.MonitoringCheck, error) {
	if _, err := s.websites.FindByID(ctx, websiteID); err != nil {
		return nil, err
	}
	return s.checks.Latest(ctx, websiteID)
}

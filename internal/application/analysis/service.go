// Package analysis assembles the full advanced-analysis view of a website:
// every finding kind plus the latest benchmark, in one read.
package analysis

import (
	"context"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
)

// Report is the aggregated analysis state of one website.
type Report struct {
	Website          *website.Website
	Vulnerabilities  []*finding.CodeVulnerability
	MaliciousLinks   []*finding.MaliciousLink
	Fingerprints     []*finding.BehaviorFingerprint
	Predictions      []*finding.AttackPrediction
	AttackerPatterns []*finding.AttackerPattern
	FileChanges      []*finding.FileChange
	PhishingClones   []*finding.PhishingClone
	Visitors         []*finding.VisitorAnalysis
	ExternalServices []*finding.ExternalService
	Benchmark        *finding.SecurityBenchmark
}

type Service struct {
	websites website.Repository
	findings finding.Repository
	now      func() time.Time
}

func NewService(websites website.Repository, findings finding.Repository) *Service {
	return &Service{
		websites: websites,
		findings: findings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FullReport reads every finding kind for one website. Expired predictions
// are excluded at query time.
func (s *Service) FullReport(ctx context.Context, websiteID int64) (*Report, error) {
	w, err := s.websites.FindByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	r := &Report{Website: w}
	if r.Vulnerabilities, err = s.findings.FindVulnerabilities(ctx, websiteID, false); err != nil {
		return nil, err
	}
	if r.MaliciousLinks, err = s.findings.FindMaliciousLinks(ctx, websiteID, true); err != nil {
		return nil, err
	}
	if r.Fingerprints, err = s.findings.FindFingerprints(ctx, websiteID); err != nil {
		return nil, err
	}
	if r.Predictions, err = s.findings.FindActivePredictions(ctx, websiteID, s.now()); err != nil {
		return nil, err
	}
	if r.AttackerPatterns, err = s.findings.FindAttackerPatterns(ctx, websiteID); err != nil {
		return nil, err
	}
	if r.FileChanges, err = s.findings.FindFileChanges(ctx, websiteID, 50); err != nil {
		return nil, err
	}
	if r.PhishingClones, err = s.findings.FindPhishingClones(ctx, websiteID); err != nil {
		return nil, err
	}
	if r.Visitors, err = s.findings.FindVisitorAnalyses(ctx, websiteID, 50); err != nil {
		return nil, err
	}
	if r.ExternalServices, err = s.findings.FindExternalServices(ctx, websiteID); err != nil {
		return nil, err
	}
	if r.Benchmark, err = s.findings.LatestBenchmark(ctx, websiteID); err != nil {
		return nil, err
	}
	return r, nil
}

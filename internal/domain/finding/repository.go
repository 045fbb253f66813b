package finding

import (
	"context"
	"time"
)

// Repository persists analyzer findings. One interface covers all finding
// kinds; implementations back it with one table per kind.
type Repository interface {
	SaveVulnerability(ctx context.Context, v *CodeVulnerability) error
	FindVulnerabilities(ctx context.Context, websiteID int64, includeFixed bool) ([]*CodeVulnerability, error)
	MarkVulnerabilityFixed(ctx context.Context, id int64, at time.Time) error

	SaveMaliciousLink(ctx context.Context, l *MaliciousLink) error
	FindMaliciousLinks(ctx context.Context, websiteID int64, activeOnly bool) ([]*MaliciousLink, error)

	// SaveFingerprint inserts or updates the per-(website, type) baseline row.
	SaveFingerprint(ctx context.Context, f *BehaviorFingerprint) error
	FindFingerprint(ctx context.Context, websiteID int64, fpType FingerprintType) (*BehaviorFingerprint, error)
	FindFingerprints(ctx context.Context, websiteID int64) ([]*BehaviorFingerprint, error)

	SavePrediction(ctx context.Context, p *AttackPrediction) error
	// FindActivePredictions excludes predictions whose ExpiresAt has passed.
	FindActivePredictions(ctx context.Context, websiteID int64, now time.Time) ([]*AttackPrediction, error)

	// UpsertAttackerPattern inserts a new pattern or, when the pattern hash
	// already exists for the website, increments AttackCount and refreshes
	// LastSeen atomically.
	UpsertAttackerPattern(ctx context.Context, p *AttackerPattern) error
	FindAttackerPatterns(ctx context.Context, websiteID int64) ([]*AttackerPattern, error)

	SaveFileChange(ctx context.Context, fc *FileChange) error
	FindFileChanges(ctx context.Context, websiteID int64, limit int) ([]*FileChange, error)

	SavePhishingClone(ctx context.Context, pc *PhishingClone) error
	FindPhishingClones(ctx context.Context, websiteID int64) ([]*PhishingClone, error)

	SaveVisitorAnalysis(ctx context.Context, va *VisitorAnalysis) error
	FindVisitorAnalyses(ctx context.Context, websiteID int64, limit int) ([]*VisitorAnalysis, error)

	SaveExternalService(ctx context.Context, es *ExternalService) error
	FindExternalServices(ctx context.Context, websiteID int64) ([]*ExternalService, error)

	SaveBenchmark(ctx context.Context, b *SecurityBenchmark) error
	LatestBenchmark(ctx context.Context, websiteID int64) (*SecurityBenchmark, error)
}

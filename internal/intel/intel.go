// Package intel defines the contracts for the external collaborators the
// analyzer suite consumes: reputation, trend, clone-detection and benchmark
// feeds, the opaque AI analysis service, and the mitigation executor. All of
// them may be slow or unreliable; callers bound them with timeouts and treat
// failures as a degraded (not failed) run.
package intel

import (
	"context"
	"fmt"
	"strings"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
)

// LinkVerdict is a reputation lookup result for one URL.
type LinkVerdict struct {
	Malicious  bool
	ThreatType finding.ThreatType
}

// ReputationService looks up URL reputation signals.
type ReputationService interface {
	Lookup(ctx context.Context, url string) (LinkVerdict, error)
}

// AttackTrend is one entry of aggregate external trend data.
type AttackTrend struct {
	AttackType   string   // e.g. "sql_injection", "credential_stuffing"
	Prevalence   int      // 0-100 share of observed activity
	TargetedTech []string // technology names this trend targets
	Timeframe    string   // human readable, e.g. "72h"
}

// TrendFeed supplies global attack trend aggregates.
type TrendFeed interface {
	CurrentTrends(ctx context.Context) ([]AttackTrend, error)
}

// CloneCandidate is a possible imitation of a monitored site.
type CloneCandidate struct {
	URL         string
	Title       string
	ContentHash string
}

// CloneFeed returns candidate clone sites for a registrable domain.
type CloneFeed interface {
	Candidates(ctx context.Context, domain string) ([]CloneCandidate, error)
}

// BenchmarkFeed supplies industry aggregate posture data. The percentile is
// computed by the feed, not locally.
type BenchmarkFeed interface {
	IndustryStats(ctx context.Context, score int) (average, percentile int, err error)
}

// SiteContent is the input contract of the AI analysis service.
type SiteContent struct {
	URL          string
	Title        string
	BodySnippet  string
	Technologies []string
	HeaderLines  []string
}

// AIIssueKind is the closed set of issue kinds the AI service may report.
// Anything else is rejected at the boundary.
type AIIssueKind string

const (
	AIIssueInjection AIIssueKind = "injection"
	AIIssueExposure  AIIssueKind = "exposure"
	AIIssueMisconfig AIIssueKind = "misconfiguration"
	AIIssueOutdated  AIIssueKind = "outdated_component"
	AIIssueOther     AIIssueKind = "other"
)

// AIIssue is one validated issue from the AI analysis service.
type AIIssue struct {
	Kind        AIIssueKind `json:"kind"`
	Severity    string      `json:"severity"`
	Description string      `json:"description"`
	Location    string      `json:"location,omitempty"`
}

// AIReport is the validated output of the AI analysis service.
type AIReport struct {
	Summary     string    `json:"summary"`
	OverallRisk string    `json:"overall_risk"` // low|medium|high|critical
	Issues      []AIIssue `json:"issues"`
}

// Validate rejects malformed reports at the collaborator boundary so no
// unvalidated dynamic payload crosses into the pipeline.
func (r *AIReport) Validate() error {
	switch r.OverallRisk {
	case "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("ai report: invalid overall_risk %q", r.OverallRisk)
	}
	for i := range r.Issues {
		issue := &r.Issues[i]
		switch issue.Kind {
		case AIIssueInjection, AIIssueExposure, AIIssueMisconfig, AIIssueOutdated, AIIssueOther:
		default:
			return fmt.Errorf("ai report: invalid issue kind %q", issue.Kind)
		}
		switch issue.Severity {
		case "low", "medium", "high", "critical":
		default:
			return fmt.Errorf("ai report: invalid issue severity %q", issue.Severity)
		}
		if strings.TrimSpace(issue.Description) == "" {
			return fmt.Errorf("ai report: issue %d has no description", i)
		}
	}
	return nil
}

// AIAnalyzer is the opaque natural-language analysis engine.
type AIAnalyzer interface {
	Analyze(ctx context.Context, content SiteContent) (*AIReport, error)
}

// Mitigation describes one defense action to execute.
type Mitigation struct {
	ActionType    string
	TargetDetails string
	WebsiteURL    string
}

// Mitigator executes defense actions against an external mitigation system.
type Mitigator interface {
	Execute(ctx context.Context, m Mitigation) error
}

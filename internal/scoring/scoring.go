// Package scoring turns a merged finding set into a security score and a
// website status. The resolver is pure: the same findings always produce the
// same outcome, regardless of prior state.
package scoring

import (
	"github.com/abodks10-ai/Pred-Guard/internal/analyzer"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// Severity penalties subtracted from a perfect score.
const (
	penaltyCritical = 25
	penaltyHigh     = 15
	penaltyMedium   = 8
	penaltyLow      = 3
)

// High-severity count at which the site is considered critical even without
// a single critical finding.
const highCountCriticalFloor = 3

// Outcome is the resolved result of one run.
type Outcome struct {
	Score  int // 0-100
	Status website.Status
}

// Resolver maps findings to an outcome. DeviationThreshold guards the
// warning path for behavioral anomalies.
type Resolver struct {
	DeviationThreshold float64
}

func NewResolver(deviationThreshold float64) *Resolver {
	if deviationThreshold <= 0 {
		deviationThreshold = constants.DefaultDeviationThreshold
	}
	return &Resolver{DeviationThreshold: deviationThreshold}
}

// Resolve computes the score and status for one finding set. Every finding
// kind is weighed by its own severity; kinds without an explicit severity
// field map to the severity the alert layer assigns them.
func (r *Resolver) Resolve(f *analyzer.Findings) Outcome {
	if f == nil {
		return Outcome{Score: 100, Status: website.StatusHealthy}
	}

	criticals, highs, score := 0, 0, 100
	tally := func(severity string) {
		switch severity {
		case finding.SeverityCritical:
			criticals++
			score -= penaltyCritical
		case finding.SeverityHigh:
			highs++
			score -= penaltyHigh
		case finding.SeverityMedium:
			score -= penaltyMedium
		case finding.SeverityLow:
			score -= penaltyLow
		}
	}

	for _, v := range f.Vulnerabilities {
		tally(v.Severity)
	}
	// A confirmed malicious link is a high-severity weakness regardless of the
	// threat type behind it.
	for range f.MaliciousLinks {
		tally(finding.SeverityHigh)
	}
	for _, c := range f.Clones {
		if c.SimilarityScore >= constants.CloneCriticalSimilarity {
			tally(finding.SeverityCritical)
		} else {
			tally(finding.SeverityHigh)
		}
	}
	for _, p := range f.Predictions {
		tally(p.ThreatLevel)
	}
	for _, ap := range f.AttackerPatterns {
		tally(ap.ThreatLevel)
	}
	for _, fp := range f.Fingerprints {
		if fp.Anomalous {
			tally(finding.SeverityMedium)
		}
	}
	for _, fc := range f.FileChanges {
		if fc.Suspicious {
			tally(finding.SeverityHigh)
		} else {
			tally(finding.SeverityLow)
		}
	}
	if score < 0 {
		score = 0
	}

	status := website.StatusHealthy
	switch {
	case criticals > 0 || highs >= highCountCriticalFloor:
		status = website.StatusCritical
	case highs > 0 || f.MaxDeviation() > r.DeviationThreshold:
		status = website.StatusWarning
	}

	return Outcome{Score: score, Status: status}
}

package analyzer

import (
	"context"
	"fmt"
	"math"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// BehaviorComparator computes numeric pattern vectors from the current
// probe/extraction shape, compares them against stored baselines, and always
// smooths the baseline toward the observation so genuine behavior shifts
// self-correct over time. It also detects content changes between checks.
type BehaviorComparator struct {
	// Alpha is the EWMA weight of the current observation.
	Alpha float64
	// Threshold is the deviation score above which a pattern is anomalous.
	Threshold float64
}

func NewBehaviorComparator(alpha, threshold float64) *BehaviorComparator {
	if alpha <= 0 || alpha > 1 {
		alpha = constants.DefaultSmoothingAlpha
	}
	if threshold <= 0 {
		threshold = constants.DefaultDeviationThreshold
	}
	return &BehaviorComparator{Alpha: alpha, Threshold: threshold}
}

func (b *BehaviorComparator) Name() string { return "behavior" }

func (b *BehaviorComparator) Analyze(_ context.Context, in Input) (*Findings, error) {
	out := &Findings{}
	if in.Probe == nil {
		return out, nil
	}
	websiteID := int64(0)
	if in.History != nil && in.History.Website != nil {
		websiteID = in.History.Website.ID()
	}

	patterns := map[finding.FingerprintType][]float64{
		finding.FingerprintTraffic: {
			float64(in.Probe.ResponseTimeMs),
			float64(in.Probe.BodySize),
		},
	}
	if in.Extraction != nil {
		patterns[finding.FingerprintRequest] = []float64{
			float64(len(in.Extraction.Links)),
			float64(len(in.Extraction.Scripts)),
			float64(len(in.Extraction.Iframes)),
			float64(in.Extraction.FormCount),
		}
		patterns[finding.FingerprintFile] = []float64{
			float64(in.Probe.BodySize),
			float64(len(in.Extraction.FileRefs)),
		}
	}

	for fpType, current := range patterns {
		var prev *finding.BehaviorFingerprint
		if in.History != nil {
			prev = in.History.Fingerprints[fpType]
		}

		fp := &finding.BehaviorFingerprint{
			WebsiteID:       websiteID,
			FingerprintType: fpType,
			CurrentPattern:  current,
			LastUpdated:     in.Now,
		}

		if prev == nil || len(prev.Baseline) != len(current) {
			// First observation seeds the baseline; nothing to deviate from.
			fp.Baseline = append([]float64(nil), current...)
			fp.DeviationScore = 0
			fp.CreatedAt = in.Now
		} else {
			fp.ID = prev.ID
			fp.CreatedAt = prev.CreatedAt
			fp.DeviationScore = Deviation(prev.Baseline, current)
			fp.Anomalous = fp.DeviationScore > b.Threshold
			fp.Baseline = Smooth(prev.Baseline, current, b.Alpha)
		}

		out.Fingerprints = append(out.Fingerprints, fp)
	}

	// Content change detection against the previous check's hash.
	if in.History != nil && len(in.History.RecentChecks) > 0 {
		last := in.History.RecentChecks[0]
		if last.ContentHash() != "" && in.Probe.BodyHash != "" && last.ContentHash() != in.Probe.BodyHash {
			fc := &finding.FileChange{
				WebsiteID:    websiteID,
				FilePath:     in.Probe.URL,
				ChangeType:   finding.ChangeModified,
				PreviousHash: last.ContentHash(),
				CurrentHash:  in.Probe.BodyHash,
				DetectedAt:   in.Now,
			}
			// A content change that coincides with an anomalous request shape
			// is suspicious, not routine.
			for _, fp := range out.Fingerprints {
				if fp.FingerprintType == finding.FingerprintRequest && fp.Anomalous {
					fc.ChangeType = finding.ChangeSuspicious
					fc.Suspicious = true
					fc.SuspicionReason = fmt.Sprintf("request-shape deviation %.0f alongside content change", fp.DeviationScore)
				}
			}
			out.FileChanges = append(out.FileChanges, fc)
		}
	}

	return out, nil
}

// Smooth returns the exponentially weighted baseline:
// new = alpha*current + (1-alpha)*old, component-wise. The result always lies
// between old and current, so one anomalous check can never replace a
// baseline outright.
func Smooth(old, current []float64, alpha float64) []float64 {
	n := len(old)
	if len(current) < n {
		n = len(current)
	}
	smoothed := make([]float64, n)
	for i := 0; i < n; i++ {
		smoothed[i] = alpha*current[i] + (1-alpha)*old[i]
	}
	return smoothed
}

// Deviation is the normalized 0-100 distance between a baseline and an
// observation. Each component contributes its relative difference capped at
// 1; the mean is scaled to 0-100.
func Deviation(baseline, current []float64) float64 {
	n := len(baseline)
	if len(current) < n {
		n = len(current)
	}
	if n == 0 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		denom := math.Max(math.Abs(baseline[i]), 1)
		diff := math.Abs(current[i]-baseline[i]) / denom
		if diff > 1 {
			diff = 1
		}
		total += diff
	}
	return total / float64(n) * 100
}

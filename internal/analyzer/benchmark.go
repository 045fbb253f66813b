package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
)

// Benchmarker compares a finished run against industry aggregates. It runs
// after scoring, not inside the suite, because it needs the final score and
// the merged finding set.
type Benchmarker struct {
	feed intel.BenchmarkFeed
}

func NewBenchmarker(feed intel.BenchmarkFeed) *Benchmarker {
	return &Benchmarker{feed: feed}
}

// Compare builds the benchmark row for one run. A feed failure returns an
// error the caller logs and moves past; no benchmark is recorded for that run.
func (b *Benchmarker) Compare(ctx context.Context, websiteID int64, score int, f *Findings, now time.Time) (*finding.SecurityBenchmark, error) {
	if b.feed == nil {
		return nil, fmt.Errorf("benchmark: no feed configured")
	}
	average, percentile, err := b.feed.IndustryStats(ctx, score)
	if err != nil {
		return nil, fmt.Errorf("benchmark: %w", err)
	}

	bm := &finding.SecurityBenchmark{
		WebsiteID:       websiteID,
		OverallScore:    score,
		IndustryAverage: average,
		PercentileRank:  percentile,
		ComparedAt:      now,
	}

	counts := map[string]int{}
	for _, v := range f.Vulnerabilities {
		counts[v.Severity]++
	}

	if counts[finding.SeverityCritical] == 0 && counts[finding.SeverityHigh] == 0 {
		bm.Strengths = append(bm.Strengths, "no high or critical weaknesses detected")
	}
	if len(f.MaliciousLinks) == 0 {
		bm.Strengths = append(bm.Strengths, "no malicious outbound links")
	}
	if len(f.Clones) == 0 {
		bm.Strengths = append(bm.Strengths, "no active phishing clones")
	}
	if score >= average {
		bm.Strengths = append(bm.Strengths, fmt.Sprintf("score %d at or above industry average %d", score, average))
	}

	if n := counts[finding.SeverityCritical]; n > 0 {
		bm.Weaknesses = append(bm.Weaknesses, fmt.Sprintf("%d critical weakness(es) open", n))
		bm.Recommendations = append(bm.Recommendations, "remediate critical weaknesses immediately")
	}
	if n := counts[finding.SeverityHigh]; n > 0 {
		bm.Weaknesses = append(bm.Weaknesses, fmt.Sprintf("%d high-severity weakness(es) open", n))
		bm.Recommendations = append(bm.Recommendations, "schedule fixes for high-severity weaknesses this week")
	}
	if len(f.MaliciousLinks) > 0 {
		bm.Weaknesses = append(bm.Weaknesses, fmt.Sprintf("%d malicious link(s) embedded", len(f.MaliciousLinks)))
		bm.Recommendations = append(bm.Recommendations, "remove or quarantine flagged outbound links")
	}
	if dev := f.MaxDeviation(); dev > 0 {
		bm.Weaknesses = append(bm.Weaknesses, fmt.Sprintf("behavior deviation at %.0f", dev))
	}
	if score < average {
		bm.Recommendations = append(bm.Recommendations, "work through open findings to reach the industry average")
	}

	return bm, nil
}

package analyzer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/extract"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
)

func testWebsite(t *testing.T) *website.Website {
	t.Helper()
	now := time.Now().UTC()
	return website.Reconstruct(42, 1, "https://example.com", "example", "ops@example.com",
		true, 15, website.StatusHealthy, 100, now, now, now)
}

func behaviorInput(w *website.Website, res *probe.Result, ex *extract.Extraction,
	fps map[finding.FingerprintType]*finding.BehaviorFingerprint, checks []*check.MonitoringCheck) Input {
	return Input{
		Probe:      res,
		Extraction: ex,
		History: &History{
			Website:      w,
			RecentChecks: checks,
			Fingerprints: fps,
		},
		Now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func fingerprintByType(f *Findings, fpType finding.FingerprintType) *finding.BehaviorFingerprint {
	for _, fp := range f.Fingerprints {
		if fp.FingerprintType == fpType {
			return fp
		}
	}
	return nil
}

func TestBehaviorSeedsBaselineOnFirstObservation(t *testing.T) {
	b := NewBehaviorComparator(0.2, 50)
	res := &probe.Result{ResponseTimeMs: 120, BodySize: 4096, BodyHash: "abc"}

	out, err := b.Analyze(context.Background(), behaviorInput(testWebsite(t), res, nil, nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fp := fingerprintByType(out, finding.FingerprintTraffic)
	if fp == nil {
		t.Fatal("expected a traffic fingerprint")
	}
	if fp.DeviationScore != 0 || fp.Anomalous {
		t.Fatalf("first observation must not deviate: score=%f anomalous=%t", fp.DeviationScore, fp.Anomalous)
	}
	want := []float64{120, 4096}
	for i := range want {
		if fp.Baseline[i] != want[i] {
			t.Fatalf("baseline = %v, want %v", fp.Baseline, want)
		}
	}
}

func TestBehaviorDetectsDeviationAndSmooths(t *testing.T) {
	b := NewBehaviorComparator(0.2, 50)
	prev := &finding.BehaviorFingerprint{
		ID:              7,
		WebsiteID:       42,
		FingerprintType: finding.FingerprintTraffic,
		Baseline:        []float64{100, 1000},
	}
	fps := map[finding.FingerprintType]*finding.BehaviorFingerprint{
		finding.FingerprintTraffic: prev,
	}
	// Both components fully deviated: deviation caps at 100.
	res := &probe.Result{ResponseTimeMs: 5000, BodySize: 90000, BodyHash: "abc"}

	out, err := b.Analyze(context.Background(), behaviorInput(testWebsite(t), res, nil, fps, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fp := fingerprintByType(out, finding.FingerprintTraffic)
	if fp == nil {
		t.Fatal("expected a traffic fingerprint")
	}
	if fp.ID != 7 {
		t.Fatalf("fingerprint must keep its identity, got ID %d", fp.ID)
	}
	if !fp.Anomalous {
		t.Fatalf("deviation %f above threshold must be anomalous", fp.DeviationScore)
	}
	if fp.DeviationScore != 100 {
		t.Fatalf("deviation = %f, want capped 100", fp.DeviationScore)
	}
	// Smoothed baseline lies strictly between old baseline and observation.
	if fp.Baseline[0] <= 100 || fp.Baseline[0] >= 5000 {
		t.Fatalf("smoothed baseline %f escaped [old, current]", fp.Baseline[0])
	}
}

func TestSmoothBetweenness(t *testing.T) {
	old := []float64{10, 200, 3000}
	current := []float64{20, 100, 9000}
	got := Smooth(old, current, 0.3)
	for i := range got {
		lo, hi := math.Min(old[i], current[i]), math.Max(old[i], current[i])
		if got[i] < lo || got[i] > hi {
			t.Fatalf("component %d: %f outside [%f, %f]", i, got[i], lo, hi)
		}
	}
	if want := 0.3*20 + 0.7*10; math.Abs(got[0]-want) > 1e-9 {
		t.Fatalf("got[0] = %f, want %f", got[0], want)
	}
}

func TestDeviationBounds(t *testing.T) {
	if d := Deviation(nil, nil); d != 0 {
		t.Fatalf("empty deviation = %f, want 0", d)
	}
	if d := Deviation([]float64{50, 50}, []float64{50, 50}); d != 0 {
		t.Fatalf("identical deviation = %f, want 0", d)
	}
	// Massive change still caps at 100.
	if d := Deviation([]float64{1, 1}, []float64{1e9, 1e9}); d != 100 {
		t.Fatalf("capped deviation = %f, want 100", d)
	}
	// Half-changed vector lands mid-scale.
	d := Deviation([]float64{100, 100}, []float64{100, 200})
	if d != 50 {
		t.Fatalf("deviation = %f, want 50", d)
	}
}

func TestBehaviorFlagsContentChange(t *testing.T) {
	b := NewBehaviorComparator(0.2, 50)
	prevCheck := check.Reconstruct(1, 42, check.TypeScheduled, check.StatusSuccess,
		100, 200, "oldhash", "", "", time.Now().UTC())
	res := &probe.Result{URL: "https://example.com", ResponseTimeMs: 100, BodySize: 1000, BodyHash: "newhash"}

	out, err := b.Analyze(context.Background(),
		behaviorInput(testWebsite(t), res, nil, nil, []*check.MonitoringCheck{prevCheck}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.FileChanges) != 1 {
		t.Fatalf("expected one file change, got %d", len(out.FileChanges))
	}
	fc := out.FileChanges[0]
	if fc.ChangeType != finding.ChangeModified || fc.Suspicious {
		t.Fatalf("routine change misclassified: %+v", fc)
	}
	if fc.PreviousHash != "oldhash" || fc.CurrentHash != "newhash" {
		t.Fatalf("hashes not carried: %+v", fc)
	}
}

func TestBehaviorSuspiciousChangeOnAnomalousRequestShape(t *testing.T) {
	b := NewBehaviorComparator(0.2, 50)
	prevCheck := check.Reconstruct(1, 42, check.TypeScheduled, check.StatusSuccess,
		100, 200, "oldhash", "", "", time.Now().UTC())
	fps := map[finding.FingerprintType]*finding.BehaviorFingerprint{
		finding.FingerprintRequest: {
			FingerprintType: finding.FingerprintRequest,
			Baseline:        []float64{10, 2, 0, 1},
		},
	}
	ex := &extract.Extraction{
		Links:     make([]extract.Link, 200),
		Scripts:   make([]string, 40),
		Iframes:   []string{"a", "b", "c"},
		FormCount: 9,
	}
	res := &probe.Result{URL: "https://example.com", ResponseTimeMs: 100, BodySize: 1000, BodyHash: "newhash"}

	out, err := b.Analyze(context.Background(),
		behaviorInput(testWebsite(t), res, ex, fps, []*check.MonitoringCheck{prevCheck}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.FileChanges) != 1 {
		t.Fatalf("expected one file change, got %d", len(out.FileChanges))
	}
	fc := out.FileChanges[0]
	if fc.ChangeType != finding.ChangeSuspicious || !fc.Suspicious || fc.SuspicionReason == "" {
		t.Fatalf("anomalous request shape should mark the change suspicious: %+v", fc)
	}
}

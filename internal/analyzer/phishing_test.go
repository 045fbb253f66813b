package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/extract"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
)

type stubCloneFeed struct {
	candidates []intel.CloneCandidate
	err        error
	gotDomain  string
}

func (s *stubCloneFeed) Candidates(ctx context.Context, domain string) ([]intel.CloneCandidate, error) {
	s.gotDomain = domain
	return s.candidates, s.err
}

func phishingInput(t *testing.T, title string) Input {
	t.Helper()
	return Input{
		Probe:      &probe.Result{URL: "https://example.com", BodyHash: "ownhash"},
		Extraction: &extract.Extraction{Title: title},
		History:    &History{Website: testWebsite(t)},
		Now:        time.Now().UTC(),
	}
}

func TestPhishingIdenticalContentScoresFull(t *testing.T) {
	feed := &stubCloneFeed{candidates: []intel.CloneCandidate{
		{URL: "https://totally-unrelated.net", ContentHash: "ownhash"},
	}}
	d := NewPhishingDetector(feed)

	out, err := d.Analyze(context.Background(), phishingInput(t, "Example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.gotDomain != "example.com" {
		t.Fatalf("queried domain = %q, want registrable example.com", feed.gotDomain)
	}
	if len(out.Clones) != 1 {
		t.Fatalf("expected 1 clone, got %d", len(out.Clones))
	}
	c := out.Clones[0]
	if c.SimilarityScore != 100 || c.CloneType != finding.CloneContentCopy {
		t.Fatalf("identical content misclassified: %+v", c)
	}
	if c.Status != "active" {
		t.Fatalf("status = %q, want active", c.Status)
	}
}

func TestPhishingDomainTypo(t *testing.T) {
	feed := &stubCloneFeed{candidates: []intel.CloneCandidate{
		{URL: "https://examp1e.com", ContentHash: "other"}, // one keystroke away
	}}
	d := NewPhishingDetector(feed)

	out, err := d.Analyze(context.Background(), phishingInput(t, "Example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Clones) != 1 {
		t.Fatalf("expected 1 clone, got %d", len(out.Clones))
	}
	if out.Clones[0].CloneType != finding.CloneDomainTypo {
		t.Fatalf("clone type = %s, want domain_typo", out.Clones[0].CloneType)
	}
	if out.Clones[0].SimilarityScore < 85 {
		t.Fatalf("score = %d, want >= 85", out.Clones[0].SimilarityScore)
	}
}

func TestPhishingBrandAbuseNeedsTitleMatchToCross(t *testing.T) {
	// Brand token inside a longer domain scores 50 alone: below threshold.
	weak := &stubCloneFeed{candidates: []intel.CloneCandidate{
		{URL: "https://example-login-secure.net", Title: "Different", ContentHash: "other"},
	}}
	d := NewPhishingDetector(weak)
	out, err := d.Analyze(context.Background(), phishingInput(t, "Example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Clones) != 0 {
		t.Fatalf("brand abuse alone must stay below the threshold, got %d clones", len(out.Clones))
	}

	// With the copied title the combined signal crosses the threshold.
	strong := &stubCloneFeed{candidates: []intel.CloneCandidate{
		{URL: "https://example-login-secure.net", Title: "Example", ContentHash: "other"},
	}}
	d = NewPhishingDetector(strong)
	out, err = d.Analyze(context.Background(), phishingInput(t, "Example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Clones) != 1 {
		t.Fatalf("expected 1 clone, got %d", len(out.Clones))
	}
	if out.Clones[0].SimilarityScore != 90 {
		t.Fatalf("score = %d, want 90 (50 brand + 40 title)", out.Clones[0].SimilarityScore)
	}
}

func TestPhishingIgnoresOwnDomain(t *testing.T) {
	feed := &stubCloneFeed{candidates: []intel.CloneCandidate{
		{URL: "https://www.example.com/login", Title: "Example", ContentHash: "other"},
	}}
	d := NewPhishingDetector(feed)
	out, err := d.Analyze(context.Background(), phishingInput(t, "Example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Clones) != 0 {
		t.Fatalf("own registrable domain must never be flagged, got %d clones", len(out.Clones))
	}
}

func TestPhishingFeedErrorPropagatesForIsolation(t *testing.T) {
	d := NewPhishingDetector(&stubCloneFeed{err: errors.New("feed down")})
	_, err := d.Analyze(context.Background(), phishingInput(t, "Example"))
	if err == nil {
		t.Fatal("feed failure must surface as a module error")
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"example.com", "example.com", 0},
		{"example.com", "examp1e.com", 1},
		{"example.com", "exampel.com", 2},
		{"kitten", "sitting", 3},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

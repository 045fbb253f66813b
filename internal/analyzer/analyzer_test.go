package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
)

type fakeModule struct {
	name     string
	findings *Findings
	err      error
	panics   bool
	blocks   bool
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) Analyze(ctx context.Context, in Input) (*Findings, error) {
	if m.panics {
		panic("boom")
	}
	if m.blocks {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.findings, m.err
}

func TestSuiteMergesAllModuleOutput(t *testing.T) {
	s := NewSuite(zap.NewNop(), time.Second,
		&fakeModule{name: "a", findings: &Findings{
			Vulnerabilities: []*finding.CodeVulnerability{{VulnerabilityType: "x"}},
		}},
		&fakeModule{name: "b", findings: &Findings{
			MaliciousLinks: []*finding.MaliciousLink{{LinkURL: "http://evil.example"}},
		}},
	)

	merged, failures := s.Run(context.Background(), Input{Now: time.Now().UTC()})
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(merged.Vulnerabilities) != 1 || len(merged.MaliciousLinks) != 1 {
		t.Fatalf("merge lost findings: %+v", merged)
	}
}

func TestSuiteIsolatesFailingModule(t *testing.T) {
	s := NewSuite(zap.NewNop(), time.Second,
		&fakeModule{name: "broken", err: errors.New("feed down")},
		&fakeModule{name: "fine", findings: &Findings{
			Vulnerabilities: []*finding.CodeVulnerability{{VulnerabilityType: "x"}},
		}},
	)

	merged, failures := s.Run(context.Background(), Input{Now: time.Now().UTC()})
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Module != "broken" {
		t.Fatalf("failure attributed to %q", failures[0].Module)
	}
	if len(merged.Vulnerabilities) != 1 {
		t.Fatal("healthy module's findings were lost")
	}
}

func TestSuiteRecoversPanickingModule(t *testing.T) {
	s := NewSuite(zap.NewNop(), time.Second,
		&fakeModule{name: "panicky", panics: true},
		&fakeModule{name: "fine", findings: &Findings{
			Clones: []*finding.PhishingClone{{CloneURL: "http://examp1e.com"}},
		}},
	)

	merged, failures := s.Run(context.Background(), Input{Now: time.Now().UTC()})
	if len(failures) != 1 || failures[0].Module != "panicky" {
		t.Fatalf("panic not isolated: %v", failures)
	}
	if len(merged.Clones) != 1 {
		t.Fatal("healthy module's findings were lost")
	}
}

func TestSuiteTimesOutSlowModule(t *testing.T) {
	s := NewSuite(zap.NewNop(), 20*time.Millisecond,
		&fakeModule{name: "slow", blocks: true},
		&fakeModule{name: "fast", findings: &Findings{
			FileChanges: []*finding.FileChange{{CurrentHash: "h"}},
		}},
	)

	start := time.Now()
	merged, failures := s.Run(context.Background(), Input{Now: time.Now().UTC()})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("suite blocked on slow module for %v", elapsed)
	}
	if len(failures) != 1 || failures[0].Module != "slow" {
		t.Fatalf("timeout not attributed to slow module: %v", failures)
	}
	if len(merged.FileChanges) != 1 {
		t.Fatal("fast module's findings were lost")
	}
}

func TestFindingsMaxDeviation(t *testing.T) {
	f := &Findings{Fingerprints: []*finding.BehaviorFingerprint{
		{DeviationScore: 12},
		{DeviationScore: 88},
		{DeviationScore: 40},
	}}
	if got := f.MaxDeviation(); got != 88 {
		t.Fatalf("MaxDeviation = %f, want 88", got)
	}
	if got := (&Findings{}).MaxDeviation(); got != 0 {
		t.Fatalf("empty MaxDeviation = %f, want 0", got)
	}
}

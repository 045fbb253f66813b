// Package analyzer implements the analysis stage of the monitoring pipeline:
// a set of independent modules that consume probe and extraction output plus
// historical baselines and produce typed findings. Modules share no mutable
// state, run concurrently, and are independently failable: one module's
// crash or timeout never aborts the others.
package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/extract"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// Error is an isolated analyzer module failure. It is logged and reduces the
// finding set for the run; it never propagates to the user.
type Error struct {
	Module string
	Err    error
}

func (e *Error) Error() string { return fmt.Sprintf("analyzer %s: %v", e.Module, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// History is the read-only context a module may consult.
type History struct {
	Website      *website.Website
	RecentChecks []*check.MonitoringCheck // newest first
	RecentAlerts []*alert.Alert           // newest first
	Fingerprints map[finding.FingerprintType]*finding.BehaviorFingerprint
}

// Input is everything a module receives for one run.
type Input struct {
	Probe      *probe.Result
	Extraction *extract.Extraction
	History    *History
	Now        time.Time
}

// Findings aggregates the typed outputs of one run. Each module fills only
// its own slices; Merge combines them.
type Findings struct {
	Vulnerabilities  []*finding.CodeVulnerability
	MaliciousLinks   []*finding.MaliciousLink
	Fingerprints     []*finding.BehaviorFingerprint
	FileChanges      []*finding.FileChange
	Predictions      []*finding.AttackPrediction
	AttackerPatterns []*finding.AttackerPattern
	Clones           []*finding.PhishingClone
	ExternalServices []*finding.ExternalService
	Visitors         []*finding.VisitorAnalysis
	AIReport         *intel.AIReport
}

// Merge folds other into f.
func (f *Findings) Merge(other *Findings) {
	if other == nil {
		return
	}
	f.Vulnerabilities = append(f.Vulnerabilities, other.Vulnerabilities...)
	f.MaliciousLinks = append(f.MaliciousLinks, other.MaliciousLinks...)
	f.Fingerprints = append(f.Fingerprints, other.Fingerprints...)
	f.FileChanges = append(f.FileChanges, other.FileChanges...)
	f.Predictions = append(f.Predictions, other.Predictions...)
	f.AttackerPatterns = append(f.AttackerPatterns, other.AttackerPatterns...)
	f.Clones = append(f.Clones, other.Clones...)
	f.ExternalServices = append(f.ExternalServices, other.ExternalServices...)
	f.Visitors = append(f.Visitors, other.Visitors...)
	if other.AIReport != nil {
		f.AIReport = other.AIReport
	}
}

// MaxDeviation returns the highest deviation score across updated
// fingerprints, for scoring.
func (f *Findings) MaxDeviation() float64 {
	max := 0.0
	for _, fp := range f.Fingerprints {
		if fp.DeviationScore > max {
			max = fp.DeviationScore
		}
	}
	return max
}

// Module is one independently invocable analysis unit.
type Module interface {
	Name() string
	Analyze(ctx context.Context, in Input) (*Findings, error)
}

// Suite runs modules concurrently with per-module timeouts and failure
// isolation.
type Suite struct {
	modules []Module
	timeout time.Duration
	logger  *zap.Logger
}

// NewSuite builds a suite over the given modules.
func NewSuite(logger *zap.Logger, timeout time.Duration, modules ...Module) *Suite {
	if timeout <= 0 {
		timeout = constants.DefaultAnalyzerTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suite{modules: modules, timeout: timeout, logger: logger}
}

// Run invokes every module and merges whatever succeeded. Failures are
// returned for logging/metrics but never abort the run; a timed-out or
// panicking module simply contributes zero findings.
func (s *Suite) Run(ctx context.Context, in Input) (*Findings, []*Error) {
	type outcome struct {
		findings *Findings
		err      *Error
	}

	results := make(chan outcome, len(s.modules))
	var wg sync.WaitGroup

	for _, m := range s.modules {
		wg.Add(1)
		go func(m Module) {
			defer wg.Done()

			modCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			defer func() {
				if r := recover(); r != nil {
					results <- outcome{err: &Error{Module: m.Name(), Err: fmt.Errorf("panic: %v", r)}}
				}
			}()

			f, err := m.Analyze(modCtx, in)
			if err != nil {
				results <- outcome{err: &Error{Module: m.Name(), Err: err}}
				return
			}
			results <- outcome{findings: f}
		}(m)
	}

	wg.Wait()
	close(results)

	merged := &Findings{}
	var failures []*Error
	for out := range results {
		if out.err != nil {
			s.logger.Warn("analyzer module failed",
				zap.String("module", out.err.Module),
				zap.Error(out.err.Err))
			failures = append(failures, out.err)
			continue
		}
		merged.Merge(out.findings)
	}
	return merged, failures
}

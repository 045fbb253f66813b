// Package alerting converts pipeline outcomes into persisted alerts with
// duplicate suppression, and dispatches email notifications under a
// per-condition cool-down.
package alerting

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/analyzer"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// Notifier delivers a batch of alerts to one recipient. Implementations must
// be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, to string, site *website.Website, alerts []*alert.Alert) error
}

// Input is everything the emitter needs for one run.
type Input struct {
	Website  *website.Website
	Check    *check.MonitoringCheck
	Probe    *probe.Result // nil when the probe failed at transport level
	ProbeErr *probe.Error  // set when Probe is nil
	Findings *analyzer.Findings
	Now      time.Time
}

// Emitter persists alerts derived from one run's findings, suppressing
// duplicates still unread, and hands new alerts to the notifier. A failed
// notification never fails the run.
type Emitter struct {
	alerts   alert.Repository
	checks   check.Repository
	notifier Notifier
	logger   *zap.Logger
	cooldown time.Duration

	mu       sync.Mutex
	lastSent map[sentKey]time.Time // condition -> last non-critical email
}

// sentKey identifies one notifiable condition, scoped exactly like duplicate
// suppression. Two alerts with the same key are indistinguishable to the
// recipient.
type sentKey struct {
	websiteID int64
	alertType alert.Type
	dedupKey  string
}

func sentKeyFor(a *alert.Alert) sentKey {
	return sentKey{websiteID: a.WebsiteID(), alertType: a.Type(), dedupKey: a.DedupKey()}
}

func NewEmitter(alerts alert.Repository, checks check.Repository, notifier Notifier, logger *zap.Logger, cooldown time.Duration) *Emitter {
	if cooldown <= 0 {
		cooldown = constants.NotifyCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		alerts:   alerts,
		checks:   checks,
		notifier: notifier,
		logger:   logger,
		cooldown: cooldown,
		lastSent: make(map[sentKey]time.Time),
	}
}

// Emit builds, deduplicates and persists alerts for one run, then dispatches
// notifications. It returns the alerts actually created.
func (e *Emitter) Emit(ctx context.Context, in Input) ([]*alert.Alert, error) {
	candidates, err := e.build(ctx, in)
	if err != nil {
		return nil, err
	}

	var created []*alert.Alert
	for _, c := range candidates {
		dup, err := e.alerts.FindOpenDuplicate(ctx, c.WebsiteID(), c.Type(), c.DedupKey())
		if err != nil {
			return created, fmt.Errorf("duplicate lookup: %w", err)
		}
		if dup != nil {
			continue
		}
		if err := e.alerts.Save(ctx, c); err != nil {
			return created, fmt.Errorf("save alert: %w", err)
		}
		created = append(created, c)
	}

	e.notify(ctx, in, created)
	return created, nil
}

// notify emails the alerts the cool-down lets through, plus any unsent
// backlog of equal-or-lower severity. Critical alerts go out immediately;
// anything else waits out the cool-down for its own condition, so a fresh
// condition is never blacked out by an unrelated earlier email.
func (e *Emitter) notify(ctx context.Context, in Input, created []*alert.Alert) {
	if e.notifier == nil || len(created) == 0 || in.Website == nil || in.Website.NotifyEmail() == "" {
		return
	}

	e.mu.Lock()
	var batch []*alert.Alert
	for _, a := range created {
		if a.Severity() != alert.SeverityCritical {
			if last, ok := e.lastSent[sentKeyFor(a)]; ok && in.Now.Sub(last) < e.cooldown {
				continue
			}
		}
		batch = append(batch, a)
	}
	e.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	maxRank := 0
	for _, a := range batch {
		if r := a.Severity().Rank(); r > maxRank {
			maxRank = r
		}
	}

	// Backlog alerts retry when an alert of equal-or-higher severity goes out.
	if backlog, err := e.alerts.FindUnsent(ctx, in.Website.ID()); err == nil {
		seen := make(map[int64]bool, len(batch))
		for _, a := range batch {
			seen[a.ID()] = true
		}
		for _, a := range backlog {
			if !seen[a.ID()] && a.Severity().Rank() <= maxRank {
				batch = append(batch, a)
			}
		}
	}

	if err := e.notifier.Send(ctx, in.Website.NotifyEmail(), in.Website, batch); err != nil {
		// Unsent alerts stay in the backlog and ride along with the next
		// delivery for this site.
		e.logger.Warn("alert notification failed",
			zap.Int64("website_id", in.Website.ID()),
			zap.Int("alerts", len(batch)),
			zap.Error(err))
		return
	}

	for _, a := range batch {
		a.RecordEmailSent(in.Now)
		if err := e.alerts.Update(ctx, a); err != nil {
			e.logger.Warn("record email delivery failed",
				zap.Int64("alert_id", a.ID()), zap.Error(err))
		}
	}

	e.mu.Lock()
	for _, a := range batch {
		if a.Severity() != alert.SeverityCritical {
			e.lastSent[sentKeyFor(a)] = in.Now
		}
	}
	e.mu.Unlock()
}

func (e *Emitter) build(ctx context.Context, in Input) ([]*alert.Alert, error) {
	if in.Website == nil {
		return nil, nil
	}
	websiteID := in.Website.ID()
	checkID := int64(0)
	if in.Check != nil {
		checkID = in.Check.ID()
	}

	b := &batchBuilder{websiteID: websiteID, checkID: checkID, logger: e.logger}

	// Server errors first: the current check row is already persisted, so the
	// failure count includes this run.
	if in.Check != nil && in.Check.HTTPStatus() >= 500 {
		fails, err := e.checks.CountRecentFailures(ctx, websiteID)
		if err != nil {
			return nil, fmt.Errorf("count failures: %w", err)
		}
		if fails >= constants.DowntimeThreshold {
			status := in.Check.HTTPStatus()
			b.add(alert.SeverityCritical, alert.TypeDowntime,
				"Website down",
				fmt.Sprintf("%d consecutive server errors, last status %d", fails, status),
				"downtime",
				alert.DowntimeDetails{HTTPStatus: status, ConsecutiveFails: fails})
		}
	}

	if in.Probe != nil && in.Probe.ResponseTimeMs > constants.SlowResponseMs {
		b.add(alert.SeverityMedium, alert.TypePerformance,
			"Slow response",
			fmt.Sprintf("response took %dms", in.Probe.ResponseTimeMs),
			"slow_response",
			alert.PerformanceDetails{ResponseTimeMs: in.Probe.ResponseTimeMs, ThresholdMs: constants.SlowResponseMs})
	}

	if in.Findings != nil {
		b.fromFindings(in.Findings)
	}
	return b.alerts, nil
}

type batchBuilder struct {
	websiteID int64
	checkID   int64
	logger    *zap.Logger
	alerts    []*alert.Alert
}

func (b *batchBuilder) add(sev alert.Severity, t alert.Type, title, description, dedupKey string, details alert.Details) {
	a, err := alert.New(b.websiteID, b.checkID, sev, t, title, description, dedupKey, details)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("dropping malformed alert candidate",
				zap.String("type", string(t)), zap.Error(err))
		}
		return
	}
	b.alerts = append(b.alerts, a)
}

func (b *batchBuilder) fromFindings(f *analyzer.Findings) {
	for _, v := range f.Vulnerabilities {
		t := alert.TypeVulnerability
		var details alert.Details = alert.VulnerabilityDetails{
			VulnerabilityType: v.VulnerabilityType,
			Location:          v.Location,
			Recommendation:    v.Recommendation,
		}
		// Certificate findings surface as SSL issues, not generic
		// vulnerabilities.
		if strings.HasPrefix(v.VulnerabilityType, "tls_") {
			t = alert.TypeSSLIssue
			details = alert.SSLIssueDetails{Problem: v.Description}
		}
		b.add(alert.Severity(v.Severity), t,
			"Security weakness: "+v.VulnerabilityType,
			v.Description,
			v.VulnerabilityType+"|"+v.Location,
			details)
	}

	for _, l := range f.MaliciousLinks {
		b.add(alert.SeverityHigh, alert.TypeMaliciousLink,
			"Malicious link detected",
			fmt.Sprintf("link to %s flagged as %s", l.LinkURL, l.ThreatType),
			l.LinkURL,
			alert.MaliciousLinkDetails{
				LinkURL:    l.LinkURL,
				FoundIn:    l.FoundIn,
				LinkType:   string(l.LinkType),
				ThreatType: string(l.ThreatType),
			})
	}

	for _, fp := range f.Fingerprints {
		if !fp.Anomalous {
			continue
		}
		b.add(alert.SeverityMedium, alert.TypeBehaviorAnomaly,
			"Behavior anomaly",
			fmt.Sprintf("%s pattern deviated by %.0f from baseline", fp.FingerprintType, fp.DeviationScore),
			string(fp.FingerprintType),
			alert.BehaviorAnomalyDetails{
				FingerprintType: string(fp.FingerprintType),
				DeviationScore:  fp.DeviationScore,
				Threshold:       constants.DefaultDeviationThreshold,
			})
	}

	for _, fc := range f.FileChanges {
		sev := alert.SeverityLow
		if fc.Suspicious {
			sev = alert.SeverityHigh
		}
		b.add(sev, alert.TypeContentChange,
			"Content changed",
			fmt.Sprintf("content of %s changed (%s)", fc.FilePath, fc.ChangeType),
			fc.CurrentHash,
			alert.ContentChangeDetails{
				PreviousHash: fc.PreviousHash,
				CurrentHash:  fc.CurrentHash,
				SizeDelta:    fc.SizeDifference,
			})
	}

	for _, p := range f.Predictions {
		b.add(alert.Severity(p.ThreatLevel), alert.TypeAttackPrediction,
			"Attack predicted: "+p.PredictedAttackType,
			p.Reasoning,
			string(p.PredictionType)+"|"+p.PredictedAttackType,
			alert.AttackPredictionDetails{
				PredictedAttackType: p.PredictedAttackType,
				Probability:         p.Probability,
				Timeframe:           p.Timeframe,
				Reasoning:           p.Reasoning,
			})
	}

	for _, ap := range f.AttackerPatterns {
		if ap.ThreatLevel != finding.SeverityHigh && ap.ThreatLevel != finding.SeverityCritical {
			continue
		}
		b.add(alert.Severity(ap.ThreatLevel), alert.TypeIntrusionAttempt,
			"Intrusion activity",
			ap.Profile,
			ap.PatternHash,
			alert.IntrusionDetails{PatternHash: ap.PatternHash, Techniques: ap.Techniques})
	}

	for _, c := range f.Clones {
		sev := alert.SeverityHigh
		if c.SimilarityScore >= constants.CloneCriticalSimilarity {
			sev = alert.SeverityCritical
		}
		b.add(sev, alert.TypePhishing,
			"Phishing clone detected",
			fmt.Sprintf("%s imitates this site (similarity %d)", c.CloneURL, c.SimilarityScore),
			c.CloneURL,
			alert.PhishingDetails{
				CloneURL:        c.CloneURL,
				SimilarityScore: c.SimilarityScore,
				CloneType:       string(c.CloneType),
			})
	}
}

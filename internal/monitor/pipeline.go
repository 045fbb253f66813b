// Package monitor drives the check pipeline: probe, extract, analyze, score,
// persist, alert. The scheduler decides when a website runs; the pipeline
// owns what one run does.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/alerting"
	"github.com/abodks10-ai/Pred-Guard/internal/analyzer"
	"github.com/abodks10-ai/Pred-Guard/internal/defense"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/extract"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
	"github.com/abodks10-ai/Pred-Guard/internal/scoring"
)

const (
	historyCheckLimit = 10
	historyAlertLimit = 20
)

// Pipeline executes one monitoring run end to end. All collaborators are
// shared and safe for concurrent runs against distinct websites; the
// scheduler guarantees no two runs target the same website at once.
type Pipeline struct {
	websites website.Repository
	checks   check.Repository
	alerts   alert.Repository
	findings finding.Repository

	prober      *probe.Client
	suite       *analyzer.Suite
	resolver    *scoring.Resolver
	benchmarker *analyzer.Benchmarker
	emitter     *alerting.Emitter
	defender    *defense.Orchestrator

	logger *zap.Logger
	now    func() time.Time
}

// PipelineDeps bundles the collaborators for NewPipeline.
type PipelineDeps struct {
	Websites website.Repository
	Checks   check.Repository
	Alerts   alert.Repository
	Findings finding.Repository

	Prober      *probe.Client
	Suite       *analyzer.Suite
	Resolver    *scoring.Resolver
	Benchmarker *analyzer.Benchmarker
	Emitter     *alerting.Emitter
	Defender    *defense.Orchestrator

	Logger *zap.Logger
}

func NewPipeline(d PipelineDeps) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		websites:    d.Websites,
		checks:      d.Checks,
		alerts:      d.Alerts,
		findings:    d.Findings,
		prober:      d.Prober,
		suite:       d.Suite,
		resolver:    d.Resolver,
		benchmarker: d.Benchmarker,
		emitter:     d.Emitter,
		defender:    d.Defender,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run performs one check of the given website. It always records a check row
// for a completed or failed probe; analyzer failures degrade the run rather
// than fail it. The result row is discarded if the website was deleted while
// the run was in flight.
func (p *Pipeline) Run(ctx context.Context, site *website.Website, checkType check.Type) (*check.MonitoringCheck, error) {
	start := p.now()
	log := p.logger.With(
		zap.Int64("website_id", site.ID()),
		zap.String("url", site.URL()),
		zap.String("check_type", string(checkType)))

	res, fetchErr := p.prober.Fetch(ctx, site.URL())
	if fetchErr != nil {
		var probeErr *probe.Error
		if !errors.As(fetchErr, &probeErr) {
			probeErr = &probe.Error{Kind: probe.KindConnection, URL: site.URL(), Err: fetchErr}
		}
		return p.runFailed(ctx, log, site, checkType, probeErr, start)
	}
	// An error page is still a completed exchange: its body and headers feed
	// the analyzers like any other response.
	return p.runCompleted(ctx, log, site, checkType, res, start)
}

// runFailed records an error check when the exchange never completed at the
// transport level. The site keeps its previous score and status.
func (p *Pipeline) runFailed(ctx context.Context, log *zap.Logger, site *website.Website,
	checkType check.Type, probeErr *probe.Error, start time.Time) (*check.MonitoringCheck, error) {

	log.Warn("probe failed", zap.String("kind", string(probeErr.Kind)), zap.Error(probeErr.Err))

	rec, err := check.New(site.ID(), checkType, check.StatusError)
	if err != nil {
		return nil, err
	}

	if ok, err := p.websites.Exists(ctx, site.ID()); err != nil || !ok {
		log.Info("website removed mid-run, discarding result")
		return nil, err
	}
	if err := p.checks.Save(ctx, rec); err != nil {
		return nil, err
	}

	if _, err := p.emitter.Emit(ctx, alerting.Input{
		Website:  site,
		Check:    rec,
		ProbeErr: probeErr,
		Now:      start,
	}); err != nil {
		log.Error("alert emission failed", zap.Error(err))
	}

	site.ApplyCheckOutcome(site.Status(), site.SecurityScore(), start)
	if err := p.websites.Update(ctx, site); err != nil {
		return rec, err
	}
	return rec, nil
}

func (p *Pipeline) runCompleted(ctx context.Context, log *zap.Logger, site *website.Website,
	checkType check.Type, res *probe.Result, start time.Time) (*check.MonitoringCheck, error) {

	extraction := extract.Page(res)
	history, err := p.loadHistory(ctx, site)
	if err != nil {
		return nil, err
	}

	merged, failures := p.suite.Run(ctx, analyzer.Input{
		Probe:      res,
		Extraction: extraction,
		History:    history,
		Now:        start,
	})
	outcome := p.resolver.Resolve(merged)
	// An error status keeps the run out of the healthy bucket even when the
	// page itself yielded no findings.
	if kind := probe.KindForStatus(res.HTTPStatus); kind != "" && outcome.Status == website.StatusHealthy {
		outcome.Status = website.StatusWarning
	}

	rec, err := check.New(site.ID(), checkType, checkStatusFor(outcome.Status))
	if err != nil {
		return nil, err
	}
	rec.SetProbeData(res.ResponseTimeMs, res.HTTPStatus, res.BodyHash, res.Snippet())
	rec.SetAnalysis(analysisSummary(merged, outcome, failures))

	// A site deleted while this run was probing gets no resurrection rows.
	if ok, err := p.websites.Exists(ctx, site.ID()); err != nil || !ok {
		log.Info("website removed mid-run, discarding result")
		return nil, err
	}

	if err := p.checks.Save(ctx, rec); err != nil {
		return nil, err
	}
	p.persistFindings(ctx, log, merged)

	created, err := p.emitter.Emit(ctx, alerting.Input{
		Website:  site,
		Check:    rec,
		Probe:    res,
		Findings: merged,
		Now:      start,
	})
	if err != nil {
		log.Error("alert emission failed", zap.Error(err))
	}
	if p.defender != nil {
		p.defender.React(ctx, site, created)
	}

	// Confirmed downtime overrides whatever the findings resolved to.
	siteStatus := outcome.Status
	for _, a := range created {
		if a.Type() == alert.TypeDowntime {
			siteStatus = website.StatusCritical
		}
	}

	if p.benchmarker != nil {
		if bm, err := p.benchmarker.Compare(ctx, site.ID(), outcome.Score, merged, start); err != nil {
			log.Warn("benchmark skipped", zap.Error(err))
		} else if err := p.findings.SaveBenchmark(ctx, bm); err != nil {
			log.Warn("benchmark not persisted", zap.Error(err))
		}
	}

	site.ApplyCheckOutcome(siteStatus, outcome.Score, start)
	if err := p.websites.Update(ctx, site); err != nil {
		return rec, err
	}

	log.Info("check completed",
		zap.String("status", string(siteStatus)),
		zap.Int("score", outcome.Score),
		zap.Int("alerts", len(created)),
		zap.Int("analyzer_failures", len(failures)),
		zap.Duration("elapsed", p.now().Sub(start)))
	return rec, nil
}

func (p *Pipeline) loadHistory(ctx context.Context, site *website.Website) (*analyzer.History, error) {
	recent, err := p.checks.FindByWebsite(ctx, site.ID(), historyCheckLimit)
	if err != nil {
		return nil, err
	}
	alerts, err := p.alerts.FindByWebsite(ctx, site.ID(), historyAlertLimit)
	if err != nil {
		return nil, err
	}
	fps, err := p.findings.FindFingerprints(ctx, site.ID())
	if err != nil {
		return nil, err
	}
	byType := make(map[finding.FingerprintType]*finding.BehaviorFingerprint, len(fps))
	for _, fp := range fps {
		byType[fp.FingerprintType] = fp
	}
	return &analyzer.History{
		Website:      site,
		RecentChecks: recent,
		RecentAlerts: alerts,
		Fingerprints: byType,
	}, nil
}

// persistFindings writes every finding kind; individual failures are logged
// and do not abort the rest of the batch.
func (p *Pipeline) persistFindings(ctx context.Context, log *zap.Logger, f *analyzer.Findings) {
	warn := func(kind string, err error) {
		if err != nil {
			log.Warn("finding not persisted", zap.String("kind", kind), zap.Error(err))
		}
	}
	for _, v := range f.Vulnerabilities {
		warn("vulnerability", p.findings.SaveVulnerability(ctx, v))
	}
	for _, l := range f.MaliciousLinks {
		warn("malicious_link", p.findings.SaveMaliciousLink(ctx, l))
	}
	for _, fp := range f.Fingerprints {
		warn("fingerprint", p.findings.SaveFingerprint(ctx, fp))
	}
	for _, fc := range f.FileChanges {
		warn("file_change", p.findings.SaveFileChange(ctx, fc))
	}
	for _, pr := range f.Predictions {
		warn("prediction", p.findings.SavePrediction(ctx, pr))
	}
	for _, ap := range f.AttackerPatterns {
		warn("attacker_pattern", p.findings.UpsertAttackerPattern(ctx, ap))
	}
	for _, c := range f.Clones {
		warn("phishing_clone", p.findings.SavePhishingClone(ctx, c))
	}
	for _, va := range f.Visitors {
		warn("visitor_analysis", p.findings.SaveVisitorAnalysis(ctx, va))
	}
	for _, es := range f.ExternalServices {
		warn("external_service", p.findings.SaveExternalService(ctx, es))
	}
}

func checkStatusFor(s website.Status) check.Status {
	switch s {
	case website.StatusWarning, website.StatusCritical:
		return check.StatusWarning
	default:
		return check.StatusSuccess
	}
}

// analysisSummary is the compact JSON digest stored on the check row.
func analysisSummary(f *analyzer.Findings, outcome scoring.Outcome, failures []*analyzer.Error) string {
	summary := struct {
		Score           int      `json:"score"`
		Status          string   `json:"status"`
		Vulnerabilities int      `json:"vulnerabilities"`
		MaliciousLinks  int      `json:"malicious_links"`
		Predictions     int      `json:"predictions"`
		Clones          int      `json:"clones"`
		MaxDeviation    float64  `json:"max_deviation"`
		FailedAnalyzers []string `json:"failed_analyzers,omitempty"`
		AIOverallRisk   string   `json:"ai_overall_risk,omitempty"`
	}{
		Score:           outcome.Score,
		Status:          string(outcome.Status),
		Vulnerabilities: len(f.Vulnerabilities),
		MaliciousLinks:  len(f.MaliciousLinks),
		Predictions:     len(f.Predictions),
		Clones:          len(f.Clones),
		MaxDeviation:    f.MaxDeviation(),
	}
	for _, e := range failures {
		summary.FailedAnalyzers = append(summary.FailedAnalyzers, e.Module)
	}
	if f.AIReport != nil {
		summary.AIOverallRisk = f.AIReport.OverallRisk
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return "{}"
	}
	return string(b)
}

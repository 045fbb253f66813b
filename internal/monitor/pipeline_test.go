package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/alerting"
	"github.com/abodks10-ai/Pred-Guard/internal/analyzer"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/infrastructure/persistence/memory"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
	"github.com/abodks10-ai/Pred-Guard/internal/scoring"
)

type staticModule struct {
	findings *analyzer.Findings
}

func (m *staticModule) Name() string { return "static" }
func (m *staticModule) Analyze(ctx context.Context, in analyzer.Input) (*analyzer.Findings, error) {
	for _, v := range m.findings.Vulnerabilities {
		v.WebsiteID = in.History.Website.ID()
	}
	return m.findings, nil
}

type pipelineFixture struct {
	pipeline *Pipeline
	websites *memory.WebsiteRepository
	checks   *memory.CheckRepository
	alerts   *memory.AlertRepository
	findings *memory.FindingRepository
}

func newPipelineFixture(t *testing.T, modules ...analyzer.Module) *pipelineFixture {
	t.Helper()
	websites := memory.NewWebsiteRepository()
	checks := memory.NewCheckRepository()
	alerts := memory.NewAlertRepository()
	findings := memory.NewFindingRepository()

	suite := analyzer.NewSuite(zap.NewNop(), 2*time.Second, modules...)
	emitter := alerting.NewEmitter(alerts, checks, nil, zap.NewNop(), time.Hour)

	p := NewPipeline(PipelineDeps{
		Websites: websites,
		Checks:   checks,
		Alerts:   alerts,
		Findings: findings,
		Prober:   probe.NewClient(probe.WithTimeout(2 * time.Second)),
		Suite:    suite,
		Resolver: scoring.NewResolver(50),
		Emitter:  emitter,
		Logger:   zap.NewNop(),
	})
	return &pipelineFixture{pipeline: p, websites: websites, checks: checks, alerts: alerts, findings: findings}
}

func registerSite(t *testing.T, fx *pipelineFixture, url string) *website.Website {
	t.Helper()
	site, err := website.New(1, url, "test site", "ops@example.com", 15)
	if err != nil {
		t.Fatalf("website.New: %v", err)
	}
	if err := fx.websites.Save(context.Background(), site); err != nil {
		t.Fatalf("save website: %v", err)
	}
	return site
}

func TestPipelineHealthyRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>OK</title></head><body>fine</body></html>"))
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)

	rec, err := fx.pipeline.Run(context.Background(), site, check.TypeManual)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Status() != check.StatusSuccess {
		t.Fatalf("check status = %s, want success", rec.Status())
	}
	if rec.HTTPStatus() != 200 || rec.ContentHash() == "" {
		t.Fatalf("probe data not recorded: status=%d hash=%q", rec.HTTPStatus(), rec.ContentHash())
	}
	if rec.Analysis() == "" {
		t.Fatal("analysis summary not recorded")
	}

	stored, err := fx.websites.FindByID(context.Background(), site.ID())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status() != website.StatusHealthy || stored.SecurityScore() != 100 {
		t.Fatalf("site outcome: status=%s score=%d", stored.Status(), stored.SecurityScore())
	}
	if stored.LastCheckAt().IsZero() {
		t.Fatal("last check time not applied")
	}
}

func TestPipelineFindingsLowerScoreAndPersist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	mod := &staticModule{findings: &analyzer.Findings{
		Vulnerabilities: []*finding.CodeVulnerability{{
			VulnerabilityType: "missing_csp",
			Location:          "header",
			Severity:          finding.SeverityHigh,
			Description:       "no csp",
		}},
	}}
	fx := newPipelineFixture(t, mod)
	site := registerSite(t, fx, srv.URL)

	rec, err := fx.pipeline.Run(context.Background(), site, check.TypeScheduled)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Status() != check.StatusWarning {
		t.Fatalf("check status = %s, want warning", rec.Status())
	}

	stored, _ := fx.websites.FindByID(context.Background(), site.ID())
	if stored.SecurityScore() != 85 || stored.Status() != website.StatusWarning {
		t.Fatalf("site outcome: status=%s score=%d", stored.Status(), stored.SecurityScore())
	}

	vulns, err := fx.findings.FindVulnerabilities(context.Background(), site.ID(), false)
	if err != nil {
		t.Fatalf("FindVulnerabilities: %v", err)
	}
	if len(vulns) != 1 {
		t.Fatalf("persisted vulnerabilities = %d, want 1", len(vulns))
	}

	raised, _ := fx.alerts.FindByWebsite(context.Background(), site.ID(), 0)
	if len(raised) != 1 || raised[0].Type() != alert.TypeVulnerability {
		t.Fatalf("expected one vulnerability alert, got %+v", raised)
	}
}

func TestPipelineConfirmsDowntimeAfterThreeServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := fx.pipeline.Run(ctx, site, check.TypeScheduled)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		// A 5xx exchange completed, so it is analyzed and recorded as a
		// warning, not a transport error.
		if rec.Status() != check.StatusWarning {
			t.Fatalf("run %d status = %s, want warning", i, rec.Status())
		}
		if rec.HTTPStatus() != 503 || rec.Analysis() == "" {
			t.Fatalf("run %d probe data: status=%d analysis=%q", i, rec.HTTPStatus(), rec.Analysis())
		}
		stored, _ := fx.websites.FindByID(ctx, site.ID())
		if stored.Status() == website.StatusCritical {
			t.Fatalf("downtime confirmed after only %d failures", i+1)
		}
	}

	if _, err := fx.pipeline.Run(ctx, site, check.TypeScheduled); err != nil {
		t.Fatalf("third run: %v", err)
	}

	stored, _ := fx.websites.FindByID(ctx, site.ID())
	if stored.Status() != website.StatusCritical {
		t.Fatalf("status = %s, want critical after confirmed downtime", stored.Status())
	}
	// The error pages carried no findings; the score must not change.
	if stored.SecurityScore() != 100 {
		t.Fatalf("error pages without findings must not touch the score, got %d", stored.SecurityScore())
	}

	raised, _ := fx.alerts.FindByWebsite(ctx, site.ID(), 0)
	downtime := 0
	for _, a := range raised {
		if a.Type() == alert.TypeDowntime {
			downtime++
		}
	}
	if downtime != 1 {
		t.Fatalf("downtime alerts = %d, want exactly 1", downtime)
	}
}

func TestPipelineDiscardsResultForDeletedSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)
	ctx := context.Background()

	// Simulates deletion while the run is in flight.
	if err := fx.websites.Delete(ctx, site.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rec, err := fx.pipeline.Run(ctx, site, check.TypeManual)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec != nil {
		t.Fatal("deleted site must not get a check row")
	}

	checks, _ := fx.checks.FindByWebsite(ctx, site.ID(), 0)
	if len(checks) != 0 {
		t.Fatalf("orphaned check rows: %d", len(checks))
	}
}

func TestPipelineErrorPageStillAnalyzed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html><title>Index of /</title><body><a href=\"/etc/\">etc/</a></body></html>"))
	}))
	defer srv.Close()

	mod := &staticModule{findings: &analyzer.Findings{
		Vulnerabilities: []*finding.CodeVulnerability{{
			VulnerabilityType: "directory_listing",
			Location:          "/",
			Severity:          finding.SeverityHigh,
			Description:       "directory listing exposed",
		}},
	}}
	fx := newPipelineFixture(t, mod)
	site := registerSite(t, fx, srv.URL)
	ctx := context.Background()

	rec, err := fx.pipeline.Run(ctx, site, check.TypeManual)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Status() != check.StatusWarning || rec.HTTPStatus() != 404 {
		t.Fatalf("check = status %s httpStatus %d, want warning 404", rec.Status(), rec.HTTPStatus())
	}
	if rec.Analysis() == "" || rec.ContentHash() == "" {
		t.Fatal("error page must still be captured and analyzed")
	}

	vulns, err := fx.findings.FindVulnerabilities(ctx, site.ID(), false)
	if err != nil {
		t.Fatalf("FindVulnerabilities: %v", err)
	}
	if len(vulns) != 1 {
		t.Fatalf("persisted vulnerabilities = %d, want 1", len(vulns))
	}

	stored, _ := fx.websites.FindByID(ctx, site.ID())
	if stored.SecurityScore() != 85 || stored.Status() != website.StatusWarning {
		t.Fatalf("site outcome: status=%s score=%d", stored.Status(), stored.SecurityScore())
	}
}

func TestPipelineFourXXNeverConfirmsDowntime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		rec, err := fx.pipeline.Run(ctx, site, check.TypeScheduled)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if rec.Status() != check.StatusWarning {
			t.Fatalf("check status = %s, want warning", rec.Status())
		}
	}

	raised, _ := fx.alerts.FindByWebsite(ctx, site.ID(), 0)
	for _, a := range raised {
		if a.Type() == alert.TypeDowntime {
			t.Fatal("4xx responses must never confirm downtime")
		}
	}
}

func TestPipelineTransportFailureRecordsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)
	ctx := context.Background()

	rec, err := fx.pipeline.Run(ctx, site, check.TypeScheduled)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Status() != check.StatusError || rec.HTTPStatus() != 0 {
		t.Fatalf("check = status %s httpStatus %d, want error 0", rec.Status(), rec.HTTPStatus())
	}

	// No exchange, no analysis, no score movement.
	stored, _ := fx.websites.FindByID(ctx, site.ID())
	if stored.SecurityScore() != 100 || stored.Status() != website.StatusUnknown {
		t.Fatalf("site outcome: status=%s score=%d", stored.Status(), stored.SecurityScore())
	}
	if stored.LastCheckAt().IsZero() {
		t.Fatal("failed run must still stamp the check time")
	}
}

// Package application wires repositories, the pipeline and the services into
// one container used by both the server and the CLI.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abodks10-ai/Pred-Guard/internal/alerting"
	alertapp "github.com/abodks10-ai/Pred-Guard/internal/application/alerts"
	analysisapp "github.com/abodks10-ai/Pred-Guard/internal/application/analysis"
	dashboardapp "github.com/abodks10-ai/Pred-Guard/internal/application/dashboard"
	websiteapp "github.com/abodks10-ai/Pred-Guard/internal/application/websites"
	"github.com/abodks10-ai/Pred-Guard/internal/analyzer"
	"github.com/abodks10-ai/Pred-Guard/internal/defense"
	alertdom "github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	checkdom "github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	defensedom "github.com/abodks10-ai/Pred-Guard/internal/domain/defense"
	findingdom "github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	websitedom "github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/infrastructure/persistence/memory"
	"github.com/abodks10-ai/Pred-Guard/internal/infrastructure/persistence/postgres"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
	"github.com/abodks10-ai/Pred-Guard/internal/monitor"
	"github.com/abodks10-ai/Pred-Guard/internal/notify"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
	"github.com/abodks10-ai/Pred-Guard/internal/scoring"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// Config is the runtime configuration consumed by NewContainer. Empty feed
// endpoints degrade the matching analyzer to no findings; an empty
// DatabaseDSN selects the in-memory stores.
type Config struct {
	DatabaseDSN string

	ProbeTimeout    time.Duration
	OutboundRPS     int
	UserAgent       string
	AnalyzerTimeout time.Duration

	SmoothingAlpha     float64
	DeviationThreshold float64
	NotifyCooldown     time.Duration

	TickInterval time.Duration
	Workers      int

	ReputationEndpoint string
	TrendEndpoint      string
	CloneEndpoint      string
	BenchmarkEndpoint  string
	AIEndpoint         string
	MitigationEndpoint string

	SMTP notify.SMTPConfig

	Nameserver string
}

// Container holds the wired object graph.
type Container struct {
	Logger *zap.Logger

	WebsiteRepo websitedom.Repository
	CheckRepo   checkdom.Repository
	AlertRepo   alertdom.Repository
	FindingRepo findingdom.Repository
	DefenseRepo defensedom.Repository

	Pipeline  *monitor.Pipeline
	Scheduler *monitor.Scheduler
	Defender  *defense.Orchestrator

	Websites  *websiteapp.Service
	Alerts    *alertapp.Service
	Analysis  *analysisapp.Service
	Dashboard *dashboardapp.Service

	pool *pgxpool.Pool
}

// NewContainer builds the full graph. The caller owns Close.
func NewContainer(ctx context.Context, cfg Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{Logger: logger}

	if cfg.DatabaseDSN != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := postgres.Migrate(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		c.pool = pool
		c.WebsiteRepo = postgres.NewWebsiteRepository(pool)
		c.CheckRepo = postgres.NewCheckRepository(pool)
		c.AlertRepo = postgres.NewAlertRepository(pool)
		c.FindingRepo = postgres.NewFindingRepository(pool)
		c.DefenseRepo = postgres.NewDefenseRepository(pool)
	} else {
		websiteRepo := memory.NewWebsiteRepository()
		checkRepo := memory.NewCheckRepository()
		alertRepo := memory.NewAlertRepository()
		findingRepo := memory.NewFindingRepository()
		defenseRepo := memory.NewDefenseRepository()
		websiteRepo.AttachCascades(checkRepo, alertRepo, findingRepo, defenseRepo)
		alertRepo.SetOwnerResolver(func(websiteID int64) (int64, bool) {
			w, err := websiteRepo.FindByID(ctx, websiteID)
			if err != nil {
				return 0, false
			}
			return w.UserID(), true
		})
		c.WebsiteRepo = websiteRepo
		c.CheckRepo = checkRepo
		c.AlertRepo = alertRepo
		c.FindingRepo = findingRepo
		c.DefenseRepo = defenseRepo
	}

	rps := cfg.OutboundRPS
	if rps <= 0 {
		rps = constants.DefaultOutboundRPS
	}
	limiter := rate.NewLimiter(rate.Limit(rps), rps)

	proberOpts := []probe.Option{probe.WithLimiter(limiter)}
	if cfg.ProbeTimeout > 0 {
		proberOpts = append(proberOpts, probe.WithTimeout(cfg.ProbeTimeout))
	}
	if cfg.UserAgent != "" {
		proberOpts = append(proberOpts, probe.WithUserAgent(cfg.UserAgent))
	}
	prober := probe.NewClient(proberOpts...)

	feeds := intel.NewHTTPFeeds(cfg.AnalyzerTimeout, limiter)
	feeds.ReputationURL = cfg.ReputationEndpoint
	feeds.TrendsURL = cfg.TrendEndpoint
	feeds.ClonesURL = cfg.CloneEndpoint
	feeds.BenchmarkURL = cfg.BenchmarkEndpoint
	feeds.AIAnalysisURL = cfg.AIEndpoint
	feeds.MitigationURL = cfg.MitigationEndpoint

	modules := []analyzer.Module{
		analyzer.NewVulnScanner(cfg.Nameserver),
		analyzer.NewLinkDetector(feeds),
		analyzer.NewBehaviorComparator(cfg.SmoothingAlpha, cfg.DeviationThreshold),
		analyzer.NewAttackPredictor(feeds),
		analyzer.NewPhishingDetector(feeds),
	}
	// The AI module errors without an endpoint, so it only joins the suite
	// when configured.
	if cfg.AIEndpoint != "" {
		modules = append(modules, analyzer.NewAIAnalysis(feeds))
	}
	suite := analyzer.NewSuite(logger, cfg.AnalyzerTimeout, modules...)

	var notifier alerting.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notify.NewEmailSender(cfg.SMTP, logger)
	}
	emitter := alerting.NewEmitter(c.AlertRepo, c.CheckRepo, notifier, logger, cfg.NotifyCooldown)

	// Without a mitigation endpoint the orchestrator cannot execute anything;
	// automatic reactions are disabled rather than guaranteed to fail.
	var mitigator intel.Mitigator
	if cfg.MitigationEndpoint != "" {
		mitigator = feeds
	}
	c.Defender = defense.NewOrchestrator(c.DefenseRepo, c.AlertRepo, c.WebsiteRepo, mitigator, logger)

	c.Pipeline = monitor.NewPipeline(monitor.PipelineDeps{
		Websites:    c.WebsiteRepo,
		Checks:      c.CheckRepo,
		Alerts:      c.AlertRepo,
		Findings:    c.FindingRepo,
		Prober:      prober,
		Suite:       suite,
		Resolver:    scoring.NewResolver(cfg.DeviationThreshold),
		Benchmarker: analyzer.NewBenchmarker(feeds),
		Emitter:     emitter,
		Defender:    c.Defender,
		Logger:      logger,
	})
	c.Scheduler = monitor.NewScheduler(c.WebsiteRepo, c.Pipeline, logger, cfg.TickInterval, cfg.Workers)

	c.Websites = websiteapp.NewService(c.WebsiteRepo, c.CheckRepo, c.Scheduler)
	c.Alerts = alertapp.NewService(c.AlertRepo)
	c.Analysis = analysisapp.NewService(c.WebsiteRepo, c.FindingRepo)
	c.Dashboard = dashboardapp.NewService(c.WebsiteRepo, c.AlertRepo)

	return c, nil
}

// Ping verifies the backing store is reachable.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool != nil {
		return c.pool.Ping(ctx)
	}
	return nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

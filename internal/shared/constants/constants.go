package constants

import "time"

const (
	// DefaultProbeTimeout bounds a single website fetch.
	DefaultProbeTimeout = 15 * time.Second
	// DefaultAnalyzerTimeout bounds each analyzer module independently so one
	// slow external dependency cannot stall the whole run.
	DefaultAnalyzerTimeout = 10 * time.Second
	// DefaultMaxRedirects caps redirect chains followed by the probe client.
	DefaultMaxRedirects = 5
	// RawCaptureLimitBytes caps how many bytes of a response body we keep on a
	// monitoring check record.
	RawCaptureLimitBytes = 2048
	// MaxBodyBytes caps how much of a response body the probe reads at all.
	MaxBodyBytes = 2 * 1024 * 1024
)

const (
	// DefaultSmoothingAlpha is the EWMA weight applied to the current behavior
	// pattern when updating a baseline.
	DefaultSmoothingAlpha = 0.2
	// DefaultDeviationThreshold is the 0-100 deviation score above which a
	// behavior pattern is flagged anomalous.
	DefaultDeviationThreshold = 50.0
	// CloneSimilarityThreshold is the 0-100 similarity above which a candidate
	// is treated as a strong phishing clone signal.
	CloneSimilarityThreshold = 80
	// CloneCriticalSimilarity is the similarity at which a clone counts as a
	// critical finding rather than a high one.
	CloneCriticalSimilarity = 95
	// PredictionTTL is how long an attack prediction stays active by default.
	PredictionTTL = 7 * 24 * time.Hour
	// TLSSoonExpiryWindow warns owners when a certificate expires inside this window.
	TLSSoonExpiryWindow = 14 * 24 * time.Hour
)

const (
	// NotifyCooldown is the minimum interval before re-notifying on an
	// equivalent non-critical alert. Critical alerts bypass the cool-down.
	NotifyCooldown = time.Hour
	// DowntimeThreshold is how many consecutive 5xx probes confirm downtime.
	DowntimeThreshold = 3
	// SlowResponseMs flags a performance finding above this response time.
	SlowResponseMs = 5000
)

const (
	// DefaultTickInterval is the scheduler cadence.
	DefaultTickInterval = time.Minute
	// DefaultWorkers is the scheduler worker pool size.
	DefaultWorkers = 4
	// DefaultOutboundRPS caps outbound HTTP requests across all workers.
	DefaultOutboundRPS = 10
)

// CheckIntervals is the closed set of allowed per-website check intervals in
// minutes.
var CheckIntervals = []int{5, 10, 15, 30, 60}

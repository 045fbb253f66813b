// Package finding holds the typed outputs of the analyzer suite. Each struct
// mirrors one persisted table scoped to a website; rows are generally
// immutable except for a status/fixed flag transition.
package finding

import "time"

// Severity levels shared by findings. Kept as plain strings to match the
// alert severity taxonomy.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// CodeVulnerability is a weakness detected from response headers, body
// signatures or technology fingerprints.
type CodeVulnerability struct {
	ID                int64
	WebsiteID         int64
	VulnerabilityType string
	Location          string
	Severity          string
	Description       string
	CodeSnippet       string
	Recommendation    string
	Fixed             bool
	DetectedAt        time.Time
	FixedAt           time.Time
}

// LinkType classifies where/how a link is embedded.
type LinkType string

const (
	LinkExternal LinkType = "external"
	LinkInternal LinkType = "internal"
	LinkScript   LinkType = "script"
	LinkIframe   LinkType = "iframe"
	LinkRedirect LinkType = "redirect"
)

// ThreatType classifies a malicious link's reputation verdict.
type ThreatType string

const (
	ThreatPhishing   ThreatType = "phishing"
	ThreatMalware    ThreatType = "malware"
	ThreatSpam       ThreatType = "spam"
	ThreatSuspicious ThreatType = "suspicious"
	ThreatUnknown    ThreatType = "unknown"
)

// MaliciousLink is an extracted link flagged by the reputation feed.
type MaliciousLink struct {
	ID         int64
	WebsiteID  int64
	LinkURL    string
	FoundIn    string
	LinkType   LinkType
	ThreatType ThreatType
	Active     bool
	DetectedAt time.Time
	VerifiedAt time.Time
}

// FingerprintType names the behavioral dimension a baseline tracks.
type FingerprintType string

const (
	FingerprintTraffic FingerprintType = "traffic"
	FingerprintFile    FingerprintType = "file"
	FingerprintRequest FingerprintType = "request"
	FingerprintUser    FingerprintType = "user"
)

// BehaviorFingerprint is a per-website baseline pattern plus the most recent
// observation and deviation score. The baseline is exponentially weighted and
// never fully overwritten.
type BehaviorFingerprint struct {
	ID              int64
	WebsiteID       int64
	FingerprintType FingerprintType
	Baseline        []float64
	CurrentPattern  []float64
	DeviationScore  float64
	Anomalous       bool
	LastUpdated     time.Time
	CreatedAt       time.Time
}

// PredictionType names the source of an attack prediction.
type PredictionType string

const (
	PredictionGlobalTrend   PredictionType = "global_trend"
	PredictionTargeted      PredictionType = "targeted"
	PredictionChainAnalysis PredictionType = "chain_analysis"
)

// AttackPrediction is a time-bounded forecast. Expired predictions must be
// excluded from active queries.
type AttackPrediction struct {
	ID                  int64
	WebsiteID           int64
	PredictionType      PredictionType
	ThreatLevel         string
	PredictedAttackType string
	Probability         int // 0-100
	Timeframe           string
	Reasoning           string
	PreventiveMeasures  []string
	Active              bool
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

// Expired reports whether the prediction has passed its expiry.
func (p AttackPrediction) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && p.ExpiresAt.Before(now)
}

// AttackerPattern is an aggregated profile of a recurring adversary, upserted
// by pattern hash.
type AttackerPattern struct {
	ID            int64
	WebsiteID     int64
	PatternHash   string
	Profile       string
	Techniques    []string
	TargetedAreas []string
	FirstSeen     time.Time
	LastSeen      time.Time
	AttackCount   int
	ThreatLevel   string
}

// ChangeType classifies a detected file/content change.
type ChangeType string

const (
	ChangeAdded      ChangeType = "added"
	ChangeModified   ChangeType = "modified"
	ChangeDeleted    ChangeType = "deleted"
	ChangeSuspicious ChangeType = "suspicious"
)

// FileChange records a shift in fetched content between checks.
type FileChange struct {
	ID              int64
	WebsiteID       int64
	FilePath        string
	ChangeType      ChangeType
	PreviousHash    string
	CurrentHash     string
	SizeDifference  int
	Suspicious      bool
	SuspicionReason string
	DetectedAt      time.Time
}

// CloneType classifies how a phishing clone imitates the site.
type CloneType string

const (
	CloneDomainTypo  CloneType = "domain_typo"
	CloneVisual      CloneType = "visual_clone"
	CloneContentCopy CloneType = "content_copy"
	CloneBrandAbuse  CloneType = "brand_abuse"
)

// PhishingClone is a candidate site imitating the monitored one.
type PhishingClone struct {
	ID              int64
	WebsiteID       int64
	CloneURL        string
	SimilarityScore int // 0-100
	CloneType       CloneType
	Status          string // active|taken_down|monitoring
	DetectedAt      time.Time
	ReportedAt      time.Time
}

// VisitorType classifies an observed visitor session.
type VisitorType string

const (
	VisitorHuman    VisitorType = "human"
	VisitorBot      VisitorType = "bot"
	VisitorCrawler  VisitorType = "crawler"
	VisitorAttacker VisitorType = "attacker"
	VisitorUnknown  VisitorType = "unknown"
)

// VisitorAnalysis aggregates per-session behavior classification.
type VisitorAnalysis struct {
	ID                int64
	WebsiteID         int64
	SessionID         string
	VisitorType       VisitorType
	Intent            string // legitimate|suspicious|malicious|scanning
	BehaviorScore     int
	SourceIP          string
	UserAgent         string
	RequestCount      int
	SuspiciousActions []string
	FirstSeen         time.Time
	LastSeen          time.Time
}

// ServiceType classifies a directly linked third-party resource.
type ServiceType string

const (
	ServiceAPI       ServiceType = "api"
	ServiceCDN       ServiceType = "cdn"
	ServiceAnalytics ServiceType = "analytics"
	ServicePayment   ServiceType = "payment"
	ServiceAuth      ServiceType = "auth"
	ServiceOther     ServiceType = "other"
)

// ExternalService tracks the health of a third-party resource the page loads.
type ExternalService struct {
	ID             int64
	WebsiteID      int64
	ServiceURL     string
	ServiceType    ServiceType
	Status         string // healthy|degraded|down|unknown
	LastCheckAt    time.Time
	ResponseTime   int
	SecurityIssues []string
	CreatedAt      time.Time
}

// SecurityBenchmark compares a website's posture against industry aggregates.
// Industry average and percentile are supplied by an external data source.
type SecurityBenchmark struct {
	ID              int64
	WebsiteID       int64
	OverallScore    int
	IndustryAverage int
	PercentileRank  int
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
	ComparedAt      time.Time
}

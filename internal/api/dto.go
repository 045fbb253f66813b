package api

import (
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/application/analysis"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/defense"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
)

// Response DTOs. Domain aggregates keep their fields unexported, so the API
// layer owns the serialized shape.

type websiteResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	URL           string     `json:"url"`
	Name          string     `json:"name"`
	NotifyEmail   string     `json:"notify_email"`
	Active        bool       `json:"active"`
	CheckInterval int        `json:"check_interval"`
	Status        string     `json:"status"`
	SecurityScore int        `json:"security_score"`
	LastCheckAt   *time.Time `json:"last_check_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toWebsiteResponse(w *website.Website) websiteResponse {
	return websiteResponse{
		ID:            w.ID(),
		UserID:        w.UserID(),
		URL:           w.URL(),
		Name:          w.Name(),
		NotifyEmail:   w.NotifyEmail(),
		Active:        w.Active(),
		CheckInterval: w.CheckInterval(),
		Status:        string(w.Status()),
		SecurityScore: w.SecurityScore(),
		LastCheckAt:   optionalTime(w.LastCheckAt()),
		CreatedAt:     w.CreatedAt(),
		UpdatedAt:     w.UpdatedAt(),
	}
}

type checkResponse struct {
	ID           int64     `json:"id"`
	WebsiteID    int64     `json:"website_id"`
	CheckType    string    `json:"check_type"`
	Status       string    `json:"status"`
	ResponseTime int       `json:"response_time_ms"`
	HTTPStatus   int       `json:"http_status"`
	ContentHash  string    `json:"content_hash,omitempty"`
	Analysis     string    `json:"analysis,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCheckResponse(c *check.MonitoringCheck) checkResponse {
	return checkResponse{
		ID:           c.ID(),
		WebsiteID:    c.WebsiteID(),
		CheckType:    string(c.CheckType()),
		Status:       string(c.Status()),
		ResponseTime: c.ResponseTime(),
		HTTPStatus:   c.HTTPStatus(),
		ContentHash:  c.ContentHash(),
		Analysis:     c.Analysis(),
		CreatedAt:    c.CreatedAt(),
	}
}

type alertResponse struct {
	ID          int64         `json:"id"`
	WebsiteID   int64         `json:"website_id"`
	CheckID     int64         `json:"check_id,omitempty"`
	Severity    string        `json:"severity"`
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Details     alert.Details `json:"details,omitempty"`
	Read        bool          `json:"read"`
	EmailSent   bool          `json:"email_sent"`
	EmailSentAt *time.Time    `json:"email_sent_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func toAlertResponse(a *alert.Alert) alertResponse {
	return alertResponse{
		ID:          a.ID(),
		WebsiteID:   a.WebsiteID(),
		CheckID:     a.CheckID(),
		Severity:    string(a.Severity()),
		Type:        string(a.Type()),
		Title:       a.Title(),
		Description: a.Description(),
		Details:     a.Details(),
		Read:        a.Read(),
		EmailSent:   a.EmailSent(),
		EmailSentAt: optionalTime(a.EmailSentAt()),
		CreatedAt:   a.CreatedAt(),
	}
}

type actionResponse struct {
	ID            int64      `json:"id"`
	WebsiteID     int64      `json:"website_id"`
	AlertID       int64      `json:"alert_id,omitempty"`
	ActionType    string     `json:"action_type"`
	TargetDetails string     `json:"target_details,omitempty"`
	Status        string     `json:"status"`
	Automatic     bool       `json:"automatic"`
	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
	RevertedAt    *time.Time `json:"reverted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toActionResponse(a *defense.Action) actionResponse {
	return actionResponse{
		ID:            a.ID(),
		WebsiteID:     a.WebsiteID(),
		AlertID:       a.AlertID(),
		ActionType:    string(a.ActionType()),
		TargetDetails: a.TargetDetails(),
		Status:        string(a.Status()),
		Automatic:     a.Automatic(),
		ExecutedAt:    optionalTime(a.ExecutedAt()),
		RevertedAt:    optionalTime(a.RevertedAt()),
		CreatedAt:     a.CreatedAt(),
	}
}

type vulnerabilityResponse struct {
	ID                int64      `json:"id"`
	VulnerabilityType string     `json:"vulnerability_type"`
	Location          string     `json:"location"`
	Severity          string     `json:"severity"`
	Description       string     `json:"description"`
	CodeSnippet       string     `json:"code_snippet,omitempty"`
	Recommendation    string     `json:"recommendation,omitempty"`
	Fixed             bool       `json:"fixed"`
	DetectedAt        time.Time  `json:"detected_at"`
	FixedAt           *time.Time `json:"fixed_at,omitempty"`
}

type maliciousLinkResponse struct {
	ID         int64     `json:"id"`
	LinkURL    string    `json:"link_url"`
	FoundIn    string    `json:"found_in"`
	LinkType   string    `json:"link_type"`
	ThreatType string    `json:"threat_type"`
	Active     bool      `json:"active"`
	DetectedAt time.Time `json:"detected_at"`
}

type fingerprintResponse struct {
	ID              int64     `json:"id"`
	FingerprintType string    `json:"fingerprint_type"`
	Baseline        []float64 `json:"baseline"`
	CurrentPattern  []float64 `json:"current_pattern"`
	DeviationScore  float64   `json:"deviation_score"`
	Anomalous       bool      `json:"anomalous"`
	LastUpdated     time.Time `json:"last_updated"`
}

type predictionResponse struct {
	ID                  int64     `json:"id"`
	PredictionType      string    `json:"prediction_type"`
	ThreatLevel         string    `json:"threat_level"`
	PredictedAttackType string    `json:"predicted_attack_type"`
	Probability         int       `json:"probability"`
	Timeframe           string    `json:"timeframe"`
	Reasoning           string    `json:"reasoning"`
	PreventiveMeasures  []string  `json:"preventive_measures"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
}

type attackerPatternResponse struct {
	ID            int64     `json:"id"`
	PatternHash   string    `json:"pattern_hash"`
	Profile       string    `json:"profile"`
	Techniques    []string  `json:"techniques"`
	TargetedAreas []string  `json:"targeted_areas"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	AttackCount   int       `json:"attack_count"`
	ThreatLevel   string    `json:"threat_level"`
}

type fileChangeResponse struct {
	ID              int64     `json:"id"`
	FilePath        string    `json:"file_path"`
	ChangeType      string    `json:"change_type"`
	PreviousHash    string    `json:"previous_hash,omitempty"`
	CurrentHash     string    `json:"current_hash"`
	SizeDifference  int       `json:"size_difference"`
	Suspicious      bool      `json:"suspicious"`
	SuspicionReason string    `json:"suspicion_reason,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
}

type phishingCloneResponse struct {
	ID              int64     `json:"id"`
	CloneURL        string    `json:"clone_url"`
	SimilarityScore int       `json:"similarity_score"`
	CloneType       string    `json:"clone_type"`
	Status          string    `json:"status"`
	DetectedAt      time.Time `json:"detected_at"`
}

type visitorResponse struct {
	ID                int64     `json:"id"`
	SessionID         string    `json:"session_id"`
	VisitorType       string    `json:"visitor_type"`
	Intent            string    `json:"intent"`
	BehaviorScore     int       `json:"behavior_score"`
	SourceIP          string    `json:"source_ip,omitempty"`
	UserAgent         string    `json:"user_agent,omitempty"`
	RequestCount      int       `json:"request_count"`
	SuspiciousActions []string  `json:"suspicious_actions,omitempty"`
	FirstSeen         time.Time `json:"first_seen"`
	LastSeen          time.Time `json:"last_seen"`
}

type externalServiceResponse struct {
	ID             int64     `json:"id"`
	ServiceURL     string    `json:"service_url"`
	ServiceType    string    `json:"service_type"`
	Status         string    `json:"status"`
	ResponseTime   int       `json:"response_time_ms"`
	SecurityIssues []string  `json:"security_issues,omitempty"`
	LastCheckAt    time.Time `json:"last_check_at"`
}

type benchmarkResponse struct {
	OverallScore    int       `json:"overall_score"`
	IndustryAverage int       `json:"industry_average"`
	PercentileRank  int       `json:"percentile_rank"`
	Strengths       []string  `json:"strengths"`
	Weaknesses      []string  `json:"weaknesses"`
	Recommendations []string  `json:"recommendations"`
	ComparedAt      time.Time `json:"compared_at"`
}

type analysisResponse struct {
	Website          websiteResponse           `json:"website"`
	Vulnerabilities  []vulnerabilityResponse   `json:"vulnerabilities"`
	MaliciousLinks   []maliciousLinkResponse   `json:"malicious_links"`
	Fingerprints     []fingerprintResponse     `json:"fingerprints"`
	Predictions      []predictionResponse      `json:"predictions"`
	AttackerPatterns []attackerPatternResponse `json:"attacker_patterns"`
	FileChanges      []fileChangeResponse      `json:"file_changes"`
	PhishingClones   []phishingCloneResponse   `json:"phishing_clones"`
	Visitors         []visitorResponse         `json:"visitors"`
	ExternalServices []externalServiceResponse `json:"external_services"`
	Benchmark        *benchmarkResponse        `json:"benchmark,omitempty"`
}

func toAnalysisResponse(r *analysis.Report) analysisResponse {
	out := analysisResponse{
		Website:          toWebsiteResponse(r.Website),
		Vulnerabilities:  make([]vulnerabilityResponse, 0, len(r.Vulnerabilities)),
		MaliciousLinks:   make([]maliciousLinkResponse, 0, len(r.MaliciousLinks)),
		Fingerprints:     make([]fingerprintResponse, 0, len(r.Fingerprints)),
		Predictions:      make([]predictionResponse, 0, len(r.Predictions)),
		AttackerPatterns: make([]attackerPatternResponse, 0, len(r.AttackerPatterns)),
		FileChanges:      make([]fileChangeResponse, 0, len(r.FileChanges)),
		PhishingClones:   make([]phishingCloneResponse, 0, len(r.PhishingClones)),
		Visitors:         make([]visitorResponse, 0, len(r.Visitors)),
		ExternalServices: make([]externalServiceResponse, 0, len(r.ExternalServices)),
	}
	for _, v := range r.Vulnerabilities {
		out.Vulnerabilities = append(out.Vulnerabilities, vulnerabilityResponse{
			ID:                v.ID,
			VulnerabilityType: v.VulnerabilityType,
			Location:          v.Location,
			Severity:          v.Severity,
			Description:       v.Description,
			CodeSnippet:       v.CodeSnippet,
			Recommendation:    v.Recommendation,
			Fixed:             v.Fixed,
			DetectedAt:        v.DetectedAt,
			FixedAt:           optionalTime(v.FixedAt),
		})
	}
	for _, l := range r.MaliciousLinks {
		out.MaliciousLinks = append(out.MaliciousLinks, maliciousLinkResponse{
			ID:         l.ID,
			LinkURL:    l.LinkURL,
			FoundIn:    l.FoundIn,
			LinkType:   string(l.LinkType),
			ThreatType: string(l.ThreatType),
			Active:     l.Active,
			DetectedAt: l.DetectedAt,
		})
	}
	for _, f := range r.Fingerprints {
		out.Fingerprints = append(out.Fingerprints, fingerprintResponse{
			ID:              f.ID,
			FingerprintType: string(f.FingerprintType),
			Baseline:        f.Baseline,
			CurrentPattern:  f.CurrentPattern,
			DeviationScore:  f.DeviationScore,
			Anomalous:       f.Anomalous,
			LastUpdated:     f.LastUpdated,
		})
	}
	for _, p := range r.Predictions {
		out.Predictions = append(out.Predictions, predictionResponse{
			ID:                  p.ID,
			PredictionType:      string(p.PredictionType),
			ThreatLevel:         p.ThreatLevel,
			PredictedAttackType: p.PredictedAttackType,
			Probability:         p.Probability,
			Timeframe:           p.Timeframe,
			Reasoning:           p.Reasoning,
			PreventiveMeasures:  p.PreventiveMeasures,
			ExpiresAt:           p.ExpiresAt,
			CreatedAt:           p.CreatedAt,
		})
	}
	for _, p := range r.AttackerPatterns {
		out.AttackerPatterns = append(out.AttackerPatterns, attackerPatternResponse{
			ID:            p.ID,
			PatternHash:   p.PatternHash,
			Profile:       p.Profile,
			Techniques:    p.Techniques,
			TargetedAreas: p.TargetedAreas,
			FirstSeen:     p.FirstSeen,
			LastSeen:      p.LastSeen,
			AttackCount:   p.AttackCount,
			ThreatLevel:   p.ThreatLevel,
		})
	}
	for _, c := range r.FileChanges {
		out.FileChanges = append(out.FileChanges, fileChangeResponse{
			ID:              c.ID,
			FilePath:        c.FilePath,
			ChangeType:      string(c.ChangeType),
			PreviousHash:    c.PreviousHash,
			CurrentHash:     c.CurrentHash,
			SizeDifference:  c.SizeDifference,
			Suspicious:      c.Suspicious,
			SuspicionReason: c.SuspicionReason,
			DetectedAt:      c.DetectedAt,
		})
	}
	for _, c := range r.PhishingClones {
		out.PhishingClones = append(out.PhishingClones, phishingCloneResponse{
			ID:              c.ID,
			CloneURL:        c.CloneURL,
			SimilarityScore: c.SimilarityScore,
			CloneType:       string(c.CloneType),
			Status:          c.Status,
			DetectedAt:      c.DetectedAt,
		})
	}
	for _, v := range r.Visitors {
		out.Visitors = append(out.Visitors, visitorResponse{
			ID:                v.ID,
			SessionID:         v.SessionID,
			VisitorType:       string(v.VisitorType),
			Intent:            v.Intent,
			BehaviorScore:     v.BehaviorScore,
			SourceIP:          v.SourceIP,
			UserAgent:         v.UserAgent,
			RequestCount:      v.RequestCount,
			SuspiciousActions: v.SuspiciousActions,
			FirstSeen:         v.FirstSeen,
			LastSeen:          v.LastSeen,
		})
	}
	for _, s := range r.ExternalServices {
		out.ExternalServices = append(out.ExternalServices, externalServiceResponse{
			ID:             s.ID,
			ServiceURL:     s.ServiceURL,
			ServiceType:    string(s.ServiceType),
			Status:         s.Status,
			ResponseTime:   s.ResponseTime,
			SecurityIssues: s.SecurityIssues,
			LastCheckAt:    s.LastCheckAt,
		})
	}
	if r.Benchmark != nil {
		out.Benchmark = &benchmarkResponse{
			OverallScore:    r.Benchmark.OverallScore,
			IndustryAverage: r.Benchmark.IndustryAverage,
			PercentileRank:  r.Benchmark.PercentileRank,
			Strengths:       r.Benchmark.Strengths,
			Weaknesses:      r.Benchmark.Weaknesses,
			Recommendations: r.Benchmark.Recommendations,
			ComparedAt:      r.Benchmark.ComparedAt,
		}
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

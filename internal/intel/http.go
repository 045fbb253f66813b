package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
)

// HTTPFeeds bundles JSON-over-HTTP implementations of the collaborator
// contracts against configured endpoints. A zero endpoint disables the
// corresponding feed: lookups return empty data rather than errors so a
// missing collaborator degrades gracefully.
type HTTPFeeds struct {
	ReputationURL string
	TrendsURL     string
	ClonesURL     string
	BenchmarkURL  string
	AIAnalysisURL string
	MitigationURL string

	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPFeeds builds feed clients with a shared bounded transport.
func NewHTTPFeeds(timeout time.Duration, limiter *rate.Limiter) *HTTPFeeds {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFeeds{
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (f *HTTPFeeds) getJSON(ctx context.Context, rawURL string, out any) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed %s: unexpected status %d", req.URL.Host, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Lookup implements ReputationService.
func (f *HTTPFeeds) Lookup(ctx context.Context, target string) (LinkVerdict, error) {
	if f.ReputationURL == "" {
		return LinkVerdict{ThreatType: finding.ThreatUnknown}, nil
	}
	var body struct {
		Malicious  bool   `json:"malicious"`
		ThreatType string `json:"threat_type"`
	}
	u := f.ReputationURL + "?url=" + url.QueryEscape(target)
	if err := f.getJSON(ctx, u, &body); err != nil {
		return LinkVerdict{}, err
	}
	verdict := LinkVerdict{Malicious: body.Malicious, ThreatType: finding.ThreatType(body.ThreatType)}
	switch verdict.ThreatType {
	case finding.ThreatPhishing, finding.ThreatMalware, finding.ThreatSpam, finding.ThreatSuspicious:
	default:
		verdict.ThreatType = finding.ThreatUnknown
	}
	return verdict, nil
}

// CurrentTrends implements TrendFeed.
func (f *HTTPFeeds) CurrentTrends(ctx context.Context) ([]AttackTrend, error) {
	if f.TrendsURL == "" {
		return nil, nil
	}
	var trends []AttackTrend
	if err := f.getJSON(ctx, f.TrendsURL, &trends); err != nil {
		return nil, err
	}
	return trends, nil
}

// Candidates implements CloneFeed.
func (f *HTTPFeeds) Candidates(ctx context.Context, domain string) ([]CloneCandidate, error) {
	if f.ClonesURL == "" {
		return nil, nil
	}
	var candidates []CloneCandidate
	u := f.ClonesURL + "?domain=" + url.QueryEscape(domain)
	if err := f.getJSON(ctx, u, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// IndustryStats implements BenchmarkFeed.
func (f *HTTPFeeds) IndustryStats(ctx context.Context, score int) (int, int, error) {
	if f.BenchmarkURL == "" {
		return 0, 0, nil
	}
	var body struct {
		Average    int `json:"average"`
		Percentile int `json:"percentile"`
	}
	u := fmt.Sprintf("%s?score=%d", f.BenchmarkURL, score)
	if err := f.getJSON(ctx, u, &body); err != nil {
		return 0, 0, err
	}
	return body.Average, body.Percentile, nil
}

// Analyze implements AIAnalyzer. The response is validated before it crosses
// the boundary.
func (f *HTTPFeeds) Analyze(ctx context.Context, content SiteContent) (*AIReport, error) {
	if f.AIAnalysisURL == "" {
		return nil, fmt.Errorf("ai analysis endpoint not configured")
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	payload, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.AIAnalysisURL, jsonBody(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai analysis: unexpected status %d", resp.StatusCode)
	}
	var report AIReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}

// Execute implements Mitigator.
func (f *HTTPFeeds) Execute(ctx context.Context, m Mitigation) error {
	if f.MitigationURL == "" {
		return fmt.Errorf("mitigation endpoint not configured")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.MitigationURL, jsonBody(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mitigation: unexpected status %d", resp.StatusCode)
	}
	return nil
}

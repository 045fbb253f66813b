package analyzer

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// PhishingDetector scores clone candidates supplied by the clone feed against
// the monitored site. Candidates at or above the similarity threshold are
// recorded; the strongest signals (identical content, one-keystroke domains)
// saturate the score.
type PhishingDetector struct {
	clones intel.CloneFeed
}

func NewPhishingDetector(clones intel.CloneFeed) *PhishingDetector {
	return &PhishingDetector{clones: clones}
}

func (d *PhishingDetector) Name() string { return "phishing" }

func (d *PhishingDetector) Analyze(ctx context.Context, in Input) (*Findings, error) {
	out := &Findings{}
	if d.clones == nil || in.Probe == nil {
		return out, nil
	}

	parsed, err := url.Parse(in.Probe.URL)
	if err != nil || parsed.Hostname() == "" {
		return out, nil
	}
	ownDomain := registrableDomain(parsed.Hostname())

	candidates, err := d.clones.Candidates(ctx, ownDomain)
	if err != nil {
		return out, err
	}

	websiteID := int64(0)
	if in.History != nil && in.History.Website != nil {
		websiteID = in.History.Website.ID()
	}
	ownTitle := ""
	if in.Extraction != nil {
		ownTitle = in.Extraction.Title
	}

	for _, c := range candidates {
		score, cloneType := d.score(ownDomain, ownTitle, in.Probe.BodyHash, c)
		if score < constants.CloneSimilarityThreshold {
			continue
		}
		out.Clones = append(out.Clones, &finding.PhishingClone{
			WebsiteID:       websiteID,
			CloneURL:        c.URL,
			SimilarityScore: score,
			CloneType:       cloneType,
			Status:          "active",
			DetectedAt:      in.Now,
		})
	}
	return out, nil
}

func (d *PhishingDetector) score(ownDomain, ownTitle, ownHash string, c intel.CloneCandidate) (int, finding.CloneType) {
	// Identical content is the strongest possible signal.
	if ownHash != "" && c.ContentHash == ownHash {
		return 100, finding.CloneContentCopy
	}

	score := 0
	cloneType := finding.CloneBrandAbuse

	candDomain := ownDomain
	if u, err := url.Parse(c.URL); err == nil && u.Hostname() != "" {
		candDomain = registrableDomain(u.Hostname())
	}

	switch dist := levenshtein(ownDomain, candDomain); {
	case dist == 0:
		// Same registrable domain is not a clone of itself.
		return 0, cloneType
	case dist <= 2:
		score += 85
		cloneType = finding.CloneDomainTypo
	case strings.Contains(candDomain, brandToken(ownDomain)):
		score += 50
		cloneType = finding.CloneBrandAbuse
	}

	if ownTitle != "" && strings.EqualFold(strings.TrimSpace(c.Title), strings.TrimSpace(ownTitle)) {
		score += 40
		if cloneType == finding.CloneBrandAbuse && score < 85 {
			cloneType = finding.CloneVisual
		}
	}

	if score > 100 {
		score = 100
	}
	return score, cloneType
}

// brandToken is the label left of the public suffix, used to spot brand
// abuse inside longer lookalike domains.
func brandToken(domain string) string {
	if i := strings.IndexByte(domain, '.'); i > 0 {
		return domain[:i]
	}
	return domain
}

func registrableDomain(host string) string {
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// levenshtein is the classic edit distance with a rolling single row.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cur := row[j]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[j] = min3(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}
	return row[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

package analyzer

import (
	"context"
	"strings"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
)

// maxReputationLookups caps how many links are checked per run so one dense
// page cannot exhaust the reputation feed quota.
const maxReputationLookups = 25

// LinkDetector checks every extracted outbound link against the reputation
// feed and classifies the third-party services the page loads.
type LinkDetector struct {
	reputation intel.ReputationService
}

func NewLinkDetector(reputation intel.ReputationService) *LinkDetector {
	return &LinkDetector{reputation: reputation}
}

func (d *LinkDetector) Name() string { return "links" }

func (d *LinkDetector) Analyze(ctx context.Context, in Input) (*Findings, error) {
	out := &Findings{}
	if in.Extraction == nil {
		return out, nil
	}
	websiteID := int64(0)
	if in.History != nil && in.History.Website != nil {
		websiteID = in.History.Website.ID()
	}

	lookups := 0
	seen := map[string]struct{}{}
	for _, link := range in.Extraction.Links {
		// Internal links are trusted; reputation signal applies to everything
		// that leaves the site.
		if link.Type == finding.LinkInternal {
			continue
		}
		if _, dup := seen[link.URL]; dup {
			continue
		}
		seen[link.URL] = struct{}{}
		if lookups >= maxReputationLookups {
			break
		}
		lookups++

		verdict, err := d.reputation.Lookup(ctx, link.URL)
		if err != nil {
			// A feed outage degrades to "no verdict this run"; the module
			// keeps walking the remaining links.
			continue
		}
		if !verdict.Malicious {
			continue
		}
		out.MaliciousLinks = append(out.MaliciousLinks, &finding.MaliciousLink{
			WebsiteID:  websiteID,
			LinkURL:    link.URL,
			FoundIn:    link.FoundIn,
			LinkType:   link.Type,
			ThreatType: verdict.ThreatType,
			Active:     true,
			DetectedAt: in.Now,
		})
	}

	// Directly linked third-party services, classified by host. No extra
	// fetches: status stays unknown until a dedicated probe exists.
	for _, host := range in.Extraction.ExternalHosts {
		out.ExternalServices = append(out.ExternalServices, &finding.ExternalService{
			WebsiteID:   websiteID,
			ServiceURL:  "https://" + host,
			ServiceType: classifyService(host),
			Status:      "unknown",
			CreatedAt:   in.Now,
		})
	}

	return out, nil
}

// classifyService buckets a third-party host by name heuristics.
func classifyService(host string) finding.ServiceType {
	h := strings.ToLower(host)
	switch {
	case strings.Contains(h, "cdn") || strings.Contains(h, "cloudfront") ||
		strings.Contains(h, "cloudflare") || strings.Contains(h, "akamai") ||
		strings.Contains(h, "fastly") || strings.Contains(h, "jsdelivr") ||
		strings.Contains(h, "unpkg"):
		return finding.ServiceCDN
	case strings.Contains(h, "analytics") || strings.Contains(h, "googletagmanager") ||
		strings.Contains(h, "segment") || strings.Contains(h, "hotjar") ||
		strings.Contains(h, "mixpanel"):
		return finding.ServiceAnalytics
	case strings.Contains(h, "stripe") || strings.Contains(h, "paypal") ||
		strings.Contains(h, "checkout") || strings.Contains(h, "braintree"):
		return finding.ServicePayment
	case strings.Contains(h, "auth") || strings.Contains(h, "okta") ||
		strings.Contains(h, "accounts."):
		return finding.ServiceAuth
	case strings.Contains(h, "api"):
		return finding.ServiceAPI
	default:
		return finding.ServiceOther
	}
}

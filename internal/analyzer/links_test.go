package analyzer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/extract"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
)

type stubReputation struct {
	bad     map[string]finding.ThreatType
	err     error
	lookups int
}

func (s *stubReputation) Lookup(_ context.Context, url string) (intel.LinkVerdict, error) {
	s.lookups++
	if s.err != nil {
		return intel.LinkVerdict{}, s.err
	}
	if t, ok := s.bad[url]; ok {
		return intel.LinkVerdict{Malicious: true, ThreatType: t}, nil
	}
	return intel.LinkVerdict{}, nil
}

func linkInput(t *testing.T, links []extract.Link, hosts ...string) Input {
	t.Helper()
	return Input{
		Extraction: &extract.Extraction{Links: links, ExternalHosts: hosts},
		History:    &History{Website: testWebsite(t)},
		Now:        time.Now().UTC(),
	}
}

func TestLinkDetectorFlagsMaliciousExternalLinks(t *testing.T) {
	rep := &stubReputation{bad: map[string]finding.ThreatType{
		"https://evil.example.net/payload": finding.ThreatMalware,
	}}
	d := NewLinkDetector(rep)

	out, err := d.Analyze(context.Background(), linkInput(t, []extract.Link{
		{URL: "https://example.com/about", Type: finding.LinkInternal, FoundIn: "a[href]"},
		{URL: "https://evil.example.net/payload", Type: finding.LinkExternal, FoundIn: "a[href]"},
		{URL: "https://cdn.partner.net/lib.js", Type: finding.LinkScript, FoundIn: "script[src]"},
	}))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(out.MaliciousLinks) != 1 {
		t.Fatalf("malicious links = %d, want 1", len(out.MaliciousLinks))
	}
	l := out.MaliciousLinks[0]
	if l.ThreatType != finding.ThreatMalware || !l.Active || l.WebsiteID != 42 {
		t.Fatalf("finding = %+v", l)
	}
	// Internal links never consume reputation quota.
	if rep.lookups != 2 {
		t.Fatalf("lookups = %d, want 2", rep.lookups)
	}
}

func TestLinkDetectorDeduplicatesAndCapsLookups(t *testing.T) {
	rep := &stubReputation{}
	d := NewLinkDetector(rep)

	var links []extract.Link
	links = append(links, extract.Link{URL: "https://dup.example.net/x", Type: finding.LinkExternal})
	links = append(links, extract.Link{URL: "https://dup.example.net/x", Type: finding.LinkExternal})
	for i := 0; i < maxReputationLookups+10; i++ {
		links = append(links, extract.Link{
			URL:  fmt.Sprintf("https://ext%d.example.net/", i),
			Type: finding.LinkExternal,
		})
	}

	if _, err := d.Analyze(context.Background(), linkInput(t, links)); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.lookups != maxReputationLookups {
		t.Fatalf("lookups = %d, want capped at %d", rep.lookups, maxReputationLookups)
	}
}

func TestLinkDetectorDegradesOnFeedOutage(t *testing.T) {
	rep := &stubReputation{err: errors.New("feed down")}
	d := NewLinkDetector(rep)

	out, err := d.Analyze(context.Background(), linkInput(t, []extract.Link{
		{URL: "https://a.example.net/", Type: finding.LinkExternal},
	}))
	if err != nil {
		t.Fatalf("feed outage must not fail the module: %v", err)
	}
	if len(out.MaliciousLinks) != 0 {
		t.Fatalf("findings = %d, want none on outage", len(out.MaliciousLinks))
	}
}

func TestLinkDetectorClassifiesExternalServices(t *testing.T) {
	d := NewLinkDetector(&stubReputation{})

	out, err := d.Analyze(context.Background(), linkInput(t, nil,
		"cdn.jsdelivr.net", "www.googletagmanager.com", "js.stripe.com", "api.partner.net", "weird.example.org"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	got := map[string]finding.ServiceType{}
	for _, es := range out.ExternalServices {
		got[es.ServiceURL] = es.ServiceType
	}
	want := map[string]finding.ServiceType{
		"https://cdn.jsdelivr.net":         finding.ServiceCDN,
		"https://www.googletagmanager.com": finding.ServiceAnalytics,
		"https://js.stripe.com":            finding.ServicePayment,
		"https://api.partner.net":          finding.ServiceAPI,
		"https://weird.example.org":        finding.ServiceOther,
	}
	for url, svc := range want {
		if got[url] != svc {
			t.Errorf("%s classified %q, want %q", url, got[url], svc)
		}
	}
}

// Package extract parses a fetched page body into structured facts: outbound
// links, embedded scripts and iframes, file references, forms, and a
// technology fingerprint. It is a pure function of probe output; malformed
// HTML degrades to an empty extraction rather than an error.
package extract

import (
	"bytes"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	wappalyzer "github.com/projectdiscovery/wappalyzergo"
	"golang.org/x/net/publicsuffix"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
)

// Link is one outbound reference discovered on the page.
type Link struct {
	URL     string
	Type    finding.LinkType
	FoundIn string // tag context, e.g. "a[href]", "script[src]"
}

// Extraction is the structured view of one fetched page.
type Extraction struct {
	Title         string
	Links         []Link
	Scripts       []string // external script sources
	InlineScript  int      // count of inline script blocks
	Iframes       []string
	FileRefs      []string // links pointing at downloadable assets
	FormCount     int
	ExternalHosts []string // unique registrable domains referenced besides the site's own
	Technologies  []string // wappalyzer fingerprint
}

var assetExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".json": {}, ".xml": {}, ".txt": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".ico": {},
	".pdf": {}, ".zip": {}, ".tar": {}, ".gz": {}, ".rar": {},
	".exe": {}, ".apk": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".mp3": {}, ".mp4": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
}

var techDetector *wappalyzer.Wappalyze

func init() {
	// The embedded fingerprint set never fails to parse; a nil detector just
	// disables technology extraction.
	techDetector, _ = wappalyzer.New()
}

// Page extracts structured facts from a probe result. The content type is not
// checked: non-HTML bodies simply yield an empty document.
func Page(res *probe.Result) *Extraction {
	ex := &Extraction{}
	if res == nil {
		return ex
	}

	base, err := url.Parse(res.FinalURL)
	if err != nil || base.Host == "" {
		base, err = url.Parse(res.URL)
		if err != nil {
			return ex
		}
	}
	ownDomain := registrable(base.Hostname())

	if techDetector != nil {
		techs := techDetector.Fingerprint(res.Headers, res.RawBody)
		for name := range techs {
			ex.Technologies = append(ex.Technologies, name)
		}
		sort.Strings(ex.Technologies)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.RawBody))
	if err != nil {
		return ex
	}

	ex.Title = strings.TrimSpace(doc.Find("title").First().Text())
	ex.FormCount = doc.Find("form").Length()

	hosts := map[string]struct{}{}
	addHost := func(h string) {
		if h == "" {
			return
		}
		reg := registrable(h)
		if reg != "" && reg != ownDomain {
			hosts[reg] = struct{}{}
		}
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u := resolve(base, href)
		if u == nil {
			return
		}
		link := Link{URL: u.String(), FoundIn: "a[href]", Type: classify(u, ownDomain)}
		ex.Links = append(ex.Links, link)
		addHost(u.Hostname())
		if isAsset(u.Path) {
			ex.FileRefs = append(ex.FileRefs, u.String())
		}
	})

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			ex.InlineScript++
			return
		}
		u := resolve(base, src)
		if u == nil {
			return
		}
		ex.Scripts = append(ex.Scripts, u.String())
		ex.Links = append(ex.Links, Link{URL: u.String(), FoundIn: "script[src]", Type: finding.LinkScript})
		addHost(u.Hostname())
	})

	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		u := resolve(base, src)
		if u == nil {
			return
		}
		ex.Iframes = append(ex.Iframes, u.String())
		ex.Links = append(ex.Links, Link{URL: u.String(), FoundIn: "iframe[src]", Type: finding.LinkIframe})
		addHost(u.Hostname())
	})

	// Meta refresh redirects count as links of their own kind.
	doc.Find(`meta[http-equiv]`).Each(func(_ int, s *goquery.Selection) {
		equiv, _ := s.Attr("http-equiv")
		if !strings.EqualFold(equiv, "refresh") {
			return
		}
		content, _ := s.Attr("content")
		if idx := strings.Index(strings.ToLower(content), "url="); idx >= 0 {
			u := resolve(base, strings.TrimSpace(content[idx+4:]))
			if u != nil {
				ex.Links = append(ex.Links, Link{URL: u.String(), FoundIn: "meta[refresh]", Type: finding.LinkRedirect})
				addHost(u.Hostname())
			}
		}
	})

	for h := range hosts {
		ex.ExternalHosts = append(ex.ExternalHosts, h)
	}
	sort.Strings(ex.ExternalHosts)

	return ex
}

func resolve(base *url.URL, ref string) *url.URL {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "javascript:") || strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "tel:") || strings.HasPrefix(ref, "data:") {
		return nil
	}
	u, err := base.Parse(ref)
	if err != nil {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	u.Fragment = ""
	return u
}

func classify(u *url.URL, ownDomain string) finding.LinkType {
	if registrable(u.Hostname()) == ownDomain {
		return finding.LinkInternal
	}
	return finding.LinkExternal
}

func isAsset(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	_, ok := assetExtensions[ext]
	return ok
}

// registrable returns the eTLD+1 for a hostname, falling back to the raw host
// for IPs and single-label names.
func registrable(host string) string {
	host = strings.ToLower(host)
	// EffectiveTLDPlusOne happily splits dotted IPs, so they are excluded
	// before it runs.
	if net.ParseIP(host) != nil {
		return host
	}
	reg, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return reg
}

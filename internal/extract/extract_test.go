package extract

import (
	"testing"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/probe"
)

func pageResult(body string) *probe.Result {
	return &probe.Result{
		URL:      "https://example.com/",
		FinalURL: "https://example.com/",
		RawBody:  []byte(body),
	}
}

func TestPageExtractsLinksScriptsAndForms(t *testing.T) {
	ex := Page(pageResult(`<html><head><title> Home </title>
		<script src="/app.js"></script>
		<script>console.log(1)</script>
	</head><body>
		<a href="/about">About</a>
		<a href="https://cdn.partner.net/lib.zip">Download</a>
		<iframe src="https://widgets.example.org/chat"></iframe>
		<form action="/login" method="post"></form>
		<form action="/search"></form>
	</body></html>`))

	if ex.Title != "Home" {
		t.Fatalf("title = %q", ex.Title)
	}
	if ex.FormCount != 2 {
		t.Fatalf("forms = %d, want 2", ex.FormCount)
	}
	if ex.InlineScript != 1 {
		t.Fatalf("inline scripts = %d, want 1", ex.InlineScript)
	}
	if len(ex.Scripts) != 1 || ex.Scripts[0] != "https://example.com/app.js" {
		t.Fatalf("scripts = %v", ex.Scripts)
	}
	if len(ex.Iframes) != 1 {
		t.Fatalf("iframes = %v", ex.Iframes)
	}
	if len(ex.FileRefs) != 1 || ex.FileRefs[0] != "https://cdn.partner.net/lib.zip" {
		t.Fatalf("file refs = %v", ex.FileRefs)
	}

	var internal, external int
	for _, l := range ex.Links {
		switch l.Type {
		case finding.LinkInternal:
			internal++
		case finding.LinkExternal:
			external++
		}
	}
	if internal != 1 || external != 1 {
		t.Fatalf("link classes: internal=%d external=%d", internal, external)
	}
}

func TestPageExternalHostsAreRegistrableAndDeduplicated(t *testing.T) {
	ex := Page(pageResult(`<html><body>
		<a href="https://a.cdn.partner.net/x">1</a>
		<a href="https://b.cdn.partner.net/y">2</a>
		<a href="https://sub.example.com/own">own</a>
	</body></html>`))

	if len(ex.ExternalHosts) != 1 || ex.ExternalHosts[0] != "partner.net" {
		t.Fatalf("external hosts = %v, want [partner.net]", ex.ExternalHosts)
	}
}

func TestPageSkipsNonNavigableRefs(t *testing.T) {
	ex := Page(pageResult(`<html><body>
		<a href="#top">top</a>
		<a href="javascript:void(0)">js</a>
		<a href="mailto:x@example.com">mail</a>
		<a href="tel:+123">call</a>
		<a href="ftp://files.example.net/a">ftp</a>
	</body></html>`))

	if len(ex.Links) != 0 {
		t.Fatalf("links = %v, want none", ex.Links)
	}
}

func TestPageMetaRefreshBecomesRedirectLink(t *testing.T) {
	ex := Page(pageResult(`<html><head>
		<meta http-equiv="refresh" content="0; URL=https://evil.example.net/landing">
	</head></html>`))

	found := false
	for _, l := range ex.Links {
		if l.Type == finding.LinkRedirect && l.URL == "https://evil.example.net/landing" {
			found = true
		}
	}
	if !found {
		t.Fatalf("redirect link missing: %v", ex.Links)
	}
}

func TestPageMalformedInputDegrades(t *testing.T) {
	if ex := Page(nil); ex == nil || len(ex.Links) != 0 {
		t.Fatal("nil result must yield an empty extraction")
	}
	if ex := Page(pageResult("\x00\x01not html at all")); ex == nil {
		t.Fatal("binary body must yield an empty extraction, not nil")
	}
}

func TestRegistrableFallsBackForIPs(t *testing.T) {
	if got := registrable("192.0.2.7"); got != "192.0.2.7" {
		t.Fatalf("registrable(ip) = %q", got)
	}
	if got := registrable("WWW.Example.COM"); got != "example.com" {
		t.Fatalf("registrable = %q", got)
	}
}

package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
)

func testSite(t *testing.T) *website.Website {
	t.Helper()
	w, err := website.New(1, "https://example.com", "example", "ops@example.com", 15)
	if err != nil {
		t.Fatalf("website.New: %v", err)
	}
	return w
}

func testAlert(t *testing.T, severity alert.Severity, title string) *alert.Alert {
	t.Helper()
	a, err := alert.New(1, 0, severity, alert.TypeVulnerability, title, "details here", title, nil)
	if err != nil {
		t.Fatalf("alert.New: %v", err)
	}
	return a
}

func TestSendComposesBatchMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewEmailSender(SMTPConfig{Host: "mail.example.com", Port: 587, From: "monitor@example.com"}, nil)
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	alerts := []*alert.Alert{
		testAlert(t, alert.SeverityMedium, "missing header"),
		testAlert(t, alert.SeverityCritical, "site cloned"),
	}
	if err := s.Send(context.Background(), "ops@example.com", testSite(t), alerts); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAddr != "mail.example.com:587" {
		t.Fatalf("addr = %q", gotAddr)
	}
	if gotFrom != "monitor@example.com" || len(gotTo) != 1 || gotTo[0] != "ops@example.com" {
		t.Fatalf("envelope = %q -> %v", gotFrom, gotTo)
	}

	msg := string(gotMsg)
	// Subject carries the worst severity in the batch.
	if !strings.Contains(msg, "Subject: [CRITICAL] 2 alert(s) for example") {
		t.Fatalf("subject line wrong:\n%s", msg)
	}
	if !strings.Contains(msg, "missing header") || !strings.Contains(msg, "site cloned") {
		t.Fatalf("alert bodies missing:\n%s", msg)
	}
}

func TestSendEmptyBatchIsNoop(t *testing.T) {
	called := false
	s := NewEmailSender(SMTPConfig{Host: "mail.example.com", Port: 25}, nil)
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	if err := s.Send(context.Background(), "ops@example.com", testSite(t), nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if called {
		t.Fatal("empty batch must not hit the relay")
	}
}

func TestSendWithoutRelayConfigured(t *testing.T) {
	s := NewEmailSender(SMTPConfig{}, nil)
	err := s.Send(context.Background(), "ops@example.com", testSite(t),
		[]*alert.Alert{testAlert(t, alert.SeverityLow, "x")})
	if err == nil {
		t.Fatal("missing relay must error")
	}
}

func TestSendPropagatesRelayFailure(t *testing.T) {
	relayErr := errors.New("connection refused")
	s := NewEmailSender(SMTPConfig{Host: "mail.example.com", Port: 25}, nil)
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return relayErr }

	err := s.Send(context.Background(), "ops@example.com", testSite(t),
		[]*alert.Alert{testAlert(t, alert.SeverityLow, "x")})
	if !errors.Is(err, relayErr) {
		t.Fatalf("err = %v, want wrapped relay error", err)
	}
}

func TestSendHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewEmailSender(SMTPConfig{Host: "mail.example.com", Port: 25}, nil)
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("cancelled context must not reach the relay")
		return nil
	}
	if err := s.Send(ctx, "ops@example.com", testSite(t),
		[]*alert.Alert{testAlert(t, alert.SeverityLow, "x")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

package alert

import (
	"errors"
	"testing"

	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name      string
		websiteID int64
		severity  Severity
		alertType Type
		title     string
		wantErr   error
	}{
		{"valid", 1, SeverityHigh, TypeVulnerability, "t", nil},
		{"no website", 0, SeverityHigh, TypeVulnerability, "t", sharederrors.ErrWebsiteNotFound},
		{"bad severity", 1, Severity("extreme"), TypeVulnerability, "t", sharederrors.ErrInvalidSeverity},
		{"bad type", 1, SeverityHigh, Type("surprise"), "t", sharederrors.ErrInvalidAlertType},
		{"no title", 1, SeverityHigh, TypeVulnerability, "", sharederrors.ErrMissingRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.websiteID, 0, tc.severity, tc.alertType, tc.title, "d", "k", nil)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSeverityRank(t *testing.T) {
	order := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%s must outrank %s", order[i], order[i-1])
		}
	}
	if Severity("bogus").Rank() != 0 {
		t.Fatalf("unknown severity rank = %d", Severity("bogus").Rank())
	}
}

func TestRecordEmailSent(t *testing.T) {
	a, err := New(1, 0, SeverityLow, TypeAnomaly, "t", "d", "k", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.EmailSent() {
		t.Fatal("new alert must start unsent")
	}
	at := a.CreatedAt()
	a.RecordEmailSent(at)
	if !a.EmailSent() || !a.EmailSentAt().Equal(at) {
		t.Fatal("email sent state not recorded")
	}
}

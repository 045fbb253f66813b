package website

import (
	"errors"
	"testing"
	"time"

	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name     string
		userID   int64
		url      string
		email    string
		interval int
		wantErr  error
	}{
		{"valid", 1, "https://example.com", "ops@example.com", 15, nil},
		{"http allowed", 1, "http://example.com", "ops@example.com", 5, nil},
		{"no owner", 0, "https://example.com", "ops@example.com", 15, sharederrors.ErrEmptyOwner},
		{"bad scheme", 1, "ftp://example.com", "ops@example.com", 15, sharederrors.ErrInvalidWebsiteURL},
		{"no host", 1, "https://", "ops@example.com", 15, sharederrors.ErrInvalidWebsiteURL},
		{"garbage url", 1, "://", "ops@example.com", 15, sharederrors.ErrInvalidWebsiteURL},
		{"no email", 1, "https://example.com", "  ", 15, sharederrors.ErrEmptyNotifyEmail},
		{"odd interval", 1, "https://example.com", "ops@example.com", 7, sharederrors.ErrInvalidInterval},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.userID, tc.url, "n", tc.email, tc.interval)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	w, err := New(1, "https://shop.example.com/cart", "", "ops@example.com", 30)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.Name() != "shop.example.com" {
		t.Fatalf("default name = %q, want host", w.Name())
	}
	if !w.Active() || w.Status() != StatusUnknown || w.SecurityScore() != 100 {
		t.Fatalf("initial state: active=%v status=%s score=%d", w.Active(), w.Status(), w.SecurityScore())
	}
	if !w.Due(time.Now()) {
		t.Fatal("never-checked website must be due immediately")
	}
}

func TestValidInterval(t *testing.T) {
	for _, v := range []int{5, 10, 15, 30, 60} {
		if !ValidInterval(v) {
			t.Errorf("ValidInterval(%d) = false", v)
		}
	}
	for _, v := range []int{0, 1, 7, 45, 120} {
		if ValidInterval(v) {
			t.Errorf("ValidInterval(%d) = true", v)
		}
	}
}

func TestApplyCheckOutcomeClampsScore(t *testing.T) {
	w, _ := New(1, "https://example.com", "", "ops@example.com", 15)
	at := time.Now().UTC()

	w.ApplyCheckOutcome(StatusCritical, -10, at)
	if w.SecurityScore() != 0 {
		t.Fatalf("score = %d, want clamped to 0", w.SecurityScore())
	}
	w.ApplyCheckOutcome(StatusHealthy, 150, at)
	if w.SecurityScore() != 100 {
		t.Fatalf("score = %d, want clamped to 100", w.SecurityScore())
	}
	if !w.LastCheckAt().Equal(at) {
		t.Fatal("check time not recorded")
	}
}

func TestDueRespectsInterval(t *testing.T) {
	w, _ := New(1, "https://example.com", "", "ops@example.com", 15)
	checked := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	w.ApplyCheckOutcome(StatusHealthy, 100, checked)

	if w.Due(checked.Add(10 * time.Minute)) {
		t.Fatal("due before the interval elapsed")
	}
	if !w.Due(checked.Add(15 * time.Minute)) {
		t.Fatal("not due exactly at the interval")
	}

	if err := w.UpdateConfig(w.Name(), w.NotifyEmail(), w.CheckInterval(), false); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if w.Due(checked.Add(time.Hour)) {
		t.Fatal("inactive website must never be due")
	}
}

func TestUpdateConfigKeepsNameWhenBlank(t *testing.T) {
	w, _ := New(1, "https://example.com", "store", "ops@example.com", 15)
	if err := w.UpdateConfig("", "new@example.com", 30, true); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if w.Name() != "store" {
		t.Fatalf("name = %q, blank update must not erase it", w.Name())
	}
	if w.NotifyEmail() != "new@example.com" || w.CheckInterval() != 30 {
		t.Fatalf("config not applied: %q %d", w.NotifyEmail(), w.CheckInterval())
	}

	if err := w.UpdateConfig("x", "ops@example.com", 7, true); !errors.Is(err, sharederrors.ErrInvalidInterval) {
		t.Fatalf("invalid interval err = %v", err)
	}
}

func TestSetIDOnce(t *testing.T) {
	w, _ := New(1, "https://example.com", "", "ops@example.com", 15)
	w.SetID(4)
	w.SetID(9)
	if w.ID() != 4 {
		t.Fatalf("id = %d, identity must not change after first save", w.ID())
	}
}

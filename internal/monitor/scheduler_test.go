package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

func TestCheckNowRunsManualCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)

	s := NewScheduler(fx.websites, fx.pipeline, zap.NewNop(), time.Minute, 2)
	rec, err := s.CheckNow(context.Background(), site.ID())
	if err != nil {
		t.Fatalf("CheckNow: %v", err)
	}
	if rec.CheckType() != check.TypeManual {
		t.Fatalf("check type = %s, want manual", rec.CheckType())
	}
	if rec.Status() != check.StatusSuccess {
		t.Fatalf("check status = %s, want success", rec.Status())
	}
}

func TestCheckNowUnknownWebsite(t *testing.T) {
	fx := newPipelineFixture(t)
	s := NewScheduler(fx.websites, fx.pipeline, zap.NewNop(), time.Minute, 2)

	if _, err := s.CheckNow(context.Background(), 9999); !errors.Is(err, sharederrors.ErrWebsiteNotFound) {
		t.Fatalf("err = %v, want ErrWebsiteNotFound", err)
	}
}

func TestCheckNowRefusesConcurrentRun(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)
	s := NewScheduler(fx.websites, fx.pipeline, zap.NewNop(), time.Minute, 2)

	done := make(chan error, 1)
	go func() {
		_, err := s.CheckNow(context.Background(), site.ID())
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first check never reached the probe")
	}

	if _, err := s.CheckNow(context.Background(), site.ID()); !errors.Is(err, sharederrors.ErrCheckInProgress) {
		t.Fatalf("err = %v, want ErrCheckInProgress", err)
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first check failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first check never finished")
	}

	// Slot must be free again once the run completes.
	if _, err := s.CheckNow(context.Background(), site.ID()); err != nil {
		t.Fatalf("check after release: %v", err)
	}
}

func TestSchedulerSweepsDueSites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)

	s := NewScheduler(fx.websites, fx.pipeline, zap.NewNop(), 10*time.Millisecond, 2)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(stopped)
	}()

	deadline := time.After(3 * time.Second)
	for {
		checks, _ := fx.checks.FindByWebsite(context.Background(), site.ID(), 0)
		if len(checks) > 0 {
			if checks[0].CheckType() != check.TypeScheduled {
				t.Fatalf("check type = %s, want scheduled", checks[0].CheckType())
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("scheduler never ran the due site")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not drain after cancel")
	}
}

func TestSchedulerSkipsInactiveSites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	fx := newPipelineFixture(t)
	site := registerSite(t, fx, srv.URL)
	if err := site.UpdateConfig(site.Name(), site.NotifyEmail(), site.CheckInterval(), false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := fx.websites.Update(context.Background(), site); err != nil {
		t.Fatalf("update: %v", err)
	}

	s := NewScheduler(fx.websites, fx.pipeline, zap.NewNop(), 10*time.Millisecond, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	checks, _ := fx.checks.FindByWebsite(context.Background(), site.ID(), 0)
	if len(checks) != 0 {
		t.Fatalf("inactive site was checked %d times", len(checks))
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/application/analysis"
	"github.com/abodks10-ai/Pred-Guard/internal/application/dashboard"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/defense"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

const testToken = "test-token"

type fakeWebsites struct {
	createErr error
	getErr    error
	checkErr  error
	site      *website.Website
	rec       *check.MonitoringCheck
}

func (f *fakeWebsites) Create(ctx context.Context, userID int64, url, name, notifyEmail string, interval int) (*website.Website, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return website.New(userID, url, name, notifyEmail, interval)
}

func (f *fakeWebsites) Get(ctx context.Context, id int64) (*website.Website, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.site, nil
}

func (f *fakeWebsites) List(ctx context.Context, userID int64) ([]*website.Website, error) {
	if f.site == nil {
		return nil, nil
	}
	return []*website.Website{f.site}, nil
}

func (f *fakeWebsites) Update(ctx context.Context, id int64, name, notifyEmail string, interval int, active bool) (*website.Website, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if err := f.site.UpdateConfig(name, notifyEmail, interval, active); err != nil {
		return nil, err
	}
	return f.site, nil
}

func (f *fakeWebsites) Delete(ctx context.Context, id int64) error { return f.getErr }

func (f *fakeWebsites) CheckNow(ctx context.Context, id int64) (*check.MonitoringCheck, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return f.rec, nil
}

func (f *fakeWebsites) Checks(ctx context.Context, websiteID int64, limit int) ([]*check.MonitoringCheck, error) {
	if f.rec == nil {
		return nil, nil
	}
	return []*check.MonitoringCheck{f.rec}, nil
}

func (f *fakeWebsites) LatestCheck(ctx context.Context, websiteID int64) (*check.MonitoringCheck, error) {
	return f.rec, nil
}

type fakeAlerts struct {
	alerts []*alert.Alert
	unread int
	err    error
}

func (f *fakeAlerts) ListByWebsite(ctx context.Context, websiteID int64, limit int) ([]*alert.Alert, error) {
	return f.alerts, f.err
}

func (f *fakeAlerts) Recent(ctx context.Context, since time.Time, limit int) ([]*alert.Alert, error) {
	return f.alerts, f.err
}

func (f *fakeAlerts) MarkRead(ctx context.Context, id int64) (*alert.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := f.alerts[0]
	a.MarkRead()
	return a, nil
}

func (f *fakeAlerts) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return f.unread, f.err
}

type fakeDefense struct {
	action *defense.Action
	err    error
	// failWith returns both an action and an error, as a failed mitigation does.
	failWith bool
}

func (f *fakeDefense) Propose(ctx context.Context, websiteID, alertID int64, actionType defense.ActionType, targetDetails string) (*defense.Action, error) {
	if f.err != nil {
		return nil, f.err
	}
	return defense.New(websiteID, alertID, actionType, targetDetails, false)
}

func (f *fakeDefense) Execute(ctx context.Context, actionID int64) (*defense.Action, error) {
	if f.failWith {
		return f.action, errors.New("mitigation refused")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.action, nil
}

func (f *fakeDefense) Revert(ctx context.Context, actionID int64) (*defense.Action, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.action, nil
}

func (f *fakeDefense) ListByWebsite(ctx context.Context, websiteID int64) ([]*defense.Action, error) {
	if f.action == nil {
		return nil, f.err
	}
	return []*defense.Action{f.action}, f.err
}

type fakeAnalysis struct {
	report *analysis.Report
	err    error
}

func (f *fakeAnalysis) FullReport(ctx context.Context, websiteID int64) (*analysis.Report, error) {
	return f.report, f.err
}

type fakeDashboard struct{ stats *dashboard.Stats }

func (f *fakeDashboard) Stats(ctx context.Context, userID int64) (*dashboard.Stats, error) {
	return f.stats, nil
}

type fakeHealth struct{ readyErr error }

func (f *fakeHealth) Check(ctx context.Context) error { return nil }
func (f *fakeHealth) Ready(ctx context.Context) error { return f.readyErr }

func testSite(t *testing.T) *website.Website {
	t.Helper()
	w, err := website.New(1, "https://example.com", "example", "ops@example.com", 15)
	if err != nil {
		t.Fatalf("website.New: %v", err)
	}
	w.SetID(1)
	return w
}

func testServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = testToken
	}
	return NewServer(cfg)
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Auth-Token", testToken)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func TestAuthRequired(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/websites", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/websites", nil)
	req.Header.Set("X-Auth-Token", "wrong")
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rr.Code)
	}

	if rr := doRequest(t, s, http.MethodGet, "/api/v1/websites", nil); rr.Code != http.StatusOK {
		t.Fatalf("good token: status = %d, want 200", rr.Code)
	}
}

func TestHealthOpenWithoutAuth(t *testing.T) {
	s := testServer(t, Config{Health: &fakeHealth{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("health: status = %d, want 200", rr.Code)
	}
}

func TestReadyReportsDependencyFailure(t *testing.T) {
	s := testServer(t, Config{Health: &fakeHealth{readyErr: errors.New("db down")}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready: status = %d, want 503", rr.Code)
	}
}

func TestCreateWebsite(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{}})

	body, _ := json.Marshal(map[string]any{
		"user_id":        1,
		"url":            "https://example.com",
		"notify_email":   "ops@example.com",
		"check_interval": 15,
	})
	rr := doRequest(t, s, http.MethodPost, "/api/v1/websites", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["url"] != "https://example.com" {
		t.Fatalf("url = %v", resp["url"])
	}
	// Name defaults to the host when omitted.
	if resp["name"] != "example.com" {
		t.Fatalf("name = %v", resp["name"])
	}
}

func TestCreateWebsiteValidationMapsTo400(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{}})

	body, _ := json.Marshal(map[string]any{
		"user_id":        1,
		"url":            "https://example.com",
		"notify_email":   "ops@example.com",
		"check_interval": 7,
	})
	rr := doRequest(t, s, http.MethodPost, "/api/v1/websites", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid interval: status = %d, want 400", rr.Code)
	}

	rr = doRequest(t, s, http.MethodPost, "/api/v1/websites", []byte("{not json"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status = %d, want 400", rr.Code)
	}
}

func TestGetWebsiteNotFound(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{getErr: sharederrors.ErrWebsiteNotFound}})

	rr := doRequest(t, s, http.MethodGet, "/api/v1/websites/42", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestGetWebsite(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{site: testSite(t)}})

	rr := doRequest(t, s, http.MethodGet, "/api/v1/websites/1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["security_score"] != float64(100) {
		t.Fatalf("security_score = %v", resp["security_score"])
	}
}

func TestCheckNowConflict(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{checkErr: sharederrors.ErrCheckInProgress}})

	rr := doRequest(t, s, http.MethodPost, "/api/v1/websites/1/check", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func TestCheckNow(t *testing.T) {
	rec, _ := check.New(1, check.TypeManual, check.StatusSuccess)
	rec.SetProbeData(120, 200, "abc", "")
	s := testServer(t, Config{Websites: &fakeWebsites{rec: rec}})

	rr := doRequest(t, s, http.MethodPost, "/api/v1/websites/1/check", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["http_status"] != float64(200) || resp["check_type"] != "manual" {
		t.Fatalf("body = %v", resp)
	}
}

func TestLatestCheckEmpty(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{}})

	rr := doRequest(t, s, http.MethodGet, "/api/v1/websites/1/checks/latest", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when no checks exist", rr.Code)
	}
}

func TestMarkAlertRead(t *testing.T) {
	a, _ := alert.New(1, 0, alert.SeverityHigh, alert.TypeVulnerability, "t", "d", "k", nil)
	a.SetID(7)
	s := testServer(t, Config{Alerts: &fakeAlerts{alerts: []*alert.Alert{a}}})

	rr := doRequest(t, s, http.MethodPost, "/api/v1/alerts/7/read", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["read"] != true {
		t.Fatalf("read = %v, want true", resp["read"])
	}
}

func TestUnreadCount(t *testing.T) {
	s := testServer(t, Config{Alerts: &fakeAlerts{unread: 3}})

	rr := doRequest(t, s, http.MethodGet, "/api/v1/alerts/unread-count?user_id=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]int
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["unread"] != 3 {
		t.Fatalf("unread = %d, want 3", resp["unread"])
	}
}

func TestExecuteActionFailureReturnsRecordedState(t *testing.T) {
	action, _ := defense.New(1, 2, defense.ActionBlockIP, "203.0.113.9", false)
	action.SetID(5)
	_ = action.MarkFailed()
	s := testServer(t, Config{Defense: &fakeDefense{action: action, failWith: true}})

	rr := doRequest(t, s, http.MethodPost, "/api/v1/actions/5/execute", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != string(defense.StatusFailed) {
		t.Fatalf("status field = %v, want failed", resp["status"])
	}
}

func TestExecuteActionIllegalTransition(t *testing.T) {
	s := testServer(t, Config{Defense: &fakeDefense{err: sharederrors.ErrIllegalActionTransition}})

	rr := doRequest(t, s, http.MethodPost, "/api/v1/actions/5/execute", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestDashboardStats(t *testing.T) {
	s := testServer(t, Config{Dashboard: &fakeDashboard{stats: &dashboard.Stats{TotalWebsites: 2, AverageScore: 91.5}}})

	rr := doRequest(t, s, http.MethodGet, "/api/v1/dashboard/stats?user_id=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp dashboard.Stats
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.TotalWebsites != 2 || resp.AverageScore != 91.5 {
		t.Fatalf("stats = %+v", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/websites", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRateLimitExceeded(t *testing.T) {
	s := testServer(t, Config{
		Websites:  &fakeWebsites{},
		RateLimit: 1,
		RateBurst: 1,
	})

	if rr := doRequest(t, s, http.MethodGet, "/api/v1/websites", nil); rr.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", rr.Code)
	}
	if rr := doRequest(t, s, http.MethodGet, "/api/v1/websites", nil); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{}})

	rr := doRequest(t, s, http.MethodDelete, "/api/v1/websites", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}

func TestUnknownSubresource(t *testing.T) {
	s := testServer(t, Config{Websites: &fakeWebsites{}})

	rr := doRequest(t, s, http.MethodGet, "/api/v1/websites/1/bogus", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	rr = doRequest(t, s, http.MethodGet, "/api/v1/websites/abc", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("non-numeric id: status = %d, want 404", rr.Code)
	}
}

// Package api exposes the monitoring system over HTTP. Routing is a plain
// ServeMux with manual path parsing; the middleware chain is
// RequestID -> Logging -> RateLimit -> CORS -> Auth -> handler.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abodks10-ai/Pred-Guard/internal/api/middleware"
	"github.com/abodks10-ai/Pred-Guard/internal/application/analysis"
	"github.com/abodks10-ai/Pred-Guard/internal/application/dashboard"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/defense"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type WebsiteService interface {
	Create(ctx context.Context, userID int64, url, name, notifyEmail string, intervalMinutes int) (*website.Website, error)
	Get(ctx context.Context, id int64) (*website.Website, error)
	List(ctx context.Context, userID int64) ([]*website.Website, error)
	Update(ctx context.Context, id int64, name, notifyEmail string, intervalMinutes int, active bool) (*website.Website, error)
	Delete(ctx context.Context, id int64) error
	CheckNow(ctx context.Context, id int64) (*check.MonitoringCheck, error)
	Checks(ctx context.Context, websiteID int64, limit int) ([]*check.MonitoringCheck, error)
	LatestCheck(ctx context.Context, websiteID int64) (*check.MonitoringCheck, error)
}

type AlertService interface {
	ListByWebsite(ctx context.Context, websiteID int64, limit int) ([]*alert.Alert, error)
	Recent(ctx context.Context, since time.Time, limit int) ([]*alert.Alert, error)
	MarkRead(ctx context.Context, id int64) (*alert.Alert, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type AnalysisService interface {
	FullReport(ctx context.Context, websiteID int64) (*analysis.Report, error)
}

type DashboardService interface {
	Stats(ctx context.Context, userID int64) (*dashboard.Stats, error)
}

type DefenseService interface {
	Propose(ctx context.Context, websiteID, alertID int64, actionType defense.ActionType, targetDetails string) (*defense.Action, error)
	Execute(ctx context.Context, actionID int64) (*defense.Action, error)
	Revert(ctx context.Context, actionID int64) (*defense.Action, error)
	ListByWebsite(ctx context.Context, websiteID int64) ([]*defense.Action, error)
}

type HealthService interface {
	Check(ctx context.Context) error
	Ready(ctx context.Context) error
}

type Config struct {
	Websites  WebsiteService
	Alerts    AlertService
	Analysis  AnalysisService
	Dashboard DashboardService
	Defense   DefenseService
	Health    HealthService

	AuthToken   string
	Logger      *zap.Logger
	CORSOrigins []string
	RateLimit   int // requests per second per IP, 0 disables
	RateBurst   int
}

type Server struct {
	cfg      Config
	mux      *http.ServeMux
	limiters *rateLimiterMap
}

func NewServer(cfg Config) *Server {
	srv := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		limiters: newRateLimiterMap(),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := middleware.RequestID(s.withLogging(s.withRateLimit(s.withCORS(s.mux))))
	handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.Handle("/api/v1/health", http.HandlerFunc(s.handleHealth))
	s.mux.Handle("/api/v1/ready", http.HandlerFunc(s.handleReady))
	s.mux.Handle("/api/v1/websites", s.withAuth(http.HandlerFunc(s.handleWebsites)))
	s.mux.Handle("/api/v1/websites/", s.withAuth(http.HandlerFunc(s.handleWebsiteSubtree)))
	s.mux.Handle("/api/v1/alerts", s.withAuth(http.HandlerFunc(s.handleRecentAlerts)))
	s.mux.Handle("/api/v1/alerts/unread-count", s.withAuth(http.HandlerFunc(s.handleUnreadCount)))
	s.mux.Handle("/api/v1/alerts/", s.withAuth(http.HandlerFunc(s.handleAlertSubtree)))
	s.mux.Handle("/api/v1/actions/", s.withAuth(http.HandlerFunc(s.handleActionSubtree)))
	s.mux.Handle("/api/v1/dashboard/stats", s.withAuth(http.HandlerFunc(s.handleDashboard)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Health != nil {
		if err := s.cfg.Health.Check(r.Context()); err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.cfg.Health != nil {
		if err := s.cfg.Health.Ready(r.Context()); err != nil {
			s.writeError(w, r, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type websiteCreateRequest struct {
	UserID        int64  `json:"user_id"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	NotifyEmail   string `json:"notify_email"`
	CheckInterval int    `json:"check_interval"`
}

type websiteUpdateRequest struct {
	Name          string `json:"name"`
	NotifyEmail   string `json:"notify_email"`
	CheckInterval int    `json:"check_interval"`
	Active        bool   `json:"active"`
}

func (s *Server) handleWebsites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID := queryInt64(r, "user_id")
		sites, err := s.cfg.Websites.List(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		out := make([]websiteResponse, 0, len(sites))
		for _, site := range sites {
			out = append(out, toWebsiteResponse(site))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, 1048576)
		var req websiteCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		site, err := s.cfg.Websites.Create(r.Context(), req.UserID, req.URL, req.Name, req.NotifyEmail, req.CheckInterval)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, toWebsiteResponse(site))
	default:
		s.methodNotAllowed(w, r)
	}
}

// handleWebsiteSubtree routes /api/v1/websites/{id} and its children:
// check, checks, checks/latest, alerts, analysis, actions.
func (s *Server) handleWebsiteSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/websites/")
	idPart, child, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusNotFound, errors.New("website ID required"))
		return
	}

	switch child {
	case "":
		s.handleWebsiteByID(w, r, id)
	case "check":
		s.handleCheckNow(w, r, id)
	case "checks":
		s.handleChecks(w, r, id)
	case "checks/latest":
		s.handleLatestCheck(w, r, id)
	case "alerts":
		s.handleWebsiteAlerts(w, r, id)
	case "analysis":
		s.handleAnalysis(w, r, id)
	case "actions":
		s.handleWebsiteActions(w, r, id)
	default:
		s.writeError(w, r, http.StatusNotFound, errors.New("unknown resource"))
	}
}

func (s *Server) handleWebsiteByID(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		site, err := s.cfg.Websites.Get(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toWebsiteResponse(site))
	case http.MethodPut:
		r.Body = http.MaxBytesReader(w, r.Body, 1048576)
		var req websiteUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		site, err := s.cfg.Websites.Update(r.Context(), id, req.Name, req.NotifyEmail, req.CheckInterval, req.Active)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toWebsiteResponse(site))
	case http.MethodDelete:
		if err := s.cfg.Websites.Delete(r.Context(), id); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.methodNotAllowed(w, r)
	}
}

func (s *Server) handleCheckNow(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}
	rec, err := s.cfg.Websites.CheckNow(r.Context(), id)
	if err != nil {
		if errors.Is(err, sharederrors.ErrCheckInProgress) {
			s.writeError(w, r, http.StatusConflict, err)
			return
		}
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckResponse(rec))
}

func (s *Server) handleChecks(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	limit := int(queryInt64(r, "limit"))
	if limit <= 0 {
		limit = 50
	}
	checks, err := s.cfg.Websites.Checks(r.Context(), id, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	out := make([]checkResponse, 0, len(checks))
	for _, c := range checks {
		out = append(out, toCheckResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLatestCheck(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	rec, err := s.cfg.Websites.LatestCheck(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if rec == nil {
		s.writeError(w, r, http.StatusNotFound, errors.New("no checks recorded"))
		return
	}
	writeJSON(w, http.StatusOK, toCheckResponse(rec))
}

func (s *Server) handleWebsiteAlerts(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	limit := int(queryInt64(r, "limit"))
	alerts, err := s.cfg.Alerts.ListByWebsite(r.Context(), id, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	report, err := s.cfg.Analysis.FullReport(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalysisResponse(report))
}

type actionProposeRequest struct {
	AlertID       int64  `json:"alert_id"`
	ActionType    string `json:"action_type"`
	TargetDetails string `json:"target_details"`
}

func (s *Server) handleWebsiteActions(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		actions, err := s.cfg.Defense.ListByWebsite(r.Context(), id)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		out := make([]actionResponse, 0, len(actions))
		for _, a := range actions {
			out = append(out, toActionResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, 1048576)
		var req actionProposeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		action, err := s.cfg.Defense.Propose(r.Context(), id, req.AlertID, defense.ActionType(req.ActionType), req.TargetDetails)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toActionResponse(action))
	default:
		s.methodNotAllowed(w, r)
	}
}

func (s *Server) handleRecentAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	hours := queryInt64(r, "hours")
	if hours <= 0 {
		hours = 24
	}
	limit := int(queryInt64(r, "limit"))
	alerts, err := s.cfg.Alerts.Recent(r.Context(), time.Now().UTC().Add(-time.Duration(hours)*time.Hour), limit)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	count, err := s.cfg.Alerts.UnreadCount(r.Context(), queryInt64(r, "user_id"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// handleAlertSubtree routes /api/v1/alerts/{id}/read.
func (s *Server) handleAlertSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	idPart, child, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusNotFound, errors.New("alert ID required"))
		return
	}
	if child != "read" || r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}
	a, err := s.cfg.Alerts.MarkRead(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponse(a))
}

// handleActionSubtree routes /api/v1/actions/{id}/execute and /{id}/revert.
func (s *Server) handleActionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/actions/")
	idPart, child, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusNotFound, errors.New("action ID required"))
		return
	}
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}

	var action *defense.Action
	switch child {
	case "execute":
		action, err = s.cfg.Defense.Execute(r.Context(), id)
	case "revert":
		action, err = s.cfg.Defense.Revert(r.Context(), id)
	default:
		s.writeError(w, r, http.StatusNotFound, errors.New("unknown resource"))
		return
	}
	if err != nil {
		if action != nil {
			// Execution attempted and failed; the recorded state is returned
			// with the failure.
			writeJSON(w, http.StatusBadGateway, toActionResponse(action))
			return
		}
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(action))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	stats, err := s.cfg.Dashboard.Stats(r.Context(), queryInt64(r, "user_id"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeDomainError maps domain sentinel errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sharederrors.ErrWebsiteNotFound),
		errors.Is(err, sharederrors.ErrAlertNotFound),
		errors.Is(err, sharederrors.ErrActionNotFound),
		errors.Is(err, sharederrors.ErrCheckNotFound):
		s.writeError(w, r, http.StatusNotFound, err)
	case errors.Is(err, sharederrors.ErrInvalidInterval),
		errors.Is(err, sharederrors.ErrInvalidWebsiteURL),
		errors.Is(err, sharederrors.ErrEmptyNotifyEmail),
		errors.Is(err, sharederrors.ErrIllegalActionTransition),
		errors.Is(err, sharederrors.ErrActionTerminal):
		s.writeError(w, r, http.StatusBadRequest, err)
	default:
		s.writeError(w, r, http.StatusInternalServerError, err)
	}
}

func queryInt64(r *http.Request, key string) int64 {
	if q := r.URL.Query().Get(key); q != "" {
		if v, err := strconv.ParseInt(q, 10, 64); err == nil {
			return v
		}
	}
	return 0
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := r.RemoteAddr
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if idx := strings.Index(forwarded, ","); idx > 0 {
				clientIP = strings.TrimSpace(forwarded[:idx])
			} else {
				clientIP = strings.TrimSpace(forwarded)
			}
		}
		if idx := strings.LastIndex(clientIP, ":"); idx > 0 {
			clientIP = clientIP[:idx]
		}

		limiter := s.limiters.getLimiter(clientIP, s.cfg.RateLimit, s.cfg.RateBurst)
		if !limiter.Allow() {
			s.requestLogger(r).Warn("rate_limit_exceeded", zap.String("client_ip", clientIP))
			s.writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := "*"
		if len(s.cfg.CORSOrigins) > 0 {
			allowOrigin = ""
			for _, allowed := range s.cfg.CORSOrigins {
				if allowed == origin {
					allowOrigin = origin
					break
				}
			}
		}
		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Auth-Token")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		if s.cfg.Logger != nil {
			s.cfg.Logger.Info("http_request",
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", lrw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", lrw.bytesWritten),
			)
		}
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.cfg.AuthToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Auth-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) != 1 {
			s.writeError(w, r, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	// 5xx details stay server-side.
	if status >= 500 {
		s.requestLogger(r).Error("internal_server_error", zap.Error(err), zap.Int("status", status))
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if s.cfg.Logger == nil {
		return zap.NewNop()
	}
	return s.cfg.Logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// rateLimiterMap manages per-IP limiters with periodic cleanup of idle
// entries.
type rateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiterMap() *rateLimiterMap {
	m := &rateLimiterMap{limiters: make(map[string]*ipLimiter)}
	go m.cleanupLoop()
	return m
}

func (m *rateLimiterMap) getLimiter(ip string, rps, burst int) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, exists := m.limiters[ip]
	if !exists {
		if burst <= 0 {
			burst = rps
		}
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
		m.limiters[ip] = l
	}
	l.lastSeen = time.Now()
	return l.limiter
}

func (m *rateLimiterMap) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		for ip, l := range m.limiters {
			if time.Since(l.lastSeen) > 5*time.Minute {
				delete(m.limiters, ip)
			}
		}
		m.mu.Unlock()
	}
}

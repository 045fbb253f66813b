package website

import (
	"net/url"
	"strings"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// Status is the derived health status of a monitored website. It is never set
// directly by a user action; only a completed check may change it.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

// Website is the aggregate root for one monitored site. All checks, alerts and
// findings are owned by a website and cascade on deletion.
type Website struct {
	id            int64
	userID        int64
	url           string
	name          string
	notifyEmail   string
	active        bool
	checkInterval int // minutes, one of constants.CheckIntervals
	status        Status
	securityScore int
	lastCheckAt   time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// New validates monitoring configuration and returns a website in the
// pre-first-check state (status unknown, score 100).
func New(userID int64, rawURL, name, notifyEmail string, intervalMinutes int) (*Website, error) {
	if userID <= 0 {
		return nil, sharederrors.ErrEmptyOwner
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, sharederrors.ErrInvalidWebsiteURL
	}
	if strings.TrimSpace(notifyEmail) == "" {
		return nil, sharederrors.ErrEmptyNotifyEmail
	}
	if !ValidInterval(intervalMinutes) {
		return nil, sharederrors.ErrInvalidInterval
	}
	if name == "" {
		name = u.Host
	}
	now := time.Now().UTC()
	return &Website{
		userID:        userID,
		url:           rawURL,
		name:          name,
		notifyEmail:   notifyEmail,
		active:        true,
		checkInterval: intervalMinutes,
		status:        StatusUnknown,
		securityScore: 100,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a website from persisted data.
func Reconstruct(id, userID int64, rawURL, name, notifyEmail string, active bool,
	intervalMinutes int, status Status, securityScore int, lastCheckAt, createdAt, updatedAt time.Time) *Website {
	return &Website{
		id:            id,
		userID:        userID,
		url:           rawURL,
		name:          name,
		notifyEmail:   notifyEmail,
		active:        active,
		checkInterval: intervalMinutes,
		status:        status,
		securityScore: securityScore,
		lastCheckAt:   lastCheckAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ValidInterval reports whether minutes is in the allowed interval set.
func ValidInterval(minutes int) bool {
	for _, v := range constants.CheckIntervals {
		if v == minutes {
			return true
		}
	}
	return false
}

// Business methods

// SetID assigns the persistence identity once, on first save.
func (w *Website) SetID(id int64) {
	if w.id == 0 {
		w.id = id
	}
}

// ApplyCheckOutcome records the result of a completed pipeline run. This is the
// only way status and score change.
func (w *Website) ApplyCheckOutcome(status Status, securityScore int, checkedAt time.Time) {
	if securityScore < 0 {
		securityScore = 0
	}
	if securityScore > 100 {
		securityScore = 100
	}
	w.status = status
	w.securityScore = securityScore
	w.lastCheckAt = checkedAt
	w.updatedAt = time.Now().UTC()
}

// UpdateConfig changes the monitoring configuration without touching derived state.
func (w *Website) UpdateConfig(name, notifyEmail string, intervalMinutes int, active bool) error {
	if strings.TrimSpace(notifyEmail) == "" {
		return sharederrors.ErrEmptyNotifyEmail
	}
	if !ValidInterval(intervalMinutes) {
		return sharederrors.ErrInvalidInterval
	}
	if name != "" {
		w.name = name
	}
	w.notifyEmail = notifyEmail
	w.checkInterval = intervalMinutes
	w.active = active
	w.updatedAt = time.Now().UTC()
	return nil
}

// NextDueAt derives when the next scheduled check is due. A website that has
// never been checked is due immediately.
func (w *Website) NextDueAt() time.Time {
	if w.lastCheckAt.IsZero() {
		return time.Time{}
	}
	return w.lastCheckAt.Add(time.Duration(w.checkInterval) * time.Minute)
}

// Due reports whether a scheduled check should run at now.
func (w *Website) Due(now time.Time) bool {
	if !w.active {
		return false
	}
	if w.lastCheckAt.IsZero() {
		return true
	}
	return !now.Before(w.NextDueAt())
}

// Getters

func (w *Website) ID() int64             { return w.id }
func (w *Website) UserID() int64         { return w.userID }
func (w *Website) URL() string           { return w.url }
func (w *Website) Name() string          { return w.name }
func (w *Website) NotifyEmail() string   { return w.notifyEmail }
func (w *Website) Active() bool          { return w.active }
func (w *Website) CheckInterval() int    { return w.checkInterval }
func (w *Website) Status() Status        { return w.status }
func (w *Website) SecurityScore() int    { return w.securityScore }
func (w *Website) LastCheckAt() time.Time { return w.lastCheckAt }
func (w *Website) CreatedAt() time.Time  { return w.createdAt }
func (w *Website) UpdatedAt() time.Time  { return w.updatedAt }

package alert

import (
	"time"

	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// Severity ranks how urgent an alert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank maps a severity onto an ordinal for comparisons. Unknown severities
// rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Valid reports whether the severity is part of the closed set.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// Type is the closed alert taxonomy.
type Type string

const (
	TypeVulnerability    Type = "vulnerability"
	TypeIntrusionAttempt Type = "intrusion_attempt"
	TypeAnomaly          Type = "anomaly"
	TypeDowntime         Type = "downtime"
	TypeContentChange    Type = "content_change"
	TypeSSLIssue         Type = "ssl_issue"
	TypePerformance      Type = "performance"
	TypePhishing         Type = "phishing"
	TypeMaliciousLink    Type = "malicious_link"
	TypeCodeWeakness     Type = "code_weakness"
	TypeBehaviorAnomaly  Type = "behavior_anomaly"
	TypeAttackPrediction Type = "attack_prediction"
	TypeOther            Type = "other"
)

var validTypes = map[Type]struct{}{
	TypeVulnerability: {}, TypeIntrusionAttempt: {}, TypeAnomaly: {},
	TypeDowntime: {}, TypeContentChange: {}, TypeSSLIssue: {},
	TypePerformance: {}, TypePhishing: {}, TypeMaliciousLink: {},
	TypeCodeWeakness: {}, TypeBehaviorAnomaly: {}, TypeAttackPrediction: {},
	TypeOther: {},
}

// Valid reports whether the type is part of the closed taxonomy.
func (t Type) Valid() bool {
	_, ok := validTypes[t]
	return ok
}

// Alert is a user-facing finding owned by a website, optionally linked to the
// originating check. Created by the alert emitter only; mutated only by
// read-state transitions and by the notifier recording delivery.
type Alert struct {
	id          int64
	websiteID   int64
	checkID     int64 // 0 when not linked to a check
	severity    Severity
	alertType   Type
	title       string
	description string
	details     Details
	dedupKey    string
	read        bool
	emailSent   bool
	emailSentAt time.Time
	createdAt   time.Time
}

// New validates and creates an alert. dedupKey is the content-derived key used
// for duplicate suppression; callers derive it from the originating finding
// (vulnerability location, link URL, and so on).
func New(websiteID, checkID int64, severity Severity, alertType Type, title, description, dedupKey string, details Details) (*Alert, error) {
	if websiteID <= 0 {
		return nil, sharederrors.ErrWebsiteNotFound
	}
	if !severity.Valid() {
		return nil, sharederrors.ErrInvalidSeverity
	}
	if !alertType.Valid() {
		return nil, sharederrors.ErrInvalidAlertType
	}
	if title == "" {
		return nil, sharederrors.ErrMissingRequired
	}
	return &Alert{
		websiteID:   websiteID,
		checkID:     checkID,
		severity:    severity,
		alertType:   alertType,
		title:       title,
		description: description,
		details:     details,
		dedupKey:    dedupKey,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds an alert from persisted data.
func Reconstruct(id, websiteID, checkID int64, severity Severity, alertType Type,
	title, description, dedupKey string, details Details, read, emailSent bool,
	emailSentAt, createdAt time.Time) *Alert {
	return &Alert{
		id:          id,
		websiteID:   websiteID,
		checkID:     checkID,
		severity:    severity,
		alertType:   alertType,
		title:       title,
		description: description,
		details:     details,
		dedupKey:    dedupKey,
		read:        read,
		emailSent:   emailSent,
		emailSentAt: emailSentAt,
		createdAt:   createdAt,
	}
}

// SetID assigns the persistence identity once, on first save.
func (a *Alert) SetID(id int64) {
	if a.id == 0 {
		a.id = id
	}
}

// MarkRead flips the read flag. Idempotent.
func (a *Alert) MarkRead() { a.read = true }

// RecordEmailSent is called by the notifier after a successful delivery.
func (a *Alert) RecordEmailSent(at time.Time) {
	a.emailSent = true
	a.emailSentAt = at
}

// Getters

func (a *Alert) ID() int64              { return a.id }
func (a *Alert) WebsiteID() int64       { return a.websiteID }
func (a *Alert) CheckID() int64         { return a.checkID }
func (a *Alert) Severity() Severity     { return a.severity }
func (a *Alert) Type() Type             { return a.alertType }
func (a *Alert) Title() string          { return a.title }
func (a *Alert) Description() string    { return a.description }
func (a *Alert) Details() Details       { return a.details }
func (a *Alert) DedupKey() string       { return a.dedupKey }
func (a *Alert) Read() bool             { return a.read }
func (a *Alert) EmailSent() bool        { return a.emailSent }
func (a *Alert) EmailSentAt() time.Time { return a.emailSentAt }
func (a *Alert) CreatedAt() time.Time   { return a.createdAt }

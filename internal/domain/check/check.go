package check

import (
	"time"

	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// Type distinguishes how a check was triggered.
type Type string

const (
	TypeScheduled Type = "scheduled"
	TypeManual    Type = "manual"
)

// Status is the outcome of one pipeline run.
type Status string

const (
	// StatusSuccess means the probe succeeded and no warning-level condition
	// was observed.
	StatusSuccess Status = "success"
	// StatusWarning means the probe succeeded but scoring resolved to
	// warning or critical.
	StatusWarning Status = "warning"
	// StatusError means the probe itself could not be attempted or failed at
	// the transport level.
	StatusError Status = "error"
)

// MonitoringCheck is one execution record per probe. Immutable once created;
// history per website is append-only.
type MonitoringCheck struct {
	id           int64
	websiteID    int64
	checkType    Type
	status       Status
	responseTime int // milliseconds
	httpStatus   int
	contentHash  string
	analysis     string // serialized typed analysis payload
	rawResponse  string // bounded body snippet
	createdAt    time.Time
}

// New creates a check record for a completed (or failed) run.
func New(websiteID int64, checkType Type, status Status) (*MonitoringCheck, error) {
	if websiteID <= 0 {
		return nil, sharederrors.ErrWebsiteNotFound
	}
	switch checkType {
	case TypeScheduled, TypeManual:
	default:
		return nil, sharederrors.ErrInvalidCheckType
	}
	return &MonitoringCheck{
		websiteID: websiteID,
		checkType: checkType,
		status:    status,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a check record from persisted data.
func Reconstruct(id, websiteID int64, checkType Type, status Status,
	responseTime, httpStatus int, contentHash, analysis, rawResponse string, createdAt time.Time) *MonitoringCheck {
	return &MonitoringCheck{
		id:           id,
		websiteID:    websiteID,
		checkType:    checkType,
		status:       status,
		responseTime: responseTime,
		httpStatus:   httpStatus,
		contentHash:  contentHash,
		analysis:     analysis,
		rawResponse:  rawResponse,
		createdAt:    createdAt,
	}
}

// SetID assigns the persistence identity once, on first save.
func (c *MonitoringCheck) SetID(id int64) {
	if c.id == 0 {
		c.id = id
	}
}

// SetProbeData records the probe measurements before first save.
func (c *MonitoringCheck) SetProbeData(responseTimeMs, httpStatus int, contentHash, rawSnippet string) {
	c.responseTime = responseTimeMs
	c.httpStatus = httpStatus
	c.contentHash = contentHash
	c.rawResponse = rawSnippet
}

// SetAnalysis attaches the serialized analysis payload before first save.
func (c *MonitoringCheck) SetAnalysis(payload string) {
	c.analysis = payload
}

// Getters

func (c *MonitoringCheck) ID() int64           { return c.id }
func (c *MonitoringCheck) WebsiteID() int64    { return c.websiteID }
func (c *MonitoringCheck) CheckType() Type     { return c.checkType }
func (c *MonitoringCheck) Status() Status      { return c.status }
func (c *MonitoringCheck) ResponseTime() int   { return c.responseTime }
func (c *MonitoringCheck) HTTPStatus() int     { return c.httpStatus }
func (c *MonitoringCheck) ContentHash() string { return c.contentHash }
func (c *MonitoringCheck) Analysis() string    { return c.analysis }
func (c *MonitoringCheck) RawResponse() string { return c.rawResponse }
func (c *MonitoringCheck) CreatedAt() time.Time { return c.createdAt }

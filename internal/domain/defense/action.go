package defense

import (
	"time"

	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// ActionType names the mitigation a defense action performs.
type ActionType string

const (
	ActionBlockIP     ActionType = "block_ip"
	ActionDisableFile ActionType = "disable_file"
	ActionRateLimit   ActionType = "rate_limit"
	ActionNotify      ActionType = "notify"
	ActionQuarantine  ActionType = "quarantine"
	ActionOther       ActionType = "other"
)

// Status is the lifecycle state of a defense action.
//
// Legal transitions: pending -> executed -> reverted, or pending -> failed.
// Terminal states (reverted, failed) are immutable.
type Status string

const (
	StatusPending  Status = "pending"
	StatusExecuted Status = "executed"
	StatusFailed   Status = "failed"
	StatusReverted Status = "reverted"
)

// Action is a proposed or executed mitigation, owned by a website and linked
// to the critical alert that triggered it.
type Action struct {
	id            int64
	websiteID     int64
	alertID       int64
	actionType    ActionType
	targetDetails string
	status        Status
	automatic     bool
	executedAt    time.Time
	revertedAt    time.Time
	createdAt     time.Time
}

// New proposes a defense action in pending state.
func New(websiteID, alertID int64, actionType ActionType, targetDetails string, automatic bool) (*Action, error) {
	if websiteID <= 0 {
		return nil, sharederrors.ErrWebsiteNotFound
	}
	return &Action{
		websiteID:     websiteID,
		alertID:       alertID,
		actionType:    actionType,
		targetDetails: targetDetails,
		status:        StatusPending,
		automatic:     automatic,
		createdAt:     time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds an action from persisted data.
func Reconstruct(id, websiteID, alertID int64, actionType ActionType, targetDetails string,
	status Status, automatic bool, executedAt, revertedAt, createdAt time.Time) *Action {
	return &Action{
		id:            id,
		websiteID:     websiteID,
		alertID:       alertID,
		actionType:    actionType,
		targetDetails: targetDetails,
		status:        status,
		automatic:     automatic,
		executedAt:    executedAt,
		revertedAt:    revertedAt,
		createdAt:     createdAt,
	}
}

// SetID assigns the persistence identity once, on first save.
func (a *Action) SetID(id int64) {
	if a.id == 0 {
		a.id = id
	}
}

// MarkExecuted transitions pending -> executed.
func (a *Action) MarkExecuted(at time.Time) error {
	if a.status != StatusPending {
		return sharederrors.ErrIllegalActionTransition
	}
	a.status = StatusExecuted
	a.executedAt = at
	return nil
}

// MarkFailed transitions pending -> failed. Failed is terminal.
func (a *Action) MarkFailed() error {
	if a.status != StatusPending {
		return sharederrors.ErrIllegalActionTransition
	}
	a.status = StatusFailed
	return nil
}

// MarkReverted transitions executed -> reverted. Reverted is terminal.
func (a *Action) MarkReverted(at time.Time) error {
	switch a.status {
	case StatusExecuted:
		a.status = StatusReverted
		a.revertedAt = at
		return nil
	case StatusReverted, StatusFailed:
		return sharederrors.ErrActionTerminal
	default:
		return sharederrors.ErrIllegalActionTransition
	}
}

// Terminal reports whether the action can no longer change state.
func (a *Action) Terminal() bool {
	return a.status == StatusReverted || a.status == StatusFailed
}

// Getters

func (a *Action) ID() int64             { return a.id }
func (a *Action) WebsiteID() int64      { return a.websiteID }
func (a *Action) AlertID() int64        { return a.alertID }
func (a *Action) ActionType() ActionType { return a.actionType }
func (a *Action) TargetDetails() string { return a.targetDetails }
func (a *Action) Status() Status        { return a.status }
func (a *Action) Automatic() bool       { return a.automatic }
func (a *Action) ExecutedAt() time.Time { return a.executedAt }
func (a *Action) RevertedAt() time.Time { return a.revertedAt }
func (a *Action) CreatedAt() time.Time  { return a.createdAt }

// Package defense turns critical alerts into mitigation actions: automatic
// execution through the external mitigator for hostile-activity alerts, and
// manual propose/execute/revert flows for operators.
package defense

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/defense"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// Orchestrator owns the defense action lifecycle. Automatic reactions are
// restricted to critical alerts of hostile types; everything else requires an
// operator to propose the action explicitly.
type Orchestrator struct {
	actions   defense.Repository
	alerts    alert.Repository
	websites  website.Repository
	mitigator intel.Mitigator
	logger    *zap.Logger
}

func NewOrchestrator(actions defense.Repository, alerts alert.Repository,
	websites website.Repository, mitigator intel.Mitigator, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		actions:   actions,
		alerts:    alerts,
		websites:  websites,
		mitigator: mitigator,
		logger:    logger,
	}
}

// React inspects freshly created alerts and auto-executes mitigations for the
// critical hostile ones. Failures are recorded as failed actions plus a
// follow-up alert; they never propagate to the pipeline.
func (o *Orchestrator) React(ctx context.Context, site *website.Website, created []*alert.Alert) {
	if o.mitigator == nil || site == nil {
		return
	}
	for _, a := range created {
		if a.Severity() != alert.SeverityCritical {
			continue
		}
		var actionType defense.ActionType
		switch a.Type() {
		case alert.TypeIntrusionAttempt:
			actionType = defense.ActionBlockIP
		case alert.TypeMaliciousLink:
			actionType = defense.ActionQuarantine
		default:
			continue
		}

		action, err := defense.New(site.ID(), a.ID(), actionType, a.Description(), true)
		if err != nil {
			o.logger.Error("propose automatic action failed", zap.Error(err))
			continue
		}
		if err := o.actions.Save(ctx, action); err != nil {
			o.logger.Error("save automatic action failed", zap.Error(err))
			continue
		}
		if err := o.execute(ctx, site, action); err != nil {
			o.logger.Warn("automatic mitigation failed",
				zap.Int64("action_id", action.ID()),
				zap.String("action_type", string(actionType)),
				zap.Error(err))
			o.recordFailure(ctx, site, action, err)
		}
	}
}

// Propose records a manual pending action for later execution.
func (o *Orchestrator) Propose(ctx context.Context, websiteID, alertID int64, actionType defense.ActionType, targetDetails string) (*defense.Action, error) {
	if _, err := o.websites.FindByID(ctx, websiteID); err != nil {
		return nil, err
	}
	action, err := defense.New(websiteID, alertID, actionType, targetDetails, false)
	if err != nil {
		return nil, err
	}
	if err := o.actions.Save(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

// Execute runs a pending action through the mitigator. The state transition
// is persisted whether it succeeds or fails.
func (o *Orchestrator) Execute(ctx context.Context, actionID int64) (*defense.Action, error) {
	action, err := o.actions.FindByID(ctx, actionID)
	if err != nil {
		return nil, err
	}
	site, err := o.websites.FindByID(ctx, action.WebsiteID())
	if err != nil {
		return nil, err
	}
	if err := o.execute(ctx, site, action); err != nil {
		o.recordFailure(ctx, site, action, err)
		return action, err
	}
	return action, nil
}

func (o *Orchestrator) execute(ctx context.Context, site *website.Website, action *defense.Action) error {
	if action.Status() != defense.StatusPending {
		return sharederrors.ErrIllegalActionTransition
	}
	if o.mitigator == nil {
		return fmt.Errorf("no mitigation executor configured")
	}
	err := o.mitigator.Execute(ctx, intel.Mitigation{
		ActionType:    string(action.ActionType()),
		TargetDetails: action.TargetDetails(),
		WebsiteURL:    site.URL(),
	})
	now := time.Now().UTC()
	if err != nil {
		if terr := action.MarkFailed(); terr != nil {
			return terr
		}
		if uerr := o.actions.Update(ctx, action); uerr != nil {
			return fmt.Errorf("mitigation failed (%v); persisting failure: %w", err, uerr)
		}
		return err
	}
	if terr := action.MarkExecuted(now); terr != nil {
		return terr
	}
	if uerr := o.actions.Update(ctx, action); uerr != nil {
		return uerr
	}
	o.logger.Info("defense action executed",
		zap.Int64("action_id", action.ID()),
		zap.String("action_type", string(action.ActionType())),
		zap.Int64("website_id", action.WebsiteID()))
	return nil
}

// Revert undoes an executed action. Terminal actions are rejected.
func (o *Orchestrator) Revert(ctx context.Context, actionID int64) (*defense.Action, error) {
	action, err := o.actions.FindByID(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if err := action.MarkReverted(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := o.actions.Update(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

// ListByWebsite returns a website's defense actions, newest first.
func (o *Orchestrator) ListByWebsite(ctx context.Context, websiteID int64) ([]*defense.Action, error) {
	return o.actions.FindByWebsite(ctx, websiteID)
}

// recordFailure raises an alert describing the failed mitigation so the
// operator knows the automated layer did not hold.
func (o *Orchestrator) recordFailure(ctx context.Context, site *website.Website, action *defense.Action, cause error) {
	a, err := alert.New(site.ID(), 0, alert.SeverityHigh, alert.TypeOther,
		"Defense action failed",
		fmt.Sprintf("%s could not be executed: %v", action.ActionType(), cause),
		fmt.Sprintf("defense_failure|%d", action.ID()),
		alert.DefenseFailureDetails{
			ActionID:   action.ID(),
			ActionType: string(action.ActionType()),
			Reason:     cause.Error(),
		})
	if err != nil {
		o.logger.Error("build defense failure alert", zap.Error(err))
		return
	}
	if err := o.alerts.Save(ctx, a); err != nil {
		o.logger.Error("save defense failure alert", zap.Error(err))
	}
}

package services

import (
	"context"
	"fmt"

	"github.com/ochairo/pkggate/internal/domain/entities"
	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
	"github.com/ochairo/pkggate/internal/domain/interfaces/services"
)

// outcomeRouter sends each decision down exactly one side-effect path
type outcomeRouter struct {
	publisher services.Publisher
	notifier  gateways.Notifier
	logger    interfaces.Logger
}

// NewOutcomeRouter creates a router that publishes admitted packages and
// reports on every outcome through notifier
func NewOutcomeRouter(publisher services.Publisher, notifier gateways.Notifier, logger interfaces.Logger) services.OutcomeRouter {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &outcomeRouter{publisher: publisher, notifier: notifier, logger: logger}
}

// Dispatch publishes on Admit and notifies the requester of the result
func (r *outcomeRouter) Dispatch(ctx context.Context, artifact *entities.Artifact, decision entities.Decision) services.DispatchResult {
	name := artifact.Name
	log := r.logger.With(interfaces.F("package", name))

	if !decision.Admitted() {
		log.Info("rejecting package", interfaces.F("findings", len(decision.Findings)))
		return services.DispatchResult{
			State:     entities.StateRejected,
			NotifyErr: r.notify(ctx, log, FindingsReportMessage(name, decision)),
		}
	}

	log.Info("admitting package", interfaces.F("target", string(r.publisher.Target())))
	receipt, err := r.publisher.Publish(ctx, artifact)
	if err != nil {
		log.Error("publish failed", interfaces.F("error", err.Error()))
		return services.DispatchResult{
			State:     entities.StatePublishFailed,
			Err:       err,
			NotifyErr: r.notify(ctx, log, PublishFailedMessage(name, err)),
		}
	}

	return services.DispatchResult{
		State:     entities.StatePublished,
		Receipt:   receipt,
		NotifyErr: r.notify(ctx, log, ApprovedMessage(name, receipt)),
	}
}

// notify is best-effort; a failure is logged and returned, never escalated
func (r *outcomeRouter) notify(ctx context.Context, log interfaces.Logger, msg gateways.Message) error {
	if err := r.notifier.Notify(ctx, msg); err != nil {
		wrapped := fmt.Errorf("%w: %v", entities.ErrNotify, err)
		log.Warn("notification not sent", interfaces.F("subject", msg.Subject), interfaces.F("error", wrapped.Error()))
		return wrapped
	}
	log.Info("notification sent", interfaces.F("subject", msg.Subject))
	return nil
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/notify"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// NotificationService turns complaint events into admin emails. Delivery is
// best effort: failures are counted and returned to the dispatcher, which
// logs them once.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     notify.Mailer
	metrics    *observability.Metrics
	logger     *zap.Logger
	recipient  string
	baseURL    string
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Mailer     notify.Mailer
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, baseURL string, deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = notify.NewNoopMailer(logger)
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		mailer:     mailer,
		metrics:    deps.Metrics,
		logger:     logger,
		recipient:  cfg.AdminEmail,
		baseURL:    baseURL,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleComplaintStatusChanged)
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	msg, err := notify.NewComplaintEmail(n.recipient, n.baseURL, payload.Complaint)
	if err != nil {
		return err
	}
	return n.deliver(ctx, event, msg)
}

func (n *NotificationService) handleComplaintStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	msg, err := notify.StatusUpdateEmail(n.recipient, payload.Complaint, payload.OldStatus, payload.NewStatus, event.Timestamp)
	if err != nil {
		return err
	}
	return n.deliver(ctx, event, msg)
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, msg notify.Message) error {
	if notify.Skipped(n.mailer) {
		_ = n.mailer.Send(ctx, msg)
		n.metrics.RecordNotification(string(event.Type), observability.OutcomeSkipped)
		return nil
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		n.metrics.RecordNotification(string(event.Type), observability.OutcomeFailed)
		return fmt.Errorf("send %s email: %w", event.Type, err)
	}

	n.metrics.RecordNotification(string(event.Type), observability.OutcomeSent)
	n.logger.Info("notification sent",
		zap.String("event_type", string(event.Type)),
		zap.String("complaint_id", event.ComplaintID))
	return nil
}

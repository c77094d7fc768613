package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

// Drainer is implemented by dispatchers that can wait for in-flight handlers.
type Drainer interface {
	Wait(ctx context.Context) error
}

// NotificationWorker owns the lifecycle of complaint notifications.
type NotificationWorker struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationWorker {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	return &NotificationWorker{dispatcher: dispatcher, logger: logger}
}

// Stop waits up to timeout for pending notifications.
func (w *NotificationWorker) Stop(timeout time.Duration) {
	if w == nil {
		return
	}
	drainer, ok := w.dispatcher.(Drainer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := drainer.Wait(ctx); err != nil {
		w.logger.Warn("pending notifications abandoned", zap.Error(err))
		return
	}
	w.logger.Info("notifications drained")
}

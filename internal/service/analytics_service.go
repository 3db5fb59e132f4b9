package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/events"
	"github.com/spec-kit/call-triage-service/internal/observability"
)

// AnalyticsService consumes pipeline events for logging and counters. It is
// the sink lifecycle events are forwarded to; handlers must tolerate being
// invoked more than once for a redelivered event.
type AnalyticsService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAnalyticsService creates the service.
func NewAnalyticsService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AnalyticsService {
	return &AnalyticsService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AnalyticsService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventCallStarted, a.handleLifecycle)
	a.dispatcher.Subscribe(events.EventCallEnded, a.handleLifecycle)
	a.dispatcher.Subscribe(events.EventStatusUpdate, a.handleLifecycle)
	a.dispatcher.Subscribe(events.EventTriageCompleted, a.handleTriageCompleted)
	a.dispatcher.Subscribe(events.EventAlertsDispatched, a.handleAlertsDispatched)
	a.dispatcher.Subscribe(events.EventEventRejected, a.handleRejected)
}

func (a *AnalyticsService) handleLifecycle(ctx context.Context, event events.Event) error {
	a.logger.Info("call lifecycle",
		zap.String("type", string(event.Type)),
		zap.String("tenant_id", event.TenantID),
		zap.String("call_id", event.CallID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AnalyticsService) handleTriageCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TriageCompletedPayload)
	if ok && a.metrics != nil {
		a.metrics.RecordTriage(event.TenantID, payload.RequiresImmediateAttention)
	}
	a.logger.Info("triage completed",
		zap.String("tenant_id", event.TenantID),
		zap.String("call_id", event.CallID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AnalyticsService) handleAlertsDispatched(ctx context.Context, event events.Event) error {
	a.logger.Info("alerts dispatched",
		zap.String("tenant_id", event.TenantID),
		zap.String("call_id", event.CallID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AnalyticsService) handleRejected(ctx context.Context, event events.Event) error {
	a.logger.Warn("event rejected",
		zap.String("call_id", event.CallID),
		zap.Any("payload", event.Payload))
	return nil
}

package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/alert"
	"github.com/spec-kit/call-triage-service/internal/config"
	"github.com/spec-kit/call-triage-service/internal/domain"
	"github.com/spec-kit/call-triage-service/internal/events"
	"github.com/spec-kit/call-triage-service/internal/persistence"
	"github.com/spec-kit/call-triage-service/internal/repository"
	"github.com/spec-kit/call-triage-service/internal/resolver"
	"github.com/spec-kit/call-triage-service/internal/triage"
	apperrors "github.com/spec-kit/call-triage-service/pkg/util/errorutil"
)

// Acknowledgment is the generic response returned for non-tool events.
type Acknowledgment struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ToolResult echoes one tool invocation back to the platform. The field
// names are a protocol contract, not a naming choice.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// ToolAcknowledgment wraps tool results in the envelope the platform expects.
type ToolAcknowledgment struct {
	Results []ToolResult `json:"results"`
}

// WebhookDependencies bundles collaborators for the pipeline.
type WebhookDependencies struct {
	Resolver   *resolver.TenantResolver
	Classifier *triage.Classifier
	Fanout     *alert.Fanout
	EventLog   repository.EventLogRepository
	Redis      *persistence.Redis
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// WebhookService is the call-event pipeline: verify, parse, resolve, branch,
// classify, fan out, log.
type WebhookService struct {
	cfg        config.WebhookConfig
	resolver   *resolver.TenantResolver
	classifier *triage.Classifier
	fanout     *alert.Fanout
	eventLog   repository.EventLogRepository
	redis      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewWebhookService creates the service.
func NewWebhookService(cfg config.WebhookConfig, deps WebhookDependencies) *WebhookService {
	return &WebhookService{
		cfg:        cfg,
		resolver:   deps.Resolver,
		classifier: deps.Classifier,
		fanout:     deps.Fanout,
		eventLog:   deps.EventLog,
		redis:      deps.Redis,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// VerifySignature checks the HMAC-SHA256 hex signature of the raw body
// against the shared secret. An unset secret disables verification, which
// is only acceptable for local development and is logged as such.
func (s *WebhookService) VerifySignature(raw []byte, signature string) error {
	if s.cfg.SharedSecret == "" {
		s.logger.Warn("webhook shared secret not configured; accepting unsigned delivery")
		return nil
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return apperrors.NewAuthenticationFailure("missing signature")
	}

	mac := hmac.New(sha256.New, []byte(s.cfg.SharedSecret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return apperrors.NewAuthenticationFailure("signature mismatch")
	}
	return nil
}

// Process runs one verified delivery through the pipeline and returns the
// acknowledgment body. Every path appends an event-log row before
// returning; tenant-resolution failures are logged with the attempted
// identifiers and surfaced as typed rejections.
func (s *WebhookService) Process(ctx context.Context, raw []byte) (any, error) {
	event, err := ParseInboundEvent(raw, s.now())
	if err != nil {
		// a rejection is still auditable when the body carried a call id
		if event != nil && event.CallID != "" {
			s.logRejection(ctx, event, err)
		}
		return nil, err
	}

	tenant, err := s.resolver.Resolve(ctx, resolver.Criteria{
		AssistantID: event.AssistantID,
		PhoneNumber: event.PhoneNumber,
		CallID:      event.CallID,
	})
	if err != nil {
		s.logRejection(ctx, event, err)
		return nil, err
	}

	switch {
	case event.Type.IsLifecycle():
		return s.handleLifecycle(ctx, tenant, event)
	case event.Type == domain.EventToolCalls:
		return s.handleToolCalls(ctx, tenant, event)
	case event.Type == domain.EventEmergencyCheck:
		return s.handleEmergencyCheck(ctx, tenant, event)
	default:
		// Unknown event types are logged and acknowledged rather than
		// dropped; the platform adds types faster than we track them.
		return s.handleLifecycle(ctx, tenant, event)
	}
}

func (s *WebhookService) handleLifecycle(ctx context.Context, tenant *domain.Tenant, event *domain.InboundEvent) (any, error) {
	duplicate := s.markDelivery(ctx, event)

	entry := &domain.EventLogEntry{
		ID:        uuid.NewString(),
		TenantID:  &tenant.ID,
		CallID:    event.CallID,
		EventType: event.Type,
		Outcome:   domain.OutcomeProcessed,
		Duplicate: duplicate,
	}
	if err := s.appendLog(ctx, entry); err != nil {
		return nil, err
	}

	// unknown lifecycle-ish types land on status_update; the payload keeps
	// the raw platform type either way
	analyticsType := events.EventStatusUpdate
	switch event.Type {
	case domain.EventCallStarted:
		analyticsType = events.EventCallStarted
	case domain.EventCallEnded:
		analyticsType = events.EventCallEnded
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      analyticsType,
		TenantID:  tenant.ID,
		CallID:    event.CallID,
		Timestamp: s.now(),
		Payload:   events.CallLifecyclePayload{EventType: event.Type, Duplicate: duplicate},
	})

	return Acknowledgment{Success: true}, nil
}

func (s *WebhookService) handleToolCalls(ctx context.Context, tenant *domain.Tenant, event *domain.InboundEvent) (any, error) {
	if len(event.ToolCalls) == 0 {
		return nil, apperrors.NewValidationError("tool-calls event without tool calls", nil)
	}

	entry := &domain.EventLogEntry{
		ID:        uuid.NewString(),
		TenantID:  &tenant.ID,
		CallID:    event.CallID,
		EventType: event.Type,
		Outcome:   domain.OutcomeProcessed,
	}

	results := make([]ToolResult, 0, len(event.ToolCalls))
	for _, call := range event.ToolCalls {
		var outcome string
		switch normalizeToolName(call.Name) {
		case "check_emergency":
			result := s.runEmergencyCheck(ctx, tenant, event, call.Arguments)
			entry.TriageID = &result.ID
			entry.Score = &result.Score
			entry.RequiresImmediateAttention = &result.RequiresImmediateAttention
			if result.RequiresImmediateAttention {
				outcome = "URGENT: emergency detected, a technician has been alerted."
			} else {
				outcome = fmt.Sprintf("Not urgent (score %.2f). The request has been queued for normal scheduling.", result.Score)
			}
		case "check_availability":
			outcome = availabilityAnswer(tenant, s.now())
		default:
			outcome = fmt.Sprintf("Unsupported tool: %s", call.Name)
		}
		results = append(results, ToolResult{ToolCallID: call.ID, Result: outcome})
	}

	if err := s.appendLog(ctx, entry); err != nil {
		return nil, err
	}
	return ToolAcknowledgment{Results: results}, nil
}

func (s *WebhookService) handleEmergencyCheck(ctx context.Context, tenant *domain.Tenant, event *domain.InboundEvent) (any, error) {
	result := s.runEmergencyCheck(ctx, tenant, event, nil)

	entry := &domain.EventLogEntry{
		ID:                         uuid.NewString(),
		TenantID:                   &tenant.ID,
		CallID:                     event.CallID,
		EventType:                  event.Type,
		Outcome:                    domain.OutcomeProcessed,
		TriageID:                   &result.ID,
		Score:                      &result.Score,
		RequiresImmediateAttention: &result.RequiresImmediateAttention,
	}
	if err := s.appendLog(ctx, entry); err != nil {
		return nil, err
	}

	return Acknowledgment{Success: true, Result: map[string]any{
		"triageId":                   result.ID,
		"score":                      result.Score,
		"language":                   result.Language,
		"requiresImmediateAttention": result.RequiresImmediateAttention,
	}}, nil
}

// runEmergencyCheck classifies the call and fans alerts out when the score
// crosses the threshold. Classification panics are contained as score 0.0;
// a dropped emergency event is the worst outcome this pipeline can produce.
func (s *WebhookService) runEmergencyCheck(ctx context.Context, tenant *domain.Tenant, event *domain.InboundEvent, args map[string]any) domain.TriageResult {
	callCtx := s.buildCallContext(tenant, event, args)

	result := func() (result domain.TriageResult) {
		defer func() {
			if r := recover(); r != nil {
				classErr := apperrors.NewClassificationFailure(fmt.Errorf("panic: %v", r))
				s.logger.Warn("classification failed; treating as not urgent",
					zap.String("tenant_id", tenant.ID),
					zap.String("call_id", event.CallID),
					zap.Error(classErr),
				)
				result = domain.TriageResult{
					ID:        uuid.NewString(),
					TenantID:  tenant.ID,
					CallID:    event.CallID,
					Language:  tenant.PrimaryLanguage,
					CreatedAt: s.now(),
				}
			}
		}()
		return s.classifier.Score(callCtx)
	}()

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTriageCompleted,
		TenantID:  tenant.ID,
		CallID:    event.CallID,
		Timestamp: s.now(),
		Payload: events.TriageCompletedPayload{
			TriageID:                   result.ID,
			Score:                      result.Score,
			Language:                   result.Language,
			MatchCount:                 len(result.Matches),
			RequiresImmediateAttention: result.RequiresImmediateAttention,
		},
	})

	if !result.RequiresImmediateAttention {
		return result
	}

	attempts := s.fanout.Dispatch(ctx, tenant, callCtx, result)
	sent, failed := 0, 0
	for _, attempt := range attempts {
		if attempt.Status == domain.AlertStatusSent {
			sent++
		} else if attempt.Status == domain.AlertStatusFailed {
			failed++
		}
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAlertsDispatched,
		TenantID:  tenant.ID,
		CallID:    event.CallID,
		Timestamp: s.now(),
		Payload:   events.AlertsDispatchedPayload{TriageID: result.ID, Sent: sent, Failed: failed},
	})

	return result
}

func (s *WebhookService) buildCallContext(tenant *domain.Tenant, event *domain.InboundEvent, args map[string]any) domain.CallContext {
	callCtx := domain.CallContext{
		TenantID:        tenant.ID,
		CallID:          event.CallID,
		CustomerName:    event.CustomerName,
		CustomerPhone:   event.CustomerPhone,
		Industry:        tenant.Industry,
		PrimaryLanguage: tenant.PrimaryLanguage,
		Languages:       tenant.SupportedLanguages,
		LanguageHint:    event.LanguageHint,
		Threshold:       tenant.Threshold(0),
		Transcript:      event.Transcript,
	}

	// A tool invocation may carry the caller's description directly instead
	// of a recorded transcript.
	if len(callCtx.Transcript) == 0 && args != nil {
		if description, ok := args["description"].(string); ok && strings.TrimSpace(description) != "" {
			callCtx.Transcript = []domain.TranscriptTurn{{Role: "user", Text: description}}
		}
	}
	if args != nil {
		if name, ok := args["customerName"].(string); ok && callCtx.CustomerName == "" {
			callCtx.CustomerName = name
		}
		if phone, ok := args["customerPhone"].(string); ok && callCtx.CustomerPhone == "" {
			callCtx.CustomerPhone = phone
		}
	}
	return callCtx
}

// markDelivery sets the idempotency marker and reports whether this
// delivery is a duplicate. Redis being unavailable degrades to "fresh"
// with a warning; the log row remains the source of truth.
func (s *WebhookService) markDelivery(ctx context.Context, event *domain.InboundEvent) bool {
	if event.CallID == "" {
		return false
	}
	key := fmt.Sprintf("evt:%s:%s", event.CallID, event.Type)
	first, err := s.redis.MarkDelivery(ctx, key, s.cfg.DedupTTL())
	if err != nil {
		s.logger.Warn("idempotency marker unavailable", zap.String("key", key), zap.Error(err))
		return false
	}
	return !first
}

func (s *WebhookService) appendLog(ctx context.Context, entry *domain.EventLogEntry) error {
	if err := s.eventLog.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to append event log",
			zap.String("call_id", entry.CallID),
			zap.String("event_type", string(entry.EventType)),
			zap.Error(err),
		)
		return apperrors.NewInternalError(err)
	}
	return nil
}

// logRejection records a resolution failure with the attempted identifiers.
func (s *WebhookService) logRejection(ctx context.Context, event *domain.InboundEvent, cause error) {
	code := "TENANT_NOT_FOUND"
	if de := apperrors.ToDomainError(cause); de != nil {
		code = de.Code
	}
	entry := &domain.EventLogEntry{
		ID:            uuid.NewString(),
		CallID:        event.CallID,
		EventType:     event.Type,
		Outcome:       domain.OutcomeRejected,
		RejectionCode: code,
		Details: map[string]any{
			"assistant_id": event.AssistantID,
			"phone_number": event.PhoneNumber,
			"call_id":      event.CallID,
		},
	}
	if err := s.eventLog.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to log rejection", zap.String("call_id", event.CallID), zap.Error(err))
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventEventRejected,
		CallID:    event.CallID,
		Timestamp: s.now(),
		Payload: events.EventRejectedPayload{
			Code:        code,
			AssistantID: event.AssistantID,
			PhoneNumber: event.PhoneNumber,
		},
	})
}

func (s *WebhookService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeToolName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "_")
	switch name {
	case "check_emergency", "checkemergency":
		return "check_emergency"
	case "check_availability", "checkavailability":
		return "check_availability"
	}
	return name
}

// availabilityAnswer reports the tenant's service window relative to now.
func availabilityAnswer(tenant *domain.Tenant, now time.Time) string {
	loc, err := time.LoadLocation(tenant.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	start, errStart := time.Parse("15:04", tenant.ServiceWindowStart)
	end, errEnd := time.Parse("15:04", tenant.ServiceWindowEnd)
	if errStart != nil || errEnd != nil {
		return "Technicians are dispatched around the clock for emergencies."
	}

	minutes := local.Hour()*60 + local.Minute()
	openAt := start.Hour()*60 + start.Minute()
	closeAt := end.Hour()*60 + end.Minute()
	open := minutes >= openAt && minutes < closeAt
	if openAt > closeAt {
		// window wraps past midnight, e.g. 20:00 to 04:00
		open = minutes >= openAt || minutes < closeAt
	}
	if open {
		return fmt.Sprintf("We have technicians available today until %s.", tenant.ServiceWindowEnd)
	}
	return fmt.Sprintf("Our office is currently closed; regular hours are %s to %s. Emergencies are dispatched 24/7.",
		tenant.ServiceWindowStart, tenant.ServiceWindowEnd)
}

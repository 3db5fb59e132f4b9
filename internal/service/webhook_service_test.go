package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/alert"
	"github.com/spec-kit/call-triage-service/internal/config"
	"github.com/spec-kit/call-triage-service/internal/domain"
	"github.com/spec-kit/call-triage-service/internal/events"
	"github.com/spec-kit/call-triage-service/internal/lexicon"
	"github.com/spec-kit/call-triage-service/internal/persistence"
	"github.com/spec-kit/call-triage-service/internal/repository"
	"github.com/spec-kit/call-triage-service/internal/resolver"
	"github.com/spec-kit/call-triage-service/internal/triage"
	apperrors "github.com/spec-kit/call-triage-service/pkg/util/errorutil"
)

type capturingEventLog struct {
	mu      sync.Mutex
	entries []domain.EventLogEntry
}

func (c *capturingEventLog) Insert(ctx context.Context, entry *domain.EventLogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, *entry)
	return nil
}

func (c *capturingEventLog) TenantIDByCallID(ctx context.Context, callID string) (string, error) {
	return "", pgx.ErrNoRows
}

func (c *capturingEventLog) ListWithFilter(ctx context.Context, filter repository.EventLogFilter) ([]domain.EventLogEntry, error) {
	return nil, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(ctx context.Context, to, body string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to)
	return "msg-1", nil
}

type memoryAttemptRepo struct {
	mu       sync.Mutex
	attempts []domain.AlertAttempt
}

func (m *memoryAttemptRepo) Insert(ctx context.Context, attempt *domain.AlertAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *memoryAttemptRepo) ListByTriageID(ctx context.Context, triageID string) ([]domain.AlertAttempt, error) {
	return nil, nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (r *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

type stubStrategy struct {
	tenant *domain.Tenant
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Attempt(ctx context.Context, criteria resolver.Criteria) (*domain.Tenant, error) {
	return s.tenant, nil
}

type webhookFixture struct {
	service    *WebhookService
	eventLog   *capturingEventLog
	sender     *recordingSender
	attempts   *memoryAttemptRepo
	dispatcher *recordingDispatcher
}

func newWebhookFixture(t *testing.T, tenant *domain.Tenant, secret string) *webhookFixture {
	t.Helper()
	logger := zap.NewNop()
	eventLog := &capturingEventLog{}
	sender := &recordingSender{}
	attempts := &memoryAttemptRepo{}
	dispatcher := &recordingDispatcher{}

	var chain *resolver.TenantResolver
	if tenant != nil {
		chain = resolver.NewWithStrategies(logger, &stubStrategy{tenant: tenant})
	} else {
		chain = resolver.NewWithStrategies(logger)
	}

	svc := NewWebhookService(config.WebhookConfig{SharedSecret: secret}, WebhookDependencies{
		Resolver:   chain,
		Classifier: triage.NewClassifier(lexicon.Default(), 0.7, logger),
		Fanout:     alert.NewFanout(sender, attempts, logger, 4, 0),
		EventLog:   eventLog,
		Redis:      &persistence.Redis{},
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	return &webhookFixture{service: svc, eventLog: eventLog, sender: sender, attempts: attempts, dispatcher: dispatcher}
}

func hvacTenant() *domain.Tenant {
	return &domain.Tenant{
		ID:                   "tenant-1",
		Name:                 "Acme HVAC",
		Industry:             domain.IndustryHVAC,
		PrimaryLanguage:      "en",
		SupportedLanguages:   []string{"en", "es"},
		TechnicianPhones:     []string{"+15550001"},
		CustomerConfirmation: true,
		Active:               true,
	}
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "topsecret")
	body := []byte(`{"message":{"type":"call-started"}}`)

	require.NoError(t, f.service.VerifySignature(body, sign("topsecret", body)))
	require.NoError(t, f.service.VerifySignature(body, "sha256="+sign("topsecret", body)))

	err := f.service.VerifySignature(body, sign("wrong", body))
	require.Error(t, err)
	assert.Equal(t, "AUTHENTICATION_FAILED", apperrors.ToDomainError(err).Code)

	err = f.service.VerifySignature(body, "")
	require.Error(t, err)
	assert.Equal(t, "AUTHENTICATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestVerifySignatureDisabledWithoutSecret(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")
	assert.NoError(t, f.service.VerifySignature([]byte(`{}`), ""))
}

func TestProcessLifecycleEvent(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")
	body := []byte(`{"message":{"type":"call-started","call":{"id":"call-1"},"assistant":{"id":"asst-1"}}}`)

	ack, err := f.service.Process(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, Acknowledgment{Success: true}, ack)

	require.Len(t, f.eventLog.entries, 1)
	entry := f.eventLog.entries[0]
	assert.Equal(t, domain.OutcomeProcessed, entry.Outcome)
	assert.Equal(t, domain.EventCallStarted, entry.EventType)
	assert.Equal(t, "call-1", entry.CallID)
	require.NotNil(t, entry.TenantID)
	assert.Equal(t, "tenant-1", *entry.TenantID)
}

func TestProcessLifecycleEventsKeepAnalyticsTypes(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")

	bodies := map[string]events.EventType{
		"call-started":  events.EventCallStarted,
		"call-ended":    events.EventCallEnded,
		"status-update": events.EventStatusUpdate,
	}
	for platformType, want := range bodies {
		f.dispatcher.published = nil
		body := []byte(`{"message":{"type":"` + platformType + `","call":{"id":"call-1"}}}`)

		_, err := f.service.Process(context.Background(), body)
		require.NoError(t, err)

		require.Len(t, f.dispatcher.published, 1, platformType)
		assert.Equal(t, want, f.dispatcher.published[0].Type, platformType)

		payload, ok := f.dispatcher.published[0].Payload.(events.CallLifecyclePayload)
		require.True(t, ok)
		assert.Equal(t, domain.EventType(platformType), payload.EventType)
	}
}

func TestProcessTenantNotFoundLogsRejection(t *testing.T) {
	f := newWebhookFixture(t, nil, "")
	body := []byte(`{"message":{"type":"call-started","call":{"id":"call-x"},"assistant":{"id":"asst-x"},"phoneNumber":"+15550777"}}`)

	_, err := f.service.Process(context.Background(), body)
	require.Error(t, err)
	assert.Equal(t, "TENANT_NOT_FOUND", apperrors.ToDomainError(err).Code)

	require.Len(t, f.eventLog.entries, 1)
	entry := f.eventLog.entries[0]
	assert.Equal(t, domain.OutcomeRejected, entry.Outcome)
	assert.Equal(t, "TENANT_NOT_FOUND", entry.RejectionCode)
	assert.Equal(t, "asst-x", entry.Details["assistant_id"])
	assert.Equal(t, "+15550777", entry.Details["phone_number"])
	assert.Equal(t, "call-x", entry.Details["call_id"])
}

func TestProcessToolCallResultsEnvelope(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")
	body := []byte(`{"message":{"type":"tool-calls","call":{"id":"call-2"},"toolCallList":[
		{"id":"tc-1","name":"check_emergency","arguments":{"description":"everything is fine, just scheduling"}}
	]}}`)

	ack, err := f.service.Process(context.Background(), body)
	require.NoError(t, err)

	encoded, err := json.Marshal(ack)
	require.NoError(t, err)

	var parsed struct {
		Results []map[string]string `json:"results"`
	}
	require.NoError(t, json.Unmarshal(encoded, &parsed))
	require.Len(t, parsed.Results, 1)
	assert.Equal(t, "tc-1", parsed.Results[0]["toolCallId"])
	assert.NotEmpty(t, parsed.Results[0]["result"])
}

func TestProcessUrgentEmergencyCheckFansOut(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")
	body := []byte(`{"message":{"type":"emergency-check","call":{"id":"call-3"},
		"customer":{"name":"Dana","number":"+15559999"},
		"artifact":{"messages":[{"role":"user","message":"no heat, it's freezing, please help"}]}}}`)

	ack, err := f.service.Process(context.Background(), body)
	require.NoError(t, err)

	generic, ok := ack.(Acknowledgment)
	require.True(t, ok)
	assert.True(t, generic.Success)

	// one technician plus one customer confirmation
	require.Len(t, f.attempts.attempts, 2)
	assert.ElementsMatch(t, []string{"+15550001", "+15559999"}, f.sender.sent)

	require.Len(t, f.eventLog.entries, 1)
	entry := f.eventLog.entries[0]
	require.NotNil(t, entry.RequiresImmediateAttention)
	assert.True(t, *entry.RequiresImmediateAttention)
	require.NotNil(t, entry.Score)
	assert.GreaterOrEqual(t, *entry.Score, 0.7)
}

func TestProcessEmptyTranscriptEmergencyCheck(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")
	body := []byte(`{"message":{"type":"emergency-check","call":{"id":"call-4"}}}`)

	_, err := f.service.Process(context.Background(), body)
	require.NoError(t, err)

	assert.Empty(t, f.attempts.attempts)
	assert.Empty(t, f.sender.sent)

	require.Len(t, f.eventLog.entries, 1)
	entry := f.eventLog.entries[0]
	require.NotNil(t, entry.Score)
	assert.Equal(t, 0.0, *entry.Score)
	require.NotNil(t, entry.RequiresImmediateAttention)
	assert.False(t, *entry.RequiresImmediateAttention)
}

func TestProcessUnknownToolReported(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")
	body := []byte(`{"message":{"type":"tool-calls","call":{"id":"call-5"},"toolCallList":[
		{"id":"tc-9","name":"order_pizza"}
	]}}`)

	ack, err := f.service.Process(context.Background(), body)
	require.NoError(t, err)

	toolAck, ok := ack.(ToolAcknowledgment)
	require.True(t, ok)
	require.Len(t, toolAck.Results, 1)
	assert.Contains(t, toolAck.Results[0].Result, "Unsupported tool")
}

func TestAvailabilityAnswerRegularWindow(t *testing.T) {
	tenant := hvacTenant()
	tenant.Timezone = "UTC"
	tenant.ServiceWindowStart = "08:00"
	tenant.ServiceWindowEnd = "18:00"

	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, availabilityAnswer(tenant, noon), "available today until 18:00")

	night := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	assert.Contains(t, availabilityAnswer(tenant, night), "currently closed")
}

func TestAvailabilityAnswerWindowWrapsMidnight(t *testing.T) {
	tenant := hvacTenant()
	tenant.Timezone = "UTC"
	tenant.ServiceWindowStart = "20:00"
	tenant.ServiceWindowEnd = "04:00"

	lateEvening := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	assert.Contains(t, availabilityAnswer(tenant, lateEvening), "available today until 04:00")

	earlyMorning := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	assert.Contains(t, availabilityAnswer(tenant, earlyMorning), "available today until 04:00")

	midday := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, availabilityAnswer(tenant, midday), "currently closed")
}

func TestProcessMissingEventTypeRejected(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")

	_, err := f.service.Process(context.Background(), []byte(`{"message":{}}`))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	assert.Empty(t, f.eventLog.entries)
}

func TestProcessMissingEventTypeWithCallIDLogged(t *testing.T) {
	f := newWebhookFixture(t, hvacTenant(), "")

	_, err := f.service.Process(context.Background(), []byte(`{"message":{"call":{"id":"call-7"}}}`))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	require.Len(t, f.eventLog.entries, 1)
	entry := f.eventLog.entries[0]
	assert.Equal(t, domain.OutcomeRejected, entry.Outcome)
	assert.Equal(t, "VALIDATION_FAILED", entry.RejectionCode)
	assert.Equal(t, "call-7", entry.CallID)
}

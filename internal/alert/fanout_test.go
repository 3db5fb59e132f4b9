package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/domain"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
	delay   time.Duration
}

func (f *fakeSender) Send(ctx context.Context, to, body string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return "", err
	}
	f.sent = append(f.sent, to)
	return "msg-" + to, nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []domain.AlertAttempt
	err      error
}

func (f *fakeAttemptRepo) Insert(ctx context.Context, attempt *domain.AlertAttempt) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptRepo) ListByTriageID(ctx context.Context, triageID string) ([]domain.AlertAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AlertAttempt(nil), f.attempts...), nil
}

func testTenant() *domain.Tenant {
	return &domain.Tenant{
		ID:                   "tenant-1",
		Name:                 "Acme HVAC",
		PrimaryLanguage:      "en",
		TechnicianPhones:     []string{"+15550001", "+15550002"},
		CustomerConfirmation: true,
	}
}

func testCallContext() domain.CallContext {
	return domain.CallContext{
		TenantID:      "tenant-1",
		CallID:        "call-1",
		CustomerName:  "Dana",
		CustomerPhone: "+15559999",
	}
}

func testResult() domain.TriageResult {
	return domain.TriageResult{
		ID:                         "triage-1",
		TenantID:                   "tenant-1",
		CallID:                     "call-1",
		Score:                      0.83,
		Language:                   "en",
		Matches:                    []domain.KeywordHit{{Phrase: "no heat", Weight: 0.8, Turns: 1}},
		RequiresImmediateAttention: true,
	}
}

func TestDispatchSendsToAllRecipients(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeAttemptRepo{}
	f := NewFanout(sender, repo, zap.NewNop(), 4, time.Second)

	attempts := f.Dispatch(context.Background(), testTenant(), testCallContext(), testResult())

	// two technicians plus one customer confirmation
	require.Len(t, attempts, 3)
	require.Len(t, repo.attempts, 3)

	targets := map[domain.AlertTarget]int{}
	for _, attempt := range attempts {
		assert.Equal(t, domain.AlertStatusSent, attempt.Status)
		assert.NotEmpty(t, attempt.ProviderMessageID)
		assert.Equal(t, "sms", attempt.Channel)
		targets[attempt.Target]++
	}
	assert.Equal(t, 2, targets[domain.AlertTargetTechnician])
	assert.Equal(t, 1, targets[domain.AlertTargetCustomer])
}

func TestDispatchIsolatesFailures(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"+15550001": errors.New("gateway 502"),
	}}
	repo := &fakeAttemptRepo{}
	f := NewFanout(sender, repo, zap.NewNop(), 4, time.Second)

	attempts := f.Dispatch(context.Background(), testTenant(), testCallContext(), testResult())

	require.Len(t, attempts, 3)

	var sent, failed int
	for _, attempt := range attempts {
		switch attempt.Status {
		case domain.AlertStatusSent:
			sent++
		case domain.AlertStatusFailed:
			failed++
			assert.Contains(t, attempt.ErrorDetail, "gateway 502")
		}
	}
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
	// every attempt recorded regardless of outcome
	assert.Len(t, repo.attempts, 3)
}

func TestDispatchRecordsSkippedCustomerWithoutPhone(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeAttemptRepo{}
	f := NewFanout(sender, repo, zap.NewNop(), 4, time.Second)

	callCtx := testCallContext()
	callCtx.CustomerPhone = ""

	attempts := f.Dispatch(context.Background(), testTenant(), callCtx, testResult())

	require.Len(t, attempts, 3)
	var skipped *domain.AlertAttempt
	for i, attempt := range attempts {
		if attempt.Status == domain.AlertStatusSkipped {
			skipped = &attempts[i]
		}
	}
	require.NotNil(t, skipped)
	assert.Equal(t, domain.AlertTargetCustomer, skipped.Target)
	assert.Equal(t, "customer phone number unknown", skipped.ErrorDetail)
	// the skipped record is persisted like any other attempt
	assert.Len(t, repo.attempts, 3)
	// nothing was actually sent to the customer
	assert.Len(t, sender.sent, 2)
}

func TestDispatchSkipsCustomerWithoutConsent(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeAttemptRepo{}
	f := NewFanout(sender, repo, zap.NewNop(), 4, time.Second)

	tenant := testTenant()
	tenant.CustomerConfirmation = false

	attempts := f.Dispatch(context.Background(), tenant, testCallContext(), testResult())

	require.Len(t, attempts, 2)
	for _, attempt := range attempts {
		assert.Equal(t, domain.AlertTargetTechnician, attempt.Target)
	}
}

func TestDispatchTimesOutSlowSends(t *testing.T) {
	sender := &fakeSender{delay: 200 * time.Millisecond}
	repo := &fakeAttemptRepo{}
	f := NewFanout(sender, repo, zap.NewNop(), 4, 10*time.Millisecond)

	attempts := f.Dispatch(context.Background(), testTenant(), testCallContext(), testResult())

	require.Len(t, attempts, 3)
	for _, attempt := range attempts {
		assert.Equal(t, domain.AlertStatusFailed, attempt.Status)
	}
}

func TestDispatchNoRecipients(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeAttemptRepo{}
	f := NewFanout(sender, repo, zap.NewNop(), 4, time.Second)

	tenant := testTenant()
	tenant.TechnicianPhones = nil
	tenant.CustomerConfirmation = false

	attempts := f.Dispatch(context.Background(), tenant, testCallContext(), testResult())
	assert.Empty(t, attempts)
}

func TestDispatchRecordsAttemptsEvenWhenRepoFails(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeAttemptRepo{err: errors.New("insert failed")}
	f := NewFanout(sender, repo, zap.NewNop(), 4, time.Second)

	attempts := f.Dispatch(context.Background(), testTenant(), testCallContext(), testResult())

	// persistence trouble must not lose the in-memory outcome
	require.Len(t, attempts, 3)
	for _, attempt := range attempts {
		assert.Equal(t, domain.AlertStatusSent, attempt.Status)
	}
}

func TestTechnicianMessageLocalized(t *testing.T) {
	result := testResult()
	result.Language = "es"

	msg := technicianMessage("es", "Acme HVAC", testCallContext(), result)
	assert.Contains(t, msg, "URGENTE")
	assert.Contains(t, msg, "Dana")

	msg = technicianMessage("en", "Acme HVAC", testCallContext(), result)
	assert.Contains(t, msg, "URGENT")
}

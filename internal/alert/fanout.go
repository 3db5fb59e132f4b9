// Package alert fans an urgent triage result out to every configured
// recipient. Sends are independent: one failed delivery never stops the
// rest, and every attempt is recorded whatever its outcome.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/call-triage-service/internal/domain"
	"github.com/spec-kit/call-triage-service/internal/repository"
	"github.com/spec-kit/call-triage-service/internal/sms"
)

// Fanout dispatches alert SMS messages with a bounded concurrency cap and a
// per-send timeout.
type Fanout struct {
	sender      sms.Sender
	attempts    repository.AlertAttemptRepository
	logger      *zap.Logger
	concurrency int
	sendTimeout time.Duration
	now         func() time.Time
}

// NewFanout builds the fan-out component.
func NewFanout(sender sms.Sender, attempts repository.AlertAttemptRepository, logger *zap.Logger, concurrency int, sendTimeout time.Duration) *Fanout {
	if concurrency <= 0 {
		concurrency = 4
	}
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	return &Fanout{
		sender:      sender,
		attempts:    attempts,
		logger:      logger,
		concurrency: concurrency,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

type recipient struct {
	target domain.AlertTarget
	phone  string
	body   string
}

// Dispatch sends one technician alert per configured contact plus, when the
// tenant consented, a customer confirmation. It waits for every attempt to
// settle and returns all of them; delivery failures are recorded on the
// attempt, not returned as an error.
func (f *Fanout) Dispatch(ctx context.Context, tenant *domain.Tenant, callCtx domain.CallContext, result domain.TriageResult) []domain.AlertAttempt {
	language := result.Language
	if language == "" {
		language = tenant.PrimaryLanguage
	}

	var recipients []recipient
	var skipped []domain.AlertAttempt
	for _, phone := range tenant.TechnicianPhones {
		recipients = append(recipients, recipient{
			target: domain.AlertTargetTechnician,
			phone:  phone,
			body:   technicianMessage(language, tenant.Name, callCtx, result),
		})
	}
	if tenant.CustomerConfirmation {
		if callCtx.CustomerPhone != "" {
			recipients = append(recipients, recipient{
				target: domain.AlertTargetCustomer,
				phone:  callCtx.CustomerPhone,
				body:   customerMessage(language, tenant.Name),
			})
		} else {
			// consent without a known caller number still leaves a record
			skipped = append(skipped, f.recordSkipped(ctx, tenant, result))
		}
	}
	if len(recipients) == 0 {
		f.logger.Warn("urgent triage with no alert recipients",
			zap.String("tenant_id", tenant.ID),
			zap.String("triage_id", result.ID),
		)
		return skipped
	}

	attempts := make([]domain.AlertAttempt, len(recipients))
	var group errgroup.Group
	group.SetLimit(f.concurrency)
	var mu sync.Mutex

	for i, rcpt := range recipients {
		i, rcpt := i, rcpt
		group.Go(func() error {
			attempt := domain.AlertAttempt{
				ID:        uuid.NewString(),
				TriageID:  result.ID,
				TenantID:  tenant.ID,
				Target:    rcpt.target,
				Recipient: rcpt.phone,
				Channel:   "sms",
				CreatedAt: f.now(),
			}

			sendCtx, cancel := context.WithTimeout(ctx, f.sendTimeout)
			messageID, err := f.sender.Send(sendCtx, rcpt.phone, rcpt.body)
			cancel()

			if err != nil {
				attempt.Status = domain.AlertStatusFailed
				attempt.ErrorDetail = err.Error()
				f.logger.Warn("alert delivery failed",
					zap.String("triage_id", result.ID),
					zap.String("target", string(rcpt.target)),
					zap.String("recipient", rcpt.phone),
					zap.Error(err),
				)
			} else {
				attempt.Status = domain.AlertStatusSent
				attempt.ProviderMessageID = messageID
			}

			if f.attempts != nil {
				if insertErr := f.attempts.Insert(ctx, &attempt); insertErr != nil {
					f.logger.Error("failed to record alert attempt",
						zap.String("triage_id", result.ID),
						zap.Error(insertErr),
					)
				}
			}

			mu.Lock()
			attempts[i] = attempt
			mu.Unlock()
			return nil
		})
	}

	// Tasks never return errors; Wait is just the join.
	_ = group.Wait()
	return append(attempts, skipped...)
}

func (f *Fanout) recordSkipped(ctx context.Context, tenant *domain.Tenant, result domain.TriageResult) domain.AlertAttempt {
	attempt := domain.AlertAttempt{
		ID:          uuid.NewString(),
		TriageID:    result.ID,
		TenantID:    tenant.ID,
		Target:      domain.AlertTargetCustomer,
		Recipient:   "",
		Channel:     "sms",
		Status:      domain.AlertStatusSkipped,
		ErrorDetail: "customer phone number unknown",
		CreatedAt:   f.now(),
	}
	if f.attempts != nil {
		if err := f.attempts.Insert(ctx, &attempt); err != nil {
			f.logger.Error("failed to record alert attempt",
				zap.String("triage_id", result.ID),
				zap.Error(err),
			)
		}
	}
	return attempt
}

func technicianMessage(language, tenantName string, callCtx domain.CallContext, result domain.TriageResult) string {
	caller := callCtx.CustomerName
	if caller == "" {
		caller = "A caller"
	}
	phone := callCtx.CustomerPhone
	if phone == "" {
		phone = "unknown number"
	}

	keywords := ""
	for i, hit := range result.Matches {
		if i > 0 {
			keywords += ", "
		}
		keywords += hit.Phrase
	}

	switch language {
	case "es":
		return fmt.Sprintf("[%s] URGENTE: %s (%s) reportó una emergencia (puntaje %.2f). Frases: %s",
			tenantName, caller, phone, result.Score, keywords)
	default:
		return fmt.Sprintf("[%s] URGENT: %s (%s) reported an emergency (score %.2f). Phrases: %s",
			tenantName, caller, phone, result.Score, keywords)
	}
}

func customerMessage(language, tenantName string) string {
	switch language {
	case "es":
		return fmt.Sprintf("%s: hemos recibido su emergencia y un técnico ha sido alertado. Nos pondremos en contacto en breve.", tenantName)
	default:
		return fmt.Sprintf("%s: we received your emergency and a technician has been alerted. We will be in touch shortly.", tenantName)
	}
}

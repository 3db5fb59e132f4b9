// Package resolver maps an inbound event's opaque identifiers to the owning
// tenant. Strategies run in a fixed priority order; the first hit wins.
package resolver

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/domain"
	"github.com/spec-kit/call-triage-service/internal/repository"
	apperrors "github.com/spec-kit/call-triage-service/pkg/util/errorutil"
)

// Criteria carries the identifiers available on one inbound event. Any of
// them may be empty.
type Criteria struct {
	AssistantID string
	PhoneNumber string
	CallID      string
}

// Strategy is one side-effect-free lookup. A nil result with a nil error
// means "no match here, try the next one".
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, criteria Criteria) (*domain.Tenant, error)
}

// TenantResolver tries each strategy in order.
type TenantResolver struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New assembles the production strategy chain: assistant id, then bound
// phone number, then prior call attribution.
func New(assistants repository.AssistantRepository, tenants repository.TenantRepository, eventLog repository.EventLogRepository, logger *zap.Logger) *TenantResolver {
	return &TenantResolver{
		strategies: []Strategy{
			&assistantIDStrategy{assistants: assistants, tenants: tenants},
			&phoneNumberStrategy{assistants: assistants, tenants: tenants},
			&priorCallStrategy{eventLog: eventLog, tenants: tenants},
		},
		logger: logger,
	}
}

// NewWithStrategies builds a resolver over an explicit chain.
func NewWithStrategies(logger *zap.Logger, strategies ...Strategy) *TenantResolver {
	return &TenantResolver{strategies: strategies, logger: logger}
}

// Resolve returns the owning tenant or a TenantNotFound rejection carrying
// the attempted identifiers. A strategy error is logged and does not stop
// the remaining strategies.
func (r *TenantResolver) Resolve(ctx context.Context, criteria Criteria) (*domain.Tenant, error) {
	for _, strategy := range r.strategies {
		tenant, err := strategy.Attempt(ctx, criteria)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("resolution strategy failed",
					zap.String("strategy", strategy.Name()),
					zap.Error(err),
				)
			}
			continue
		}
		if tenant != nil {
			return tenant, nil
		}
	}
	return nil, apperrors.NewTenantNotFound(criteria.AssistantID, criteria.PhoneNumber, criteria.CallID)
}

type assistantIDStrategy struct {
	assistants repository.AssistantRepository
	tenants    repository.TenantRepository
}

func (s *assistantIDStrategy) Name() string { return "assistant_id" }

func (s *assistantIDStrategy) Attempt(ctx context.Context, criteria Criteria) (*domain.Tenant, error) {
	if criteria.AssistantID == "" {
		return nil, nil
	}
	assistant, err := s.assistants.GetActiveByPlatformID(ctx, criteria.AssistantID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.tenants.GetByID(ctx, assistant.TenantID)
}

type phoneNumberStrategy struct {
	assistants repository.AssistantRepository
	tenants    repository.TenantRepository
}

func (s *phoneNumberStrategy) Name() string { return "phone_number" }

func (s *phoneNumberStrategy) Attempt(ctx context.Context, criteria Criteria) (*domain.Tenant, error) {
	if criteria.PhoneNumber == "" {
		return nil, nil
	}
	assistant, err := s.assistants.GetActiveByPhoneNumber(ctx, criteria.PhoneNumber)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.tenants.GetByID(ctx, assistant.TenantID)
}

type priorCallStrategy struct {
	eventLog repository.EventLogRepository
	tenants  repository.TenantRepository
}

func (s *priorCallStrategy) Name() string { return "prior_call" }

func (s *priorCallStrategy) Attempt(ctx context.Context, criteria Criteria) (*domain.Tenant, error) {
	if criteria.CallID == "" {
		return nil, nil
	}
	tenantID, err := s.eventLog.TenantIDByCallID(ctx, criteria.CallID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.tenants.GetByID(ctx, tenantID)
}

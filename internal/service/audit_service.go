package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/call-triage-service/internal/auth"
	"github.com/spec-kit/call-triage-service/internal/config"
	"github.com/spec-kit/call-triage-service/internal/domain"
	"github.com/spec-kit/call-triage-service/internal/repository"
	apperrors "github.com/spec-kit/call-triage-service/pkg/util/errorutil"
)

// AuditDependencies bundles repositories for the audit API.
type AuditDependencies struct {
	Operators repository.OperatorRepository
	EventLog  repository.EventLogRepository
	Alerts    repository.AlertAttemptRepository
}

// AuditService authenticates operators and serves event-log reads.
type AuditService struct {
	operators repository.OperatorRepository
	eventLog  repository.EventLogRepository
	alerts    repository.AlertAttemptRepository
	tokens    *auth.TokenManager
}

// NewAuditService creates the service.
func NewAuditService(cfg config.AuthConfig, deps AuditDependencies) *AuditService {
	return &AuditService{
		operators: deps.Operators,
		eventLog:  deps.EventLog,
		alerts:    deps.Alerts,
		tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuditService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login verifies credentials and issues a bearer token.
func (s *AuditService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Operator, error) {
	operator, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(operator.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(operator.ID, operator.Role)
	if err != nil {
		return "", time.Time{}, nil, apperrors.NewInternalError(err)
	}
	return token, expiresAt, operator, nil
}

// ListEvents returns audit rows matching the filter.
func (s *AuditService) ListEvents(ctx context.Context, filter repository.EventLogFilter) ([]domain.EventLogEntry, error) {
	entries, err := s.eventLog.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// EventsForCall returns every log row recorded for one call.
func (s *AuditService) EventsForCall(ctx context.Context, callID string) ([]domain.EventLogEntry, error) {
	entries, err := s.eventLog.ListWithFilter(ctx, repository.EventLogFilter{CallID: &callID, Limit: 200})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// AlertsForTriage returns the delivery attempts recorded for one triage.
func (s *AuditService) AlertsForTriage(ctx context.Context, triageID string) ([]domain.AlertAttempt, error) {
	attempts, err := s.alerts.ListByTriageID(ctx, triageID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attempts, nil
}

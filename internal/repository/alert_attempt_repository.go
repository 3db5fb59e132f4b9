package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/call-triage-service/internal/domain"
)

// AlertAttemptRepository persists append-only delivery records.
type AlertAttemptRepository interface {
	Insert(ctx context.Context, attempt *domain.AlertAttempt) error
	ListByTriageID(ctx context.Context, triageID string) ([]domain.AlertAttempt, error)
}

type alertAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAlertAttemptRepository instantiates repository.
func NewAlertAttemptRepository(pool *pgxpool.Pool) AlertAttemptRepository {
	return &alertAttemptRepository{pool: pool}
}

func (r *alertAttemptRepository) Insert(ctx context.Context, attempt *domain.AlertAttempt) error {
	const query = `
        INSERT INTO alert_attempts (id, triage_id, tenant_id, target, recipient, channel, status, provider_message_id, error_detail)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		attempt.ID,
		attempt.TriageID,
		attempt.TenantID,
		attempt.Target,
		attempt.Recipient,
		attempt.Channel,
		attempt.Status,
		attempt.ProviderMessageID,
		attempt.ErrorDetail,
	).Scan(&attempt.CreatedAt)
}

func (r *alertAttemptRepository) ListByTriageID(ctx context.Context, triageID string) ([]domain.AlertAttempt, error) {
	const query = `
        SELECT id, triage_id, tenant_id, target, recipient, channel, status, provider_message_id, error_detail, created_at
        FROM alert_attempts WHERE triage_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, triageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlertAttempts(rows)
}

func scanAlertAttempts(rows pgx.Rows) ([]domain.AlertAttempt, error) {
	var result []domain.AlertAttempt
	for rows.Next() {
		var attempt domain.AlertAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.TriageID,
			&attempt.TenantID,
			&attempt.Target,
			&attempt.Recipient,
			&attempt.Channel,
			&attempt.Status,
			&attempt.ProviderMessageID,
			&attempt.ErrorDetail,
			&attempt.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attempt)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/call-triage-service/internal/domain"
)

// EventLogFilter captures audit search parameters.
type EventLogFilter struct {
	TenantID    *string
	CallID      *string
	EventType   *domain.EventType
	Outcome     *domain.EventOutcome
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// EventLogRepository persists the append-only audit trail and answers the
// prior-call-id resolution lookup.
type EventLogRepository interface {
	Insert(ctx context.Context, entry *domain.EventLogEntry) error
	TenantIDByCallID(ctx context.Context, callID string) (string, error)
	ListWithFilter(ctx context.Context, filter EventLogFilter) ([]domain.EventLogEntry, error)
}

type eventLogRepository struct {
	pool *pgxpool.Pool
}

// NewEventLogRepository instantiates repository.
func NewEventLogRepository(pool *pgxpool.Pool) EventLogRepository {
	return &eventLogRepository{pool: pool}
}

func (r *eventLogRepository) Insert(ctx context.Context, entry *domain.EventLogEntry) error {
	const query = `
        INSERT INTO event_log (id, tenant_id, call_id, event_type, outcome, rejection_code,
                               duplicate, triage_id, score, requires_immediate_attention, details)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING created_at`
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.CallID,
		entry.EventType,
		entry.Outcome,
		entry.RejectionCode,
		entry.Duplicate,
		entry.TriageID,
		entry.Score,
		entry.RequiresImmediateAttention,
		details,
	).Scan(&entry.CreatedAt)
}

// TenantIDByCallID finds the tenant a call was previously attributed to. Only
// processed rows count; rejected rows carry no attribution.
func (r *eventLogRepository) TenantIDByCallID(ctx context.Context, callID string) (string, error) {
	const query = `
        SELECT tenant_id FROM event_log
        WHERE call_id=$1 AND tenant_id IS NOT NULL AND outcome='processed'
        ORDER BY created_at DESC LIMIT 1`
	var tenantID string
	if err := r.pool.QueryRow(ctx, query, callID).Scan(&tenantID); err != nil {
		return "", err
	}
	return tenantID, nil
}

func (r *eventLogRepository) ListWithFilter(ctx context.Context, filter EventLogFilter) ([]domain.EventLogEntry, error) {
	base := `SELECT id, tenant_id, call_id, event_type, outcome, rejection_code, duplicate,
                    triage_id, score, requires_immediate_attention, details, created_at
             FROM event_log`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		clauses = append(clauses, fmt.Sprintf("tenant_id=$%d", len(args)))
	}
	if filter.CallID != nil {
		args = append(args, *filter.CallID)
		clauses = append(clauses, fmt.Sprintf("call_id=$%d", len(args)))
	}
	if filter.EventType != nil {
		args = append(args, *filter.EventType)
		clauses = append(clauses, fmt.Sprintf("event_type=$%d", len(args)))
	}
	if filter.Outcome != nil {
		args = append(args, *filter.Outcome)
		clauses = append(clauses, fmt.Sprintf("outcome=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEventLogEntries(rows)
}

func scanEventLogEntries(rows pgx.Rows) ([]domain.EventLogEntry, error) {
	var result []domain.EventLogEntry
	for rows.Next() {
		var entry domain.EventLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.CallID,
			&entry.EventType,
			&entry.Outcome,
			&entry.RejectionCode,
			&entry.Duplicate,
			&entry.TriageID,
			&entry.Score,
			&entry.RequiresImmediateAttention,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

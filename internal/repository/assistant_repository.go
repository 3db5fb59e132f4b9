package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/call-triage-service/internal/domain"
)

// AssistantRepository encapsulates assistant lookups used by tenant
// resolution. Both lookups consider active assistants only.
type AssistantRepository interface {
	GetActiveByPlatformID(ctx context.Context, platformAssistantID string) (*domain.Assistant, error)
	GetActiveByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Assistant, error)
}

type assistantRepository struct {
	pool *pgxpool.Pool
}

// NewAssistantRepository instantiates repository.
func NewAssistantRepository(pool *pgxpool.Pool) AssistantRepository {
	return &assistantRepository{pool: pool}
}

const assistantColumns = `id, tenant_id, platform_assistant_id, phone_number, active, created_at, updated_at`

func (r *assistantRepository) GetActiveByPlatformID(ctx context.Context, platformAssistantID string) (*domain.Assistant, error) {
	const query = `
        SELECT ` + assistantColumns + `
        FROM assistants WHERE platform_assistant_id=$1 AND active=TRUE`
	return r.fetchSingle(ctx, query, platformAssistantID)
}

func (r *assistantRepository) GetActiveByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Assistant, error) {
	const query = `
        SELECT ` + assistantColumns + `
        FROM assistants WHERE phone_number=$1 AND active=TRUE`
	return r.fetchSingle(ctx, query, phoneNumber)
}

func (r *assistantRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Assistant, error) {
	var assistant domain.Assistant
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&assistant.ID,
		&assistant.TenantID,
		&assistant.PlatformAssistantID,
		&assistant.PhoneNumber,
		&assistant.Active,
		&assistant.CreatedAt,
		&assistant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &assistant, nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/call-triage-service/internal/domain"
)

// TenantRepository encapsulates tenant persistence.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository instantiates repository.
func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	const query = `
        SELECT id, name, industry, primary_language, supported_languages, urgency_threshold,
               technician_phones, customer_confirmation, service_window_start, service_window_end,
               timezone, active, created_at, updated_at
        FROM tenants WHERE id=$1`
	var tenant domain.Tenant
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Industry,
		&tenant.PrimaryLanguage,
		&tenant.SupportedLanguages,
		&tenant.UrgencyThreshold,
		&tenant.TechnicianPhones,
		&tenant.CustomerConfirmation,
		&tenant.ServiceWindowStart,
		&tenant.ServiceWindowEnd,
		&tenant.Timezone,
		&tenant.Active,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tenant, nil
}

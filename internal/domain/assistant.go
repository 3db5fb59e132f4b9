package domain

import "time"

// Assistant is a platform-provisioned voice assistant bound to one tenant.
// Inactive assistants are excluded from tenant resolution so deactivation
// stops routing immediately.
type Assistant struct {
	ID                  string
	TenantID            string
	PlatformAssistantID string
	PhoneNumber         *string
	Active              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

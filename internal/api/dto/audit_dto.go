package dto

import "time"

// LoginRequest carries operator credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// EventLogEntryResponse is one audit row.
type EventLogEntryResponse struct {
	ID                         string         `json:"id"`
	TenantID                   *string        `json:"tenant_id,omitempty"`
	CallID                     string         `json:"call_id"`
	EventType                  string         `json:"event_type"`
	Outcome                    string         `json:"outcome"`
	RejectionCode              string         `json:"rejection_code,omitempty"`
	Duplicate                  bool           `json:"duplicate"`
	TriageID                   *string        `json:"triage_id,omitempty"`
	Score                      *float64       `json:"score,omitempty"`
	RequiresImmediateAttention *bool          `json:"requires_immediate_attention,omitempty"`
	Details                    map[string]any `json:"details,omitempty"`
	CreatedAt                  time.Time      `json:"created_at"`
}

// AlertAttemptResponse is one delivery record.
type AlertAttemptResponse struct {
	ID                string    `json:"id"`
	TriageID          string    `json:"triage_id"`
	TenantID          string    `json:"tenant_id"`
	Target            string    `json:"target"`
	Recipient         string    `json:"recipient"`
	Channel           string    `json:"channel"`
	Status            string    `json:"status"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	ErrorDetail       string    `json:"error_detail,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

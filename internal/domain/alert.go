package domain

import "time"

// AlertTarget distinguishes who an alert was addressed to.
type AlertTarget string

const (
	AlertTargetTechnician AlertTarget = "technician"
	AlertTargetCustomer   AlertTarget = "customer"
)

// AlertStatus is the delivery outcome of a single attempt.
type AlertStatus string

const (
	AlertStatusSent    AlertStatus = "sent"
	AlertStatusFailed  AlertStatus = "failed"
	AlertStatusSkipped AlertStatus = "skipped"
)

// AlertAttempt is one append-only delivery record. Failures are recorded
// here, never retried by the fan-out itself.
type AlertAttempt struct {
	ID                string
	TriageID          string
	TenantID          string
	Target            AlertTarget
	Recipient         string
	Channel           string
	Status            AlertStatus
	ProviderMessageID string
	ErrorDetail       string
	CreatedAt         time.Time
}

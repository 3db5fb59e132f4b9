package domain

import "time"

// EventOutcome is the terminal state recorded for a processed delivery.
type EventOutcome string

const (
	OutcomeProcessed EventOutcome = "processed"
	OutcomeRejected  EventOutcome = "rejected"
)

// EventLogEntry is the durable audit record written for every handled
// delivery, rejections included. Rows are append-only; a redelivered event
// gets its own row with Duplicate set.
type EventLogEntry struct {
	ID                         string
	TenantID                   *string
	CallID                     string
	EventType                  EventType
	Outcome                    EventOutcome
	RejectionCode              string
	Duplicate                  bool
	TriageID                   *string
	Score                      *float64
	RequiresImmediateAttention *bool
	Details                    map[string]any
	CreatedAt                  time.Time
}

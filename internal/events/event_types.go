package events

import (
	"time"

	"github.com/spec-kit/call-triage-service/internal/domain"
)

// EventType enumerates supported analytics event identifiers.
type EventType string

const (
	EventCallStarted      EventType = "call_started"
	EventCallEnded        EventType = "call_ended"
	EventStatusUpdate     EventType = "status_update"
	EventTriageCompleted  EventType = "triage_completed"
	EventAlertsDispatched EventType = "alerts_dispatched"
	EventEventRejected    EventType = "event_rejected"
)

// Event represents a pipeline event published to the analytics sink.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  string      `json:"tenant_id"`
	CallID    string      `json:"call_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CallLifecyclePayload payload.
type CallLifecyclePayload struct {
	EventType domain.EventType `json:"event_type"`
	Duplicate bool             `json:"duplicate"`
}

// TriageCompletedPayload payload.
type TriageCompletedPayload struct {
	TriageID                   string  `json:"triage_id"`
	Score                      float64 `json:"score"`
	Language                   string  `json:"language"`
	MatchCount                 int     `json:"match_count"`
	RequiresImmediateAttention bool    `json:"requires_immediate_attention"`
}

// AlertsDispatchedPayload payload.
type AlertsDispatchedPayload struct {
	TriageID string `json:"triage_id"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
}

// EventRejectedPayload payload.
type EventRejectedPayload struct {
	Code        string `json:"code"`
	AssistantID string `json:"assistant_id,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

package domain

import "time"

// EventType enumerates the call-platform event kinds this service handles.
type EventType string

const (
	EventCallStarted    EventType = "call-started"
	EventCallEnded      EventType = "call-ended"
	EventStatusUpdate   EventType = "status-update"
	EventToolCalls      EventType = "tool-calls"
	EventEmergencyCheck EventType = "emergency-check"
)

// IsLifecycle reports whether the event only tracks call state.
func (t EventType) IsLifecycle() bool {
	switch t {
	case EventCallStarted, EventCallEnded, EventStatusUpdate:
		return true
	}
	return false
}

// ToolCall is one tool invocation requested by the platform. The ID must be
// echoed back in the acknowledgment's results envelope.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// TranscriptTurn is one utterance of the recorded conversation.
type TranscriptTurn struct {
	Role string
	Text string
}

// InboundEvent is the normalized envelope for one webhook delivery. It is
// request-scoped and never persisted verbatim.
type InboundEvent struct {
	Type          EventType
	CallID        string
	AssistantID   string
	PhoneNumber   string
	CustomerName  string
	CustomerPhone string
	LanguageHint  string
	Transcript    []TranscriptTurn
	ToolCalls     []ToolCall
	ArrivedAt     time.Time
	Raw           []byte
}

// CallContext bundles the facts the classifier needs about one call. Derived
// from the inbound event plus the resolved tenant.
type CallContext struct {
	TenantID        string
	CallID          string
	CustomerName    string
	CustomerPhone   string
	Industry        string
	PrimaryLanguage string
	Languages       []string
	LanguageHint    string
	Threshold       float64
	Transcript      []TranscriptTurn
}

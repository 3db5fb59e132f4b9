package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spec-kit/call-triage-service/internal/domain"
	apperrors "github.com/spec-kit/call-triage-service/pkg/util/errorutil"
)

// The platform nests most fields under "message" but older deliveries put
// them at the top level; both shapes are accepted, message taking priority.
type webhookPayload struct {
	Type        string          `json:"type"`
	Message     *messagePayload `json:"message"`
	Call        *callPayload    `json:"call"`
	PhoneNumber json.RawMessage `json:"phoneNumber"`
	Assistant   *assistantRef   `json:"assistant"`
}

type messagePayload struct {
	Type         string          `json:"type"`
	Call         *callPayload    `json:"call"`
	PhoneNumber  json.RawMessage `json:"phoneNumber"`
	Assistant    *assistantRef   `json:"assistant"`
	Customer     *customerRef    `json:"customer"`
	Transcript   string          `json:"transcript"`
	Artifact     *artifactRef    `json:"artifact"`
	ToolCallList []toolCallRef   `json:"toolCallList"`
	ToolCalls    []toolCallRef   `json:"toolCalls"`
}

type callPayload struct {
	ID       string `json:"id"`
	Language string `json:"language"`
}

type assistantRef struct {
	ID string `json:"id"`
}

type customerRef struct {
	Name     string `json:"name"`
	Number   string `json:"number"`
	Language string `json:"language"`
}

type artifactRef struct {
	Messages []artifactMessage `json:"messages"`
}

type artifactMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	Content string `json:"content"`
}

type toolCallRef struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Function  *toolFunction   `json:"function"`
}

type toolFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ParseInboundEvent normalizes a raw webhook body into an InboundEvent.
// A missing event type is a validation rejection; the partially parsed
// event is returned alongside the error so callers can still log the call
// identifiers.
func ParseInboundEvent(raw []byte, arrivedAt time.Time) (*domain.InboundEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.NewValidationError("malformed payload", map[string]any{"cause": err.Error()})
	}

	msg := payload.Message
	eventType := payload.Type
	if msg != nil && msg.Type != "" {
		eventType = msg.Type
	}

	event := &domain.InboundEvent{
		Type:      domain.EventType(eventType),
		ArrivedAt: arrivedAt,
		Raw:       raw,
	}

	call := payload.Call
	if msg != nil && msg.Call != nil {
		call = msg.Call
	}
	if call != nil {
		event.CallID = call.ID
		event.LanguageHint = call.Language
	}

	assistant := payload.Assistant
	if msg != nil && msg.Assistant != nil {
		assistant = msg.Assistant
	}
	if assistant != nil {
		event.AssistantID = assistant.ID
	}

	phoneRaw := payload.PhoneNumber
	if msg != nil && len(msg.PhoneNumber) > 0 {
		phoneRaw = msg.PhoneNumber
	}
	event.PhoneNumber = parsePhoneNumber(phoneRaw)

	if msg != nil {
		if msg.Customer != nil {
			event.CustomerName = msg.Customer.Name
			// the caller's own number, distinct from the assistant's bound
			// number used for resolution
			event.CustomerPhone = msg.Customer.Number
			if msg.Customer.Language != "" && event.LanguageHint == "" {
				event.LanguageHint = msg.Customer.Language
			}
		}
		event.Transcript = parseTranscript(msg)
		event.ToolCalls = parseToolCalls(msg)
	}

	if strings.TrimSpace(eventType) == "" {
		return event, apperrors.NewValidationError("missing event type", nil)
	}
	return event, nil
}

// parsePhoneNumber accepts both `"phoneNumber": "+15550100"` and
// `"phoneNumber": {"number": "+15550100"}`.
func parsePhoneNumber(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asObject struct {
		Number string `json:"number"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return asObject.Number
	}
	return ""
}

func parseTranscript(msg *messagePayload) []domain.TranscriptTurn {
	if msg.Artifact != nil && len(msg.Artifact.Messages) > 0 {
		var turns []domain.TranscriptTurn
		for _, m := range msg.Artifact.Messages {
			text := m.Message
			if text == "" {
				text = m.Content
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			turns = append(turns, domain.TranscriptTurn{Role: m.Role, Text: text})
		}
		return turns
	}
	if strings.TrimSpace(msg.Transcript) != "" {
		var turns []domain.TranscriptTurn
		for _, line := range strings.Split(msg.Transcript, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			turns = append(turns, domain.TranscriptTurn{Role: "user", Text: line})
		}
		return turns
	}
	return nil
}

func parseToolCalls(msg *messagePayload) []domain.ToolCall {
	refs := msg.ToolCallList
	if len(refs) == 0 {
		refs = msg.ToolCalls
	}
	var calls []domain.ToolCall
	for _, ref := range refs {
		call := domain.ToolCall{ID: ref.ID, Name: ref.Name}
		argsRaw := ref.Arguments
		if ref.Function != nil {
			if ref.Function.Name != "" {
				call.Name = ref.Function.Name
			}
			if len(ref.Function.Arguments) > 0 {
				argsRaw = ref.Function.Arguments
			}
		}
		call.Arguments = parseToolArguments(argsRaw)
		calls = append(calls, call)
	}
	return calls
}

// parseToolArguments accepts either a JSON object or a JSON-encoded string
// containing one.
func parseToolArguments(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		return asMap
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if err := json.Unmarshal([]byte(asString), &asMap); err == nil {
			return asMap
		}
	}
	return nil
}

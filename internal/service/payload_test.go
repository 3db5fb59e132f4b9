package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/call-triage-service/internal/domain"
	apperrors "github.com/spec-kit/call-triage-service/pkg/util/errorutil"
)

func TestParseInboundEventNestedMessage(t *testing.T) {
	raw := []byte(`{
		"message": {
			"type": "emergency-check",
			"call": {"id": "call-1", "language": "en"},
			"assistant": {"id": "asst-1"},
			"phoneNumber": {"number": "+15550100"},
			"customer": {"name": "Dana", "number": "+15559999"},
			"artifact": {"messages": [
				{"role": "user", "message": "no heat in the house"},
				{"role": "assistant", "message": "I understand"}
			]}
		}
	}`)

	event, err := ParseInboundEvent(raw, time.Now())
	require.NoError(t, err)

	assert.Equal(t, domain.EventEmergencyCheck, event.Type)
	assert.Equal(t, "call-1", event.CallID)
	assert.Equal(t, "asst-1", event.AssistantID)
	assert.Equal(t, "+15550100", event.PhoneNumber)
	assert.Equal(t, "Dana", event.CustomerName)
	assert.Equal(t, "+15559999", event.CustomerPhone)
	assert.Equal(t, "en", event.LanguageHint)
	require.Len(t, event.Transcript, 2)
	assert.Equal(t, "no heat in the house", event.Transcript[0].Text)
}

func TestParseInboundEventTopLevelFallback(t *testing.T) {
	raw := []byte(`{
		"type": "call-started",
		"call": {"id": "call-2"},
		"assistant": {"id": "asst-2"},
		"phoneNumber": "+15550200"
	}`)

	event, err := ParseInboundEvent(raw, time.Now())
	require.NoError(t, err)

	assert.Equal(t, domain.EventCallStarted, event.Type)
	assert.Equal(t, "call-2", event.CallID)
	assert.Equal(t, "asst-2", event.AssistantID)
	assert.Equal(t, "+15550200", event.PhoneNumber)
}

func TestParseInboundEventMessageTypeWins(t *testing.T) {
	raw := []byte(`{
		"type": "status-update",
		"message": {"type": "call-ended", "call": {"id": "call-3"}}
	}`)

	event, err := ParseInboundEvent(raw, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.EventCallEnded, event.Type)
}

func TestParseInboundEventMissingType(t *testing.T) {
	_, err := ParseInboundEvent([]byte(`{"message": {"call": {"id": "x"}}}`), time.Now())
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestParseInboundEventMalformedBody(t *testing.T) {
	_, err := ParseInboundEvent([]byte(`{not json`), time.Now())
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestParseToolCallsFlatShape(t *testing.T) {
	raw := []byte(`{
		"message": {
			"type": "tool-calls",
			"call": {"id": "call-4"},
			"toolCallList": [
				{"id": "tc-1", "name": "check_emergency", "arguments": {"description": "burst pipe"}}
			]
		}
	}`)

	event, err := ParseInboundEvent(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, event.ToolCalls, 1)
	assert.Equal(t, "tc-1", event.ToolCalls[0].ID)
	assert.Equal(t, "check_emergency", event.ToolCalls[0].Name)
	assert.Equal(t, "burst pipe", event.ToolCalls[0].Arguments["description"])
}

func TestParseToolCallsFunctionShape(t *testing.T) {
	raw := []byte(`{
		"message": {
			"type": "tool-calls",
			"toolCalls": [
				{"id": "tc-2", "function": {"name": "checkAvailability", "arguments": "{\"day\":\"tomorrow\"}"}}
			]
		}
	}`)

	event, err := ParseInboundEvent(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, event.ToolCalls, 1)
	assert.Equal(t, "checkAvailability", event.ToolCalls[0].Name)
	assert.Equal(t, "tomorrow", event.ToolCalls[0].Arguments["day"])
}

func TestParsePlainTranscriptSplitsTurns(t *testing.T) {
	raw := []byte(`{
		"message": {
			"type": "emergency-check",
			"transcript": "no heat\nstill no heat"
		}
	}`)

	event, err := ParseInboundEvent(raw, time.Now())
	require.NoError(t, err)
	require.Len(t, event.Transcript, 2)
}

package ai

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedwise/server/assistant"
	"github.com/hrygo/schedwise/server/conversation"
)

type fakeChatter struct {
	reply string
	err   error

	lastSystem   string
	lastMessages []openai.ChatCompletionMessage
}

func (f *fakeChatter) Chat(_ context.Context, system string, messages []openai.ChatCompletionMessage) (string, error) {
	f.lastSystem = system
	f.lastMessages = messages
	return f.reply, f.err
}

func TestInterpret_CreateEvent(t *testing.T) {
	chat := &fakeChatter{reply: `{
		"action": "create_event",
		"event_data": {
			"title": "Standup",
			"start_time": "2025-07-02 09:00",
			"end_time": "2025-07-02 09:15",
			"location": "Room 4",
			"priority": "HIGH"
		}
	}`}
	i := &Interpreter{provider: chat}

	intent, err := i.Interpret(context.Background(), "standup tomorrow at 9", "Today: 0 event(s).", nil)
	require.NoError(t, err)

	assert.Equal(t, assistant.ActionCreateEvent, intent.Action)
	require.NotNil(t, intent.Event)
	assert.Equal(t, "Standup", intent.Event.Title)
	assert.Equal(t, "2025-07-02 09:00", intent.Event.StartTime)
	assert.Equal(t, "2025-07-02 09:15", intent.Event.EndTime)
	assert.Equal(t, "Room 4", intent.Event.Location)
	assert.Equal(t, "HIGH", intent.Event.Priority)
	assert.Contains(t, chat.lastSystem, "Today: 0 event(s).")
}

func TestInterpret_CodeFencedReply(t *testing.T) {
	chat := &fakeChatter{reply: "```json\n{\"action\": \"list_events\", \"range_start\": \"2025-07-01\", \"range_end\": \"2025-07-08\"}\n```"}
	i := &Interpreter{provider: chat}

	intent, err := i.Interpret(context.Background(), "what's on this week?", "", nil)
	require.NoError(t, err)

	assert.Equal(t, assistant.ActionListEvents, intent.Action)
	assert.Equal(t, "2025-07-01", intent.RangeStart)
	assert.Equal(t, "2025-07-08", intent.RangeEnd)
}

func TestInterpret_MissingData(t *testing.T) {
	chat := &fakeChatter{reply: `{
		"action": "create_event",
		"event_data": {"title": "Standup", "start_time": "2025-07-02 09:00"},
		"missing_data": ["end_time"]
	}`}
	i := &Interpreter{provider: chat}

	intent, err := i.Interpret(context.Background(), "standup tomorrow at 9", "", nil)
	require.NoError(t, err)

	assert.Equal(t, []assistant.MissingField{assistant.MissingEndTime}, intent.Missing)
}

func TestInterpret_NonJSONFallsBackToGeneralResponse(t *testing.T) {
	chat := &fakeChatter{reply: "Sure! What time works for you?"}
	i := &Interpreter{provider: chat}

	intent, err := i.Interpret(context.Background(), "hello", "", nil)
	require.NoError(t, err)

	assert.Equal(t, assistant.ActionGeneralResponse, intent.Action)
	assert.Equal(t, "Sure! What time works for you?", intent.ResponseText)
}

func TestInterpret_UnknownActionFallsBack(t *testing.T) {
	chat := &fakeChatter{reply: `{"action": "reschedule_event", "response_text": "I can't do that yet."}`}
	i := &Interpreter{provider: chat}

	intent, err := i.Interpret(context.Background(), "move my standup", "", nil)
	require.NoError(t, err)

	assert.Equal(t, assistant.ActionGeneralResponse, intent.Action)
	assert.Equal(t, "I can't do that yet.", intent.ResponseText)
}

func TestInterpret_RecentTurnsBecomeMessages(t *testing.T) {
	chat := &fakeChatter{reply: `{"action": "general_response", "response_text": "ok"}`}
	i := &Interpreter{provider: chat}

	recent := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "schedule standup tomorrow at 9"},
		{Role: conversation.RoleAssistant, Content: "Could you tell me when the event ends?"},
		{Role: conversation.RoleUser, Content: "it ends at 9:15"},
	}
	_, err := i.Interpret(context.Background(), "it ends at 9:15", "", recent)
	require.NoError(t, err)

	require.Len(t, chat.lastMessages, 3)
	assert.Equal(t, openai.ChatMessageRoleUser, chat.lastMessages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, chat.lastMessages[1].Role)
	assert.Equal(t, "it ends at 9:15", chat.lastMessages[2].Content)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced bare", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.input))
		})
	}
}

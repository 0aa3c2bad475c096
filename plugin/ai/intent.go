package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hrygo/schedwise/server/assistant"
	"github.com/hrygo/schedwise/server/conversation"
)

const systemPromptTemplate = `You are a scheduling assistant. Interpret the user's message and respond with a single JSON object, no prose, no code fences.

Schema:
{
  "action": "create_event" | "list_events" | "search_events" | "delete_event" | "get_event_details" | "general_response",
  "event_data": {
    "title": "...",
    "description": "...",
    "location": "...",
    "start_time": "YYYY-MM-DD HH:MM",
    "end_time": "YYYY-MM-DD HH:MM",
    "attendees": ["..."],
    "priority": "LOW" | "MEDIUM" | "HIGH" | "URGENT"
  },
  "query": "match text for search/delete/details",
  "range_start": "YYYY-MM-DD HH:MM",
  "range_end": "YYYY-MM-DD HH:MM",
  "missing_data": ["title" | "start_time" | "end_time"],
  "response_text": "your conversational reply for general_response"
}

Rules:
- Omit fields that do not apply to the action.
- Resolve relative dates (today, tomorrow, next Monday) into concrete dates using the calendar context below.
- For create_event, list any required field the user has not given in missing_data instead of inventing it.
- Never invent event titles or times.

Calendar context: %s`

// chatter is the provider surface the interpreter needs. Satisfied by
// *Provider and by test fakes.
type chatter interface {
	Chat(ctx context.Context, system string, messages []openai.ChatCompletionMessage) (string, error)
}

// Interpreter turns raw user messages into structured intents via the
// LLM provider. It implements assistant.IntentSource.
type Interpreter struct {
	provider chatter
	logger   *slog.Logger
}

// NewInterpreter creates an interpreter over the given provider.
func NewInterpreter(provider *Provider, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{provider: provider, logger: logger}
}

// rawIntent mirrors the JSON contract in the system prompt.
type rawIntent struct {
	Action       string        `json:"action"`
	EventData    *rawEventData `json:"event_data,omitempty"`
	Query        string        `json:"query,omitempty"`
	RangeStart   string        `json:"range_start,omitempty"`
	RangeEnd     string        `json:"range_end,omitempty"`
	MissingData  []string      `json:"missing_data,omitempty"`
	ResponseText string        `json:"response_text,omitempty"`
}

type rawEventData struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	StartTime   string   `json:"start_time,omitempty"`
	EndTime     string   `json:"end_time,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}

// Interpret implements assistant.IntentSource.
func (i *Interpreter) Interpret(ctx context.Context, userText string, contextInfo string, recent []conversation.Turn) (*assistant.Intent, error) {
	system := strings.Replace(systemPromptTemplate, "%s", contextInfo, 1)

	messages := make([]openai.ChatCompletionMessage, 0, len(recent)+1)
	for _, turn := range recent {
		role := openai.ChatMessageRoleUser
		if turn.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	// The latest user turn is usually already in recent; only append
	// when the history window missed it.
	if len(messages) == 0 || messages[len(messages)-1].Content != userText {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userText})
	}

	content, err := i.provider.Chat(ctx, system, messages)
	if err != nil {
		return nil, err
	}
	return i.parse(content), nil
}

// parse decodes the model's JSON reply. Replies that are not valid
// JSON degrade to a general response carrying the raw text, so a
// chatty model never breaks the turn.
func (i *Interpreter) parse(content string) *assistant.Intent {
	cleaned := stripCodeFence(content)

	logger := i.logger
	if logger == nil {
		logger = slog.Default()
	}

	var raw rawIntent
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		logger.Debug("intent reply was not valid JSON, treating as general response", slog.Any("err", err))
		return &assistant.Intent{
			Action:       assistant.ActionGeneralResponse,
			ResponseText: strings.TrimSpace(content),
		}
	}

	intent := &assistant.Intent{
		Action:       assistant.Action(strings.TrimSpace(strings.ToLower(raw.Action))),
		Query:        strings.TrimSpace(raw.Query),
		RangeStart:   strings.TrimSpace(raw.RangeStart),
		RangeEnd:     strings.TrimSpace(raw.RangeEnd),
		ResponseText: strings.TrimSpace(raw.ResponseText),
	}
	switch intent.Action {
	case assistant.ActionCreateEvent, assistant.ActionListEvents, assistant.ActionSearchEvents,
		assistant.ActionDeleteEvent, assistant.ActionGetEventDetails, assistant.ActionGeneralResponse:
	default:
		intent.Action = assistant.ActionGeneralResponse
		if intent.ResponseText == "" {
			intent.ResponseText = strings.TrimSpace(content)
		}
	}

	if raw.EventData != nil {
		intent.Event = &assistant.PartialEvent{
			Title:       strings.TrimSpace(raw.EventData.Title),
			Description: strings.TrimSpace(raw.EventData.Description),
			Location:    strings.TrimSpace(raw.EventData.Location),
			StartTime:   strings.TrimSpace(raw.EventData.StartTime),
			EndTime:     strings.TrimSpace(raw.EventData.EndTime),
			Attendees:   raw.EventData.Attendees,
			Priority:    strings.TrimSpace(raw.EventData.Priority),
		}
	}
	for _, m := range raw.MissingData {
		switch strings.TrimSpace(strings.ToLower(m)) {
		case "title":
			intent.Missing = append(intent.Missing, assistant.MissingTitle)
		case "start_time":
			intent.Missing = append(intent.Missing, assistant.MissingStartTime)
		case "end_time":
			intent.Missing = append(intent.Missing, assistant.MissingEndTime)
		}
	}
	return intent
}

// stripCodeFence removes a surrounding markdown code fence, which
// models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/schedwise/internal/observability"
	"github.com/hrygo/schedwise/server/conversation"
	"github.com/hrygo/schedwise/server/internal/errors"
	"github.com/hrygo/schedwise/server/timezone"
	"github.com/hrygo/schedwise/store"
)

// recentTurnWindow is how many turns the intent source sees.
const recentTurnWindow = 10

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	// Zone interprets zone-naive datetimes and day boundaries.
	Zone *time.Location
	// Session names the conversation to persist turns under. Ignored
	// when Store is nil.
	Session string
	// Store persists conversation turns across runs. Nil keeps the
	// conversation in memory only.
	Store          *store.Store
	BackendTimeout time.Duration
	Logger         *slog.Logger
	Verbose        bool
}

// Scheduler runs the full turn cycle: interpret the user message,
// execute the resulting intent, and append exactly one assistant turn.
type Scheduler struct {
	source     IntentSource
	dispatcher *Dispatcher
	history    *conversation.History
	store      *store.Store
	session    string
	zone       *time.Location
	logger     *slog.Logger

	now func() time.Time
}

// NewScheduler wires an intent source and a calendar backend together.
func NewScheduler(source IntentSource, backend CalendarBackend, config SchedulerConfig) *Scheduler {
	zone := config.Zone
	if zone == nil {
		zone = time.UTC
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		source: source,
		dispatcher: NewDispatcher(backend, DispatcherConfig{
			Zone:           zone,
			BackendTimeout: config.BackendTimeout,
			Logger:         logger,
			Verbose:        config.Verbose,
		}),
		history: conversation.New(),
		store:   config.Store,
		session: config.Session,
		zone:    zone,
		logger:  logger,
		now:     time.Now,
	}
}

// History exposes the in-memory conversation.
func (s *Scheduler) History() *conversation.History {
	return s.history
}

// LoadHistory restores the persisted conversation for the configured
// session. No-op without a store.
func (s *Scheduler) LoadHistory(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	persisted, err := s.store.ListConversationTurns(ctx, &store.FindConversationTurn{SessionID: s.session})
	if err != nil {
		return err
	}
	turns := make([]conversation.Turn, 0, len(persisted))
	for _, p := range persisted {
		turns = append(turns, conversation.Turn{
			ID:             p.ID,
			Role:           conversation.Role(p.Role),
			Content:        p.Content,
			RelatedEventID: p.RelatedEventID,
			Timestamp:      time.Unix(p.CreatedTs, 0).UTC(),
		})
	}
	s.history.Restore(turns)
	return nil
}

// ClearHistory discards the conversation, both in memory and in the
// configured store.
func (s *Scheduler) ClearHistory(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.DeleteConversationTurns(ctx, &store.DeleteConversationTurns{SessionID: s.session}); err != nil {
			return err
		}
	}
	s.history.Clear()
	return nil
}

// HandleTurn processes one user message and returns the dispatch
// result. The assistant reply has already been appended to the
// conversation when this returns.
func (s *Scheduler) HandleTurn(ctx context.Context, userText string) *Result {
	tc := observability.NewTurnContext(s.logger)

	userTurn := s.history.AddUser(userText)
	s.persistTurn(ctx, userTurn)

	intent, err := s.source.Interpret(ctx, userText, s.contextInfo(ctx), s.history.Recent(recentTurnWindow))
	var result *Result
	if err != nil {
		code := errors.GetCodeFromError(err, errors.ErrCodeBackend)
		result = &Result{
			State:     StateFailed,
			Action:    ActionGeneralResponse,
			Reply:     "Sorry, I'm having trouble understanding right now. Please try again.",
			ErrorCode: code,
		}
		tc.Failed("interpret", string(code), err)
	} else {
		result = s.dispatcher.Dispatch(ctx, intent)
		if result.State == StateFailed {
			tc.Failed(string(result.Action), string(result.ErrorCode), nil)
		} else {
			tc.Completed(string(result.Action))
		}
	}

	assistantTurn := s.history.AddAssistant(result.Reply, result.EventID)
	s.persistTurn(ctx, assistantTurn)
	result.State = StateTurnAppended
	return result
}

// contextInfo summarizes the calendar around now so the intent source
// can ground relative references. Backend failures here degrade to an
// empty summary rather than failing the turn.
func (s *Scheduler) contextInfo(ctx context.Context) string {
	today := s.countEventsOn(ctx, s.now())
	tomorrow := s.countEventsOn(ctx, s.now().AddDate(0, 0, 1))
	if today < 0 || tomorrow < 0 {
		return ""
	}
	return fmt.Sprintf("Current time: %s. Today: %d event(s). Tomorrow: %d event(s).",
		s.now().In(s.zone).Format("2006-01-02 15:04 Mon"), today, tomorrow)
}

func (s *Scheduler) countEventsOn(ctx context.Context, day time.Time) int {
	startOfDay := timezone.StartOfDay(day.In(s.zone), s.zone)
	endOfDay := timezone.EndOfDay(day.In(s.zone), s.zone)
	events, err := s.dispatcher.list(ctx, &store.FindEvent{
		RangeStart: int64Ptr(startOfDay.Unix()),
		RangeEnd:   int64Ptr(endOfDay.Unix()),
	})
	if err != nil {
		return -1
	}
	return len(events)
}

func (s *Scheduler) persistTurn(ctx context.Context, turn conversation.Turn) {
	if s.store == nil {
		return
	}
	if _, err := s.store.CreateConversationTurn(ctx, &store.ConversationTurn{
		ID:             turn.ID,
		SessionID:      s.session,
		Role:           store.TurnRole(turn.Role),
		Content:        turn.Content,
		RelatedEventID: turn.RelatedEventID,
		CreatedTs:      turn.Timestamp.Unix(),
	}); err != nil {
		s.logger.Warn("failed to persist conversation turn", slog.Any("err", err))
	}
}

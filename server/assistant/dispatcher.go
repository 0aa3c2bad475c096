package assistant

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hrygo/schedwise/server/internal/errors"
	"github.com/hrygo/schedwise/server/planner"
	"github.com/hrygo/schedwise/server/timeparse"
	"github.com/hrygo/schedwise/server/timezone"
	"github.com/hrygo/schedwise/store"
)

// State tracks where a turn is in its processing cycle.
type State string

const (
	StateReceived       State = "RECEIVED"
	StateNeedsInfo      State = "NEEDS_INFO"
	StateReadyToExecute State = "READY_TO_EXECUTE"
	StateExecuted       State = "EXECUTED"
	StateFailed         State = "FAILED"
	StateTurnAppended   State = "TURN_APPENDED"
)

// Result is the outcome of dispatching one intent. Reply is always set;
// every cycle ends with exactly one assistant turn.
type Result struct {
	State     State
	Action    Action
	Reply     string
	ErrorCode errors.ErrorCode

	// EventID is the created event's ID on a successful create.
	EventID string
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Zone interprets zone-naive datetimes. Nil means UTC.
	Zone *time.Location
	// BackendTimeout bounds each calendar backend call. Zero disables
	// the per-call deadline.
	BackendTimeout time.Duration
	Logger         *slog.Logger
	Verbose        bool
}

// Dispatcher executes interpreted intents against a calendar backend.
type Dispatcher struct {
	backend        CalendarBackend
	resolver       *timeparse.Resolver
	zone           *time.Location
	backendTimeout time.Duration
	logger         *slog.Logger
	verbose        bool

	// now is injectable for tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher over the given backend.
func NewDispatcher(backend CalendarBackend, config DispatcherConfig) *Dispatcher {
	zone := config.Zone
	if zone == nil {
		zone = time.UTC
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		backend:        backend,
		resolver:       timeparse.NewResolver(zone),
		zone:           zone,
		backendTimeout: config.BackendTimeout,
		logger:         logger,
		verbose:        config.Verbose,
		now:            time.Now,
	}
}

// Dispatch runs one intent to completion. It never returns an error;
// failures are folded into the Result so the caller always has a reply
// to append.
func (d *Dispatcher) Dispatch(ctx context.Context, intent *Intent) *Result {
	if intent == nil {
		return &Result{
			State:     StateFailed,
			Action:    ActionGeneralResponse,
			Reply:     "Sorry, I didn't understand that. Could you rephrase?",
			ErrorCode: errors.ErrCodeInvalidArgument,
		}
	}

	var result *Result
	switch intent.Action {
	case ActionCreateEvent:
		result = d.createEvent(ctx, intent)
	case ActionListEvents:
		result = d.listEvents(ctx, intent)
	case ActionSearchEvents:
		result = d.searchEvents(ctx, intent)
	case ActionDeleteEvent:
		result = d.deleteEvent(ctx, intent)
	case ActionGetEventDetails:
		result = d.getEventDetails(ctx, intent)
	case ActionGeneralResponse:
		result = d.generalResponse(intent)
	default:
		result = &Result{
			State:     StateFailed,
			Action:    intent.Action,
			Reply:     "Sorry, I can't do that yet.",
			ErrorCode: errors.ErrCodeInvalidArgument,
		}
	}

	if d.verbose {
		d.logger.Debug("dispatched intent",
			slog.String("action", string(result.Action)),
			slog.String("state", string(result.State)),
			slog.String("error_code", string(result.ErrorCode)))
	}
	return result
}

func (d *Dispatcher) createEvent(ctx context.Context, intent *Intent) *Result {
	missing := missingFields(intent)
	if len(missing) > 0 {
		return &Result{
			State:  StateNeedsInfo,
			Action: ActionCreateEvent,
			Reply:  clarificationFor(missing),
		}
	}

	start, err := d.resolver.Resolve(intent.Event.StartTime)
	if err != nil {
		return d.failed(ActionCreateEvent, err, fmt.Sprintf("I couldn't understand the start time %q. Could you give it as a date and time, e.g. 2025-07-01 15:30?", intent.Event.StartTime))
	}
	end, err := d.resolver.Resolve(intent.Event.EndTime)
	if err != nil {
		return d.failed(ActionCreateEvent, err, fmt.Sprintf("I couldn't understand the end time %q. Could you give it as a date and time, e.g. 2025-07-01 16:30?", intent.Event.EndTime))
	}

	candidate, err := planner.NewRange(start, end)
	if err != nil {
		return d.failed(ActionCreateEvent, err, "The end time has to come after the start time. Could you check those?")
	}

	// Conflict check reads the backend fresh every time. Cached views
	// would race with concurrent writers.
	windowStart := timezone.StartOfDay(start.In(d.zone), d.zone)
	windowEnd := timezone.EndOfDay(end.In(d.zone), d.zone)
	existing, err := d.list(ctx, &store.FindEvent{
		RangeStart: int64Ptr(windowStart.Unix()),
		RangeEnd:   int64Ptr(windowEnd.Unix()),
	})
	if err != nil {
		return d.backendFailed(ActionCreateEvent, err)
	}

	busy := make([]planner.Range, 0, len(existing))
	for _, e := range existing {
		r, err := planner.NewRange(time.Unix(e.StartTs, 0).UTC(), time.Unix(e.EndTs, 0).UTC())
		if err != nil {
			continue
		}
		busy = append(busy, r)
	}
	if planner.HasConflict(busy, candidate) {
		conflict := firstConflict(existing, candidate)
		reply := "That time conflicts with an existing event."
		if conflict != nil {
			reply = fmt.Sprintf("That time conflicts with %q (%s).", conflict.Title,
				timezone.FormatEventTime(time.Unix(conflict.StartTs, 0), time.Unix(conflict.EndTs, 0), d.zone))
		}
		return &Result{
			State:     StateFailed,
			Action:    ActionCreateEvent,
			Reply:     reply,
			ErrorCode: errors.ErrCodeSchedulingConflict,
		}
	}

	created, err := d.create(ctx, &store.Event{
		Title:       intent.Event.Title,
		Description: intent.Event.Description,
		Location:    intent.Event.Location,
		StartTs:     start.Unix(),
		EndTs:       end.Unix(),
		Attendees:   intent.Event.Attendees,
		Priority:    store.ParsePriority(intent.Event.Priority),
	})
	if err != nil {
		return d.backendFailed(ActionCreateEvent, err)
	}

	return &Result{
		State:   StateExecuted,
		Action:  ActionCreateEvent,
		Reply:   fmt.Sprintf("Scheduled %q for %s.", created.Title, timezone.FormatEventTime(start, end, d.zone)),
		EventID: created.ID,
	}
}

func (d *Dispatcher) listEvents(ctx context.Context, intent *Intent) *Result {
	var rangeStart, rangeEnd time.Time
	if intent.RangeStart != "" || intent.RangeEnd != "" {
		var err error
		rangeStart, err = d.resolver.Resolve(intent.RangeStart)
		if err != nil {
			return d.failed(ActionListEvents, err, fmt.Sprintf("I couldn't understand the start of that period (%q).", intent.RangeStart))
		}
		rangeEnd, err = d.resolver.Resolve(intent.RangeEnd)
		if err != nil {
			return d.failed(ActionListEvents, err, fmt.Sprintf("I couldn't understand the end of that period (%q).", intent.RangeEnd))
		}
		if !rangeEnd.After(rangeStart) {
			return d.failed(ActionListEvents, errors.EndBeforeStart("range end must follow range start"), "That period's end has to come after its start.")
		}
	} else {
		// Default window: today through the next seven days.
		rangeStart = timezone.StartOfDay(d.now().In(d.zone), d.zone)
		rangeEnd = rangeStart.AddDate(0, 0, 7)
	}

	events, err := d.list(ctx, &store.FindEvent{
		RangeStart: int64Ptr(rangeStart.Unix()),
		RangeEnd:   int64Ptr(rangeEnd.Unix()),
	})
	if err != nil {
		return d.backendFailed(ActionListEvents, err)
	}
	if len(events) == 0 {
		return &Result{State: StateExecuted, Action: ActionListEvents, Reply: "No events scheduled in this period."}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You have %d event(s):\n", len(events)))
	for i, e := range events {
		sb.WriteString(timezone.FormatEventLine(time.Unix(e.StartTs, 0), time.Unix(e.EndTs, 0), e.Title, e.Location, i, d.zone))
		sb.WriteString("\n")
	}
	return &Result{State: StateExecuted, Action: ActionListEvents, Reply: strings.TrimRight(sb.String(), "\n")}
}

func (d *Dispatcher) searchEvents(ctx context.Context, intent *Intent) *Result {
	if strings.TrimSpace(intent.Query) == "" {
		return &Result{
			State:     StateNeedsInfo,
			Action:    ActionSearchEvents,
			Reply:     "What should I search for?",
			ErrorCode: errors.ErrCodeInvalidArgument,
		}
	}

	matches, err := d.matchEvents(ctx, intent.Query)
	if err != nil {
		return d.backendFailed(ActionSearchEvents, err)
	}
	if len(matches) == 0 {
		return &Result{
			State:     StateExecuted,
			Action:    ActionSearchEvents,
			Reply:     fmt.Sprintf("No events found matching %q.", intent.Query),
			ErrorCode: errors.ErrCodeNotFound,
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d event(s) matching %q:\n", len(matches), intent.Query))
	for _, e := range matches {
		start := time.Unix(e.StartTs, 0).In(d.zone)
		end := time.Unix(e.EndTs, 0).In(d.zone)
		sb.WriteString(fmt.Sprintf("• %s (%s %s-%s)\n", e.Title, start.Format("01/02"), start.Format("15:04"), end.Format("15:04")))
	}
	return &Result{State: StateExecuted, Action: ActionSearchEvents, Reply: strings.TrimRight(sb.String(), "\n")}
}

func (d *Dispatcher) deleteEvent(ctx context.Context, intent *Intent) *Result {
	if strings.TrimSpace(intent.Query) == "" {
		return &Result{
			State:     StateNeedsInfo,
			Action:    ActionDeleteEvent,
			Reply:     "Which event should I delete?",
			ErrorCode: errors.ErrCodeInvalidArgument,
		}
	}

	matches, err := d.matchEvents(ctx, intent.Query)
	if err != nil {
		return d.backendFailed(ActionDeleteEvent, err)
	}
	switch len(matches) {
	case 0:
		return &Result{
			State:     StateFailed,
			Action:    ActionDeleteEvent,
			Reply:     fmt.Sprintf("I couldn't find an event matching %q.", intent.Query),
			ErrorCode: errors.ErrCodeNotFound,
		}
	case 1:
		target := matches[0]
		if err := d.delete(ctx, &store.DeleteEvent{ID: target.ID}); err != nil {
			return d.backendFailed(ActionDeleteEvent, err)
		}
		return &Result{
			State:   StateExecuted,
			Action:  ActionDeleteEvent,
			Reply:   fmt.Sprintf("Deleted %q.", target.Title),
			EventID: target.ID,
		}
	default:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Multiple events match %q. Which one did you mean?\n", intent.Query))
		for i, e := range matches {
			sb.WriteString(timezone.FormatEventLine(time.Unix(e.StartTs, 0), time.Unix(e.EndTs, 0), e.Title, e.Location, i, d.zone))
			sb.WriteString("\n")
		}
		return &Result{
			State:     StateFailed,
			Action:    ActionDeleteEvent,
			Reply:     strings.TrimRight(sb.String(), "\n"),
			ErrorCode: errors.ErrCodeAmbiguous,
		}
	}
}

func (d *Dispatcher) getEventDetails(ctx context.Context, intent *Intent) *Result {
	if strings.TrimSpace(intent.Query) == "" {
		return &Result{
			State:     StateNeedsInfo,
			Action:    ActionGetEventDetails,
			Reply:     "Which event would you like details for?",
			ErrorCode: errors.ErrCodeInvalidArgument,
		}
	}

	matches, err := d.matchEvents(ctx, intent.Query)
	if err != nil {
		return d.backendFailed(ActionGetEventDetails, err)
	}
	if len(matches) == 0 {
		return &Result{
			State:     StateFailed,
			Action:    ActionGetEventDetails,
			Reply:     fmt.Sprintf("I couldn't find an event matching %q.", intent.Query),
			ErrorCode: errors.ErrCodeNotFound,
		}
	}
	if len(matches) > 1 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Multiple events match %q. Which one did you mean?\n", intent.Query))
		for i, e := range matches {
			sb.WriteString(timezone.FormatEventLine(time.Unix(e.StartTs, 0), time.Unix(e.EndTs, 0), e.Title, e.Location, i, d.zone))
			sb.WriteString("\n")
		}
		return &Result{
			State:     StateFailed,
			Action:    ActionGetEventDetails,
			Reply:     strings.TrimRight(sb.String(), "\n"),
			ErrorCode: errors.ErrCodeAmbiguous,
		}
	}

	e := matches[0]
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", e.Title))
	sb.WriteString(fmt.Sprintf("Time: %s\n", timezone.FormatEventTime(time.Unix(e.StartTs, 0), time.Unix(e.EndTs, 0), d.zone)))
	if e.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", e.Location))
	}
	if e.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", e.Description))
	}
	if len(e.Attendees) > 0 {
		sb.WriteString(fmt.Sprintf("Attendees: %s\n", strings.Join(e.Attendees, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Priority: %s", e.Priority))
	return &Result{State: StateExecuted, Action: ActionGetEventDetails, Reply: sb.String(), EventID: e.ID}
}

func (d *Dispatcher) generalResponse(intent *Intent) *Result {
	reply := strings.TrimSpace(intent.ResponseText)
	if reply == "" {
		reply = "How can I help with your schedule?"
	}
	return &Result{State: StateExecuted, Action: ActionGeneralResponse, Reply: reply}
}

// matchEvents returns all events whose title contains query,
// case-insensitively, ordered by start time.
func (d *Dispatcher) matchEvents(ctx context.Context, query string) ([]*store.Event, error) {
	events, err := d.list(ctx, &store.FindEvent{})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	matches := []*store.Event{}
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), needle) {
			matches = append(matches, e)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].StartTs < matches[j].StartTs })
	return matches, nil
}

// Backend calls get a bounded context and exactly one attempt.

func (d *Dispatcher) list(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return d.backend.ListEvents(ctx, find)
}

func (d *Dispatcher) create(ctx context.Context, create *store.Event) (*store.Event, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return d.backend.CreateEvent(ctx, create)
}

func (d *Dispatcher) delete(ctx context.Context, delete *store.DeleteEvent) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return d.backend.DeleteEvent(ctx, delete)
}

func (d *Dispatcher) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.backendTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.backendTimeout)
}

func (d *Dispatcher) failed(action Action, err error, reply string) *Result {
	return &Result{
		State:     StateFailed,
		Action:    action,
		Reply:     reply,
		ErrorCode: errors.GetCodeFromError(err, errors.ErrCodeInvalidArgument),
	}
}

func (d *Dispatcher) backendFailed(action Action, err error) *Result {
	code := errors.ErrCodeBackend
	reply := fmt.Sprintf("Calendar error: %v. Please try again.", err)
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.ErrCodeTimeout
		reply = "The calendar took too long to respond. Please try again."
	}
	d.logger.Error("calendar backend call failed",
		slog.String("action", string(action)),
		slog.String("error_code", string(code)),
		slog.Any("err", err))
	return &Result{
		State:     StateFailed,
		Action:    action,
		Reply:     reply,
		ErrorCode: code,
	}
}

// missingFields merges the source's missing markers with fields that
// are empty on the partial event itself.
func missingFields(intent *Intent) []MissingField {
	seen := map[MissingField]bool{}
	for _, m := range intent.Missing {
		seen[m] = true
	}
	if intent.Event == nil {
		seen[MissingTitle], seen[MissingStartTime], seen[MissingEndTime] = true, true, true
	} else {
		if strings.TrimSpace(intent.Event.Title) == "" {
			seen[MissingTitle] = true
		}
		if strings.TrimSpace(intent.Event.StartTime) == "" {
			seen[MissingStartTime] = true
		}
		if strings.TrimSpace(intent.Event.EndTime) == "" {
			seen[MissingEndTime] = true
		}
	}
	ordered := []MissingField{}
	for _, m := range []MissingField{MissingTitle, MissingStartTime, MissingEndTime} {
		if seen[m] {
			ordered = append(ordered, m)
		}
	}
	return ordered
}

func clarificationFor(missing []MissingField) string {
	if len(missing) > 1 {
		return "Could you tell me the event's title, start time, and end time?"
	}
	switch missing[0] {
	case MissingTitle:
		return "Could you tell me the event's title?"
	case MissingStartTime:
		return "Could you tell me when the event starts?"
	case MissingEndTime:
		return "Could you tell me when the event ends?"
	}
	return "Could you tell me more about the event?"
}

func firstConflict(existing []*store.Event, candidate planner.Range) *store.Event {
	for _, e := range existing {
		if candidate.Start.Unix() < e.EndTs && candidate.End.Unix() > e.StartTs {
			return e
		}
	}
	return nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

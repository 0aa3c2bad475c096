// Package export renders calendar events to interchange formats.
package export

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/hrygo/schedwise/store"
)

const prodID = "-//schedwise//calendar//EN"

// ToICS renders events as an iCalendar document. Event UIDs become
// VEVENT UIDs so repeated exports stay stable.
func ToICS(events []*store.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)

	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetCreatedTime(time.Unix(e.CreatedTs, 0).UTC())
		ve.SetModifiedAt(time.Unix(e.UpdatedTs, 0).UTC())
		ve.SetStartAt(time.Unix(e.StartTs, 0).UTC())
		ve.SetEndAt(time.Unix(e.EndTs, 0).UTC())
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		for _, attendee := range e.Attendees {
			ve.AddAttendee(attendee)
		}
	}
	return cal.Serialize()
}

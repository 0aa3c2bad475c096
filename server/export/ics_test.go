package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedwise/store"
)

func TestToICS(t *testing.T) {
	events := []*store.Event{
		{
			ID:          "id-1",
			UID:         "uid-1",
			Title:       "Quarterly review",
			Description: "Numbers for Q2",
			Location:    "Room 4",
			Attendees:   []string{"ana@example.com"},
			StartTs:     time.Date(2025, 7, 10, 14, 0, 0, 0, time.UTC).Unix(),
			EndTs:       time.Date(2025, 7, 10, 15, 0, 0, 0, time.UTC).Unix(),
			CreatedTs:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).Unix(),
			UpdatedTs:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC).Unix(),
		},
		{
			ID:      "id-2",
			UID:     "uid-2",
			Title:   "Standup",
			StartTs: time.Date(2025, 7, 11, 9, 0, 0, 0, time.UTC).Unix(),
			EndTs:   time.Date(2025, 7, 11, 9, 15, 0, 0, time.UTC).Unix(),
		},
	}

	doc := ToICS(events)

	assert.True(t, strings.HasPrefix(doc, "BEGIN:VCALENDAR"))
	assert.Contains(t, doc, "UID:uid-1")
	assert.Contains(t, doc, "UID:uid-2")
	assert.Contains(t, doc, "SUMMARY:Quarterly review")
	assert.Contains(t, doc, "LOCATION:Room 4")
	assert.Contains(t, doc, "DTSTART:20250710T140000Z")
	assert.Contains(t, doc, "DTEND:20250710T150000Z")
	assert.Equal(t, 2, strings.Count(doc, "BEGIN:VEVENT"))
}

func TestToICS_Empty(t *testing.T) {
	doc := ToICS(nil)
	require.Contains(t, doc, "BEGIN:VCALENDAR")
	assert.NotContains(t, doc, "BEGIN:VEVENT")
}

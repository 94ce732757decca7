package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICS_RoundTrip(t *testing.T) {
	// given
	events := []Event{
		{
			Id:          "00000000-0000-0000-0000-000000000001",
			Title:       "Algebra exam",
			Description: "Room 12",
			Start:       date(2024, 5, 2, 9, 0),
			End:         date(2024, 5, 2, 11, 0),
			Category:    CategorySchool,
			Priority:    PriorityHigh,
			Links:       []string{"https://school.example.com/exam"},
			Completed:   true,
		},
		{
			Id:       "00000000-0000-0000-0000-000000000002",
			Title:    "Lecture",
			Start:    date(2024, 1, 1, 9, 0),
			End:      date(2024, 1, 1, 10, 0),
			Category: CategoryWork,
			Priority: PriorityLow,
			Recurrence: &RecurrenceRule{
				Frequency:  Weekly,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
			},
		},
	}

	// when
	document := ExportICS(events, date(2024, 1, 1, 0, 0))
	result, err := ParseICS(strings.NewReader(document))

	// then
	require.NoError(t, err)
	assert.Zero(t, result.Skipped)
	require.Len(t, result.Events, 2)

	exam := result.Events[0]
	assert.Equal(t, "Algebra exam", exam.Title)
	assert.Equal(t, "Room 12", exam.Description)
	assert.Equal(t, events[0].Start, exam.Start)
	assert.Equal(t, events[0].End, exam.End)
	assert.Equal(t, CategorySchool, exam.Category)
	assert.Equal(t, PriorityHigh, exam.Priority)
	assert.Equal(t, []string{"https://school.example.com/exam"}, exam.Links)
	assert.True(t, exam.Completed)
	assert.Nil(t, exam.Recurrence)

	lecture := result.Events[1]
	assert.Equal(t, PriorityLow, lecture.Priority)
	assert.False(t, lecture.Completed)
	require.NotNil(t, lecture.Recurrence)
	assert.Equal(t, Weekly, lecture.Recurrence.Frequency)
	assert.ElementsMatch(t, []time.Weekday{time.Monday, time.Wednesday}, lecture.Recurrence.DaysOfWeek)
}

func TestParseICS(t *testing.T) {
	t.Run("should skip events with unsupported recurrence", func(t *testing.T) {
		document := strings.Join([]string{
			"BEGIN:VCALENDAR",
			"VERSION:2.0",
			"PRODID:-//test//EN",
			"BEGIN:VEVENT",
			"UID:1",
			"DTSTART:20240105T100000",
			"DTEND:20240105T110000",
			"SUMMARY:Last friday",
			"RRULE:FREQ=MONTHLY;BYSETPOS=-1;BYDAY=FR",
			"END:VEVENT",
			"BEGIN:VEVENT",
			"UID:2",
			"DTSTART:20240106T100000",
			"PRIORITY:0",
			"END:VEVENT",
			"END:VCALENDAR",
			"",
		}, "\r\n")

		result, err := ParseICS(strings.NewReader(document))

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, result.Events, 1)
		untitled := result.Events[0]
		assert.Equal(t, "Untitled", untitled.Title)
		assert.Equal(t, date(2024, 1, 6, 10, 0), untitled.Start)
		assert.Equal(t, date(2024, 1, 6, 11, 0), untitled.End)
		assert.Equal(t, PriorityMedium, untitled.Priority)
		assert.Equal(t, CategoryOther, untitled.Category)
	})

	t.Run("should fail on malformed document", func(t *testing.T) {
		_, err := ParseICS(strings.NewReader("BEGIN:VEVENT\r\nEND:VEVENT\r\n"))

		assert.Error(t, err)
	})
}

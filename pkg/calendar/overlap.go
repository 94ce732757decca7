package calendar

import (
	"slices"
	"time"
)

type PackedEvent struct {
	Event        Event
	Column       int
	TotalColumns int
}

// PackOverlaps lays out events side by side. Events are sorted by start and split into groups
// of transitively overlapping [start, end) intervals; inside a group each event takes the first
// column whose previous event has ended. TotalColumns is the number of columns of the group,
// which equals the largest number of its events running at the same moment.
func PackOverlaps(events []Event) []PackedEvent {
	sorted := SortedByStart(events)
	out := make([]PackedEvent, 0, len(sorted))

	var columnEnds []time.Time
	var groupEnd time.Time
	groupStart := 0

	closeGroup := func() {
		for i := groupStart; i < len(out); i++ {
			out[i].TotalColumns = len(columnEnds)
		}
		groupStart = len(out)
		columnEnds = columnEnds[:0]
	}

	for _, e := range sorted {
		end := e.End
		if end.Before(e.Start) {
			end = e.Start
		}
		if len(out) > groupStart && !e.Start.Before(groupEnd) {
			closeGroup()
		}
		if len(out) == groupStart || end.After(groupEnd) {
			groupEnd = end
		}

		column := slices.IndexFunc(columnEnds, func(columnEnd time.Time) bool {
			return !columnEnd.After(e.Start)
		})
		if column < 0 {
			column = len(columnEnds)
			columnEnds = append(columnEnds, end)
		} else {
			columnEnds[column] = end
		}
		out = append(out, PackedEvent{Event: e, Column: column})
	}
	closeGroup()
	return out
}

package calendar

import (
	"slices"
	"sort"
	"time"

	"github.com/aetas/aetas/internal/utils"
)

// The functions in this file are pure: they never modify the slices they are given and return
// the same result for the same input.

// EventsOnDay returns the events starting on the calendar day of day, in input order.
func EventsOnDay(events []Event, day time.Time) []Event {
	out := make([]Event, 0)
	for _, e := range events {
		if utils.SameDay(e.Start, day) {
			out = append(out, e)
		}
	}
	return out
}

// EventsFromWeekStart returns the events starting on or after the first day of the week
// containing now, in input order.
func EventsFromWeekStart(events []Event, now time.Time, weekFirstDay time.Weekday) []Event {
	weekStart := utils.StartOfWeek(now, weekFirstDay)
	out := make([]Event, 0)
	for _, e := range events {
		if !e.Start.Before(weekStart) {
			out = append(out, e)
		}
	}
	return out
}

type Buckets struct {
	Today    []Event
	Tomorrow []Event
	ThisWeek []Event
	Later    []Event
}

// BucketByRecency splits events by start relative to now:
//
//	today     same calendar day as now
//	tomorrow  the next calendar day
//	thisWeek  from the day after tomorrow until now + 7 days, exclusive
//	later     from now + 7 days on
//
// Events starting before today are dropped. Each bucket is sorted by start.
func BucketByRecency(events []Event, now time.Time) Buckets {
	today := utils.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	afterTomorrow := today.AddDate(0, 0, 2)
	nextWeek := now.AddDate(0, 0, 7)

	b := Buckets{
		Today:    []Event{},
		Tomorrow: []Event{},
		ThisWeek: []Event{},
		Later:    []Event{},
	}
	for _, e := range events {
		switch {
		case e.Start.Before(today):
		case e.Start.Before(tomorrow):
			b.Today = append(b.Today, e)
		case e.Start.Before(afterTomorrow):
			b.Tomorrow = append(b.Tomorrow, e)
		case e.Start.Before(nextWeek):
			b.ThisWeek = append(b.ThisWeek, e)
		default:
			b.Later = append(b.Later, e)
		}
	}
	sortByStart(b.Today)
	sortByStart(b.Tomorrow)
	sortByStart(b.ThisWeek)
	sortByStart(b.Later)
	return b
}

// GroupByModule groups events by module id. Events without a module, or whose module is not in
// moduleIds, are grouped under NoModule. Every event appears in exactly one group; groups are
// sorted by start.
func GroupByModule(events []Event, moduleIds []string) map[string][]Event {
	known := make(map[string]bool, len(moduleIds))
	for _, id := range moduleIds {
		known[id] = true
	}

	groups := make(map[string][]Event)
	for _, e := range events {
		key := e.ModuleId
		if !known[key] {
			key = NoModule
		}
		groups[key] = append(groups[key], e)
	}
	for _, g := range groups {
		sortByStart(g)
	}
	return groups
}

// UpcomingByModule is GroupByModule restricted to incomplete events starting after now.
func UpcomingByModule(events []Event, moduleIds []string, now time.Time) map[string][]Event {
	upcoming := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.Completed && e.Start.After(now) {
			upcoming = append(upcoming, e)
		}
	}
	return GroupByModule(upcoming, moduleIds)
}

// SortedByStart returns a sorted copy of events.
func SortedByStart(events []Event) []Event {
	out := slices.Clone(events)
	sortByStart(out)
	return out
}

func sortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

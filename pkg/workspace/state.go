package workspace

import (
	"maps"
	"slices"
	"time"

	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/module"
	"github.com/aetas/aetas/pkg/note"
)

// State is a copy of a workspace's collections.
type State struct {
	Events  []calendar.Event
	Modules []module.Module
	Notes   []note.Note
	// Completed overrides the completed flag of generated occurrences, by occurrence id. It is
	// never persisted.
	Completed map[string]bool
	// Pending is set while a mutation has been applied locally but not yet confirmed.
	Pending bool
}

func (s State) clone() State {
	events := make([]calendar.Event, len(s.Events))
	for i, e := range s.Events {
		events[i] = cloneEvent(e)
	}
	return State{
		Events:    events,
		Modules:   slices.Clone(s.Modules),
		Notes:     slices.Clone(s.Notes),
		Completed: maps.Clone(s.Completed),
		Pending:   s.Pending,
	}
}

// Occurrences expands the events over the window and applies the completion overrides.
func (s State) Occurrences(expander calendar.Expander, from, to time.Time) ([]calendar.Event, error) {
	occurrences, err := expander.ExpandAll(s.Events, from, to)
	if err != nil {
		return nil, err
	}
	for i, o := range occurrences {
		if completed, ok := s.Completed[o.Id]; ok && o.IsRecurringInstance {
			occurrences[i].Completed = completed
		}
	}
	return occurrences, nil
}

func cloneEvent(e calendar.Event) calendar.Event {
	e.Links = slices.Clone(e.Links)
	e.Reminders = slices.Clone(e.Reminders)
	if e.Recurrence != nil {
		rule := *e.Recurrence
		rule.DaysOfWeek = slices.Clone(rule.DaysOfWeek)
		e.Recurrence = &rule
	}
	return e
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(items, func(item T) bool { return idOf(item) == id })
}

func eventId(e calendar.Event) string { return e.Id }
func moduleId(m module.Module) string { return m.Id }
func noteId(n note.Note) string       { return n.Id }

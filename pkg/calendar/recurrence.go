package calendar

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrInvalidTemplate = errors.New("invalid recurrence template")
	ErrInvalidWindow   = errors.New("invalid expansion window")
)

const (
	DefaultMaxOccurrences = 5000
	// maxSteps bounds the cursor loop, about 360 years of daily steps.
	maxSteps = 1 << 17
)

// Expander turns recurring templates into concrete occurrences. The zero value is ready to use.
type Expander struct {
	// MaxOccurrences caps the occurrences emitted for one template. Zero means
	// DefaultMaxOccurrences.
	MaxOccurrences int
	// CountWeekdayOccurrences makes weekly rules with explicit days stop after Count
	// occurrences. When false Count is ignored on that path and only the window and EndDate
	// bound the series.
	CountWeekdayOccurrences bool
	// CountFromSeriesStart numbers occurrences, and applies Count, from the template's own start.
	// When false the counter starts at the first occurrence inside the window.
	CountFromSeriesStart bool
}

var defaultExpander = Expander{}

// Expand expands template with the default Expander.
func Expand(template Event, windowStart, windowEnd time.Time) ([]Event, error) {
	return defaultExpander.Expand(template, windowStart, windowEnd)
}

// ExpandAll expands with the default Expander.
func ExpandAll(events []Event, windowStart, windowEnd time.Time) ([]Event, error) {
	return defaultExpander.ExpandAll(events, windowStart, windowEnd)
}

// Expand returns the occurrences of template whose start lies in [windowStart, windowEnd], in
// generation order. An event without recurrence, or one that is itself an occurrence, is
// returned unchanged as the only element.
//
// Occurrence n gets id "<templateId>_<n>". n counts the occurrences emitted in the window unless
// CountFromSeriesStart is set, in which case it also counts those before the window and ids stay
// stable when the window moves.
func (x Expander) Expand(template Event, windowStart, windowEnd time.Time) ([]Event, error) {
	if template.Recurrence == nil || template.IsRecurringInstance {
		return []Event{template}, nil
	}
	if template.Start.IsZero() {
		return nil, fmt.Errorf("%w: template %q has no start", ErrInvalidTemplate, template.Id)
	}
	rule := *template.Recurrence
	if !rule.Frequency.Valid() {
		return nil, fmt.Errorf("%w: template %q has unknown frequency %q", ErrInvalidTemplate, template.Id, rule.Frequency)
	}
	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow, windowEnd, windowStart)
	}

	limit := x.MaxOccurrences
	if limit <= 0 {
		limit = DefaultMaxOccurrences
	}

	if rule.Frequency == Weekly && len(rule.DaysOfWeek) > 0 {
		return x.expandWeekdays(template, rule, windowStart, windowEnd, limit), nil
	}
	return x.expandStepped(template, rule, windowStart, windowEnd, limit), nil
}

// expandStepped walks the series in steps of interval units of the frequency. Every cursor is
// derived from the template start, so month ends clamp without drifting: Jan 31 gives Feb 29,
// Mar 31, Apr 30.
func (x Expander) expandStepped(template Event, rule RecurrenceRule, windowStart, windowEnd time.Time, limit int) []Event {
	interval := max(rule.Interval, 1)
	out := make([]Event, 0)

	n := 0
	for step := 0; step < maxSteps; step++ {
		cursor := advance(template.Start, rule.Frequency, step*interval)
		if pastEnd(rule, cursor, windowEnd) {
			break
		}
		if rule.Count != nil && n >= *rule.Count {
			break
		}
		if cursor.Before(windowStart) {
			if x.CountFromSeriesStart {
				n++
			}
			continue
		}
		out = append(out, occurrence(template, cursor, n))
		n++
		if len(out) >= limit {
			break
		}
	}
	return out
}

// expandWeekdays walks the calendar one day at a time and emits on the listed weekdays. Interval
// is not applied on this path.
func (x Expander) expandWeekdays(template Event, rule RecurrenceRule, windowStart, windowEnd time.Time, limit int) []Event {
	var days [7]bool
	for _, d := range rule.DaysOfWeek {
		if d >= time.Sunday && d <= time.Saturday {
			days[d] = true
		}
	}

	out := make([]Event, 0)
	n := 0
	for step := 0; step < maxSteps; step++ {
		cursor := template.Start.AddDate(0, 0, step)
		if pastEnd(rule, cursor, windowEnd) {
			break
		}
		if x.CountWeekdayOccurrences && rule.Count != nil && n >= *rule.Count {
			break
		}
		if !days[cursor.Weekday()] {
			continue
		}
		if cursor.Before(windowStart) {
			if x.CountFromSeriesStart {
				n++
			}
			continue
		}
		out = append(out, occurrence(template, cursor, n))
		n++
		if len(out) >= limit {
			break
		}
	}
	return out
}

// ExpandAll expands every template in events and keeps singletons starting inside the window.
// The result is ordered by start; events starting at the same time keep their input order.
func (x Expander) ExpandAll(events []Event, windowStart, windowEnd time.Time) ([]Event, error) {
	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow, windowEnd, windowStart)
	}

	out := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.IsTemplate() {
			if !e.Start.Before(windowStart) && !e.Start.After(windowEnd) {
				out = append(out, e)
			}
			continue
		}
		occurrences, err := x.Expand(e, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, occurrences...)
	}
	sortByStart(out)
	return out, nil
}

func pastEnd(rule RecurrenceRule, cursor, windowEnd time.Time) bool {
	if cursor.After(windowEnd) {
		return true
	}
	return rule.EndDate != nil && cursor.After(*rule.EndDate)
}

func occurrence(template Event, start time.Time, n int) Event {
	o := template
	o.Id = OccurrenceId(template.Id, n)
	o.TemplateId = template.Id
	o.IsRecurringInstance = true
	o.Start = start
	o.End = start.Add(template.Duration())
	o.Links = slices.Clone(template.Links)
	o.Reminders = slices.Clone(template.Reminders)
	return o
}

// advance moves start forward by steps units of freq keeping its time of day. Months and years
// clamp the day to the length of the target month.
func advance(start time.Time, freq Frequency, steps int) time.Time {
	switch freq {
	case Daily:
		return start.AddDate(0, 0, steps)
	case Weekly:
		return start.AddDate(0, 0, 7*steps)
	case Monthly:
		return addMonthsClamped(start, steps)
	case Yearly:
		return addMonthsClamped(start, 12*steps)
	}
	return start
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := min(t.Day(), daysIn(first.Year(), first.Month()))
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

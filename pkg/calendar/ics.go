package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aetas/aetas/internal/utils"
	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
)

// floating local time, see RFC 5545 section 3.3.5
const icsFloatingLayout = "20060102T150405"

const completedProperty = "X-AETAS-COMPLETED"

// ExportICS renders stored events as an iCalendar document. Templates keep their recurrence as
// an RRULE so that calendar clients expand them on their own.
func ExportICS(events []Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//aetas//calendar//EN")

	for _, e := range events {
		ve := cal.AddEvent(e.Id)
		ve.SetDtStampTime(now)
		ve.SetProperty(ical.ComponentPropertyDtStart, e.Start.Format(icsFloatingLayout))
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.End.Format(icsFloatingLayout))
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(e.Category)))
		ve.SetProperty(ical.ComponentPropertyPriority, icsPriority(e.Priority))
		if len(e.Links) > 0 {
			ve.SetURL(e.Links[0])
		}
		if e.Completed {
			ve.SetProperty(completedProperty, "TRUE")
		}
		if e.IsTemplate() {
			ve.AddRrule(e.Recurrence.RRuleFor(e.Start))
		}
	}
	return cal.Serialize()
}

type ImportResult struct {
	Events  []Event
	Skipped int
}

// ParseICS reads the VEVENTs of an iCalendar document. Events that cannot be represented, for
// example because of an unsupported RRULE, are skipped and counted.
func ParseICS(r io.Reader) (ImportResult, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to parse calendar: %w", err)
	}

	result := ImportResult{Events: make([]Event, 0)}
	for _, ve := range cal.Events() {
		e, err := parseVEvent(ve)
		if err != nil {
			log.Warnf("skipping imported event: %v", err)
			result.Skipped++
			continue
		}
		result.Events = append(result.Events, e)
	}
	return result, nil
}

func parseVEvent(ve *ical.VEvent) (Event, error) {
	start, err := ve.GetStartAt()
	if err != nil {
		return Event{}, fmt.Errorf("invalid DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = start.Add(time.Hour)
	}

	e := Event{
		Start:    utils.WallClock(start.In(time.Local)),
		End:      utils.WallClock(end.In(time.Local)),
		Category: CategoryOther,
		Priority: PriorityMedium,
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		if c := Category(strings.ToLower(strings.Split(p.Value, ",")[0])); c.Valid() {
			e.Category = c
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyPriority); p != nil {
		e.Priority = priorityFromICS(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil && p.Value != "" {
		e.Links = []string{p.Value}
	}
	if p := ve.GetProperty(completedProperty); p != nil {
		e.Completed = strings.EqualFold(p.Value, "TRUE")
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rule, err := RuleFromRRule(p.Value)
		if err != nil {
			return Event{}, err
		}
		e.Recurrence = rule
	}
	if e.Title == "" {
		e.Title = "Untitled"
	}
	return e.WithDefaults(), nil
}

func icsPriority(p Priority) string {
	switch p {
	case PriorityHigh:
		return "1"
	case PriorityLow:
		return "9"
	}
	return "5"
}

func priorityFromICS(value string) Priority {
	switch strings.TrimSpace(value) {
	case "1", "2", "3", "4":
		return PriorityHigh
	case "6", "7", "8", "9":
		return PriorityLow
	}
	return PriorityMedium
}

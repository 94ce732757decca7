package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidEvent      = errors.New("invalid event")
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
	// ErrRecurringInstance is returned when a stored-row operation is attempted on a generated
	// occurrence id.
	ErrRecurringInstance = errors.New("operation not supported on a recurring instance")
)

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategorySchool   Category = "school"
	CategoryOther    Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategorySchool, CategoryOther:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NoModule is the ModuleId of an event that does not belong to any module.
const NoModule = ""

// Event is either a stored row (a singleton or a recurring template) or an occurrence generated
// from a template. Times are local wall-clock values.
type Event struct {
	Id          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Category    Category
	ModuleId    string
	Links       []string
	Notes       string
	Reminders   []string
	Completed   bool
	Priority    Priority
	Recurrence  *RecurrenceRule

	IsRecurringInstance bool
	// TemplateId is the id of the template a generated occurrence comes from.
	TemplateId string
}

// IsTemplate reports whether the event is a stored recurring template.
func (e Event) IsTemplate() bool {
	return e.Recurrence != nil && !e.IsRecurringInstance
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Validate checks what storage requires of an event. Expansion and aggregation never call it.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	}
	if !e.End.After(e.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidEvent)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEvent, e.Category)
	}
	if !e.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidEvent, e.Priority)
	}
	if e.Recurrence != nil {
		return e.Recurrence.Validate()
	}
	return nil
}

// WithDefaults fills the optional enumerations with their default values.
func (e Event) WithDefaults() Event {
	if e.Category == "" {
		e.Category = CategoryOther
	}
	if e.Priority == "" {
		e.Priority = PriorityMedium
	}
	if e.Links == nil {
		e.Links = []string{}
	}
	if e.Reminders == nil {
		e.Reminders = []string{}
	}
	return e
}

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// RecurrenceRule is embedded in a template event and stored as JSON next to it.
type RecurrenceRule struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval"`
	// At most one of Count and EndDate is set. With neither, only the expansion window bounds
	// the series.
	Count      *int           `json:"count,omitempty"`
	EndDate    *time.Time     `json:"endDate,omitempty"`
	DaysOfWeek []time.Weekday `json:"daysOfWeek,omitempty"`
	// DayOfMonth is kept for clients but does not influence expansion.
	DayOfMonth *int `json:"dayOfMonth,omitempty"`
}

func (r RecurrenceRule) Validate() error {
	if !r.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidRecurrence)
	}
	if r.Count != nil && r.EndDate != nil {
		return fmt.Errorf("%w: count and endDate are mutually exclusive", ErrInvalidRecurrence)
	}
	if r.Count != nil && *r.Count <= 0 {
		return fmt.Errorf("%w: count must be positive", ErrInvalidRecurrence)
	}
	for _, d := range r.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: day of week %d out of range", ErrInvalidRecurrence, d)
		}
	}
	if r.DayOfMonth != nil && (*r.DayOfMonth < 1 || *r.DayOfMonth > 31) {
		return fmt.Errorf("%w: day of month %d out of range", ErrInvalidRecurrence, *r.DayOfMonth)
	}
	return nil
}

// OccurrenceId builds the id of the n-th occurrence of a template.
func OccurrenceId(templateId string, n int) string {
	return templateId + "_" + strconv.Itoa(n)
}

// ParseOccurrenceId splits an occurrence id into template id and sequence number. Stored ids are
// UUIDs and never contain an underscore.
func ParseOccurrenceId(id string) (templateId string, n int, ok bool) {
	i := strings.LastIndex(id, "_")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return id[:i], n, true
}

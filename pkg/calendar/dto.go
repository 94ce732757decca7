package calendar

import "time"

type EventDTO struct {
	Id                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Start               time.Time      `json:"start"`
	End                 time.Time      `json:"end"`
	Category            string         `json:"category"`
	ModuleId            *string        `json:"moduleId"`
	Links               []string       `json:"links"`
	Notes               string         `json:"notes"`
	Reminders           []string       `json:"reminders"`
	Completed           bool           `json:"completed"`
	Priority            string         `json:"priority"`
	Recurrence          *RecurrenceDTO `json:"recurrence"`
	IsRecurringInstance bool           `json:"isRecurringInstance"`
	TemplateId          string         `json:"templateId,omitempty"`
}

type RecurrenceDTO struct {
	Frequency  string     `json:"frequency"`
	Interval   int        `json:"interval"`
	Count      *int       `json:"count,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
	DayOfMonth *int       `json:"dayOfMonth,omitempty"`
}

type PackedEventDTO struct {
	Event        EventDTO `json:"event"`
	Column       int      `json:"column"`
	TotalColumns int      `json:"totalColumns"`
}

type HourSlotDTO struct {
	Hour   int              `json:"hour"`
	Events []PackedEventDTO `json:"events"`
}

type DayViewDTO struct {
	Date  time.Time     `json:"date"`
	Slots []HourSlotDTO `json:"slots"`
}

type DayCellDTO struct {
	Date    time.Time  `json:"date"`
	InMonth bool       `json:"inMonth"`
	Events  []EventDTO `json:"events"`
}

type WeekViewDTO struct {
	Start time.Time    `json:"start"`
	Days  []DayCellDTO `json:"days"`
}

type MonthViewDTO struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Weeks [][]DayCellDTO `json:"weeks"`
}

type BucketsDTO struct {
	Today    []EventDTO `json:"today"`
	Tomorrow []EventDTO `json:"tomorrow"`
	ThisWeek []EventDTO `json:"thisWeek"`
	Later    []EventDTO `json:"later"`
}

func EventToDTO(e Event) EventDTO {
	dto := EventDTO{
		Id:                  e.Id,
		Title:               e.Title,
		Description:         e.Description,
		Start:               e.Start,
		End:                 e.End,
		Category:            string(e.Category),
		Links:               nonNil(e.Links),
		Notes:               e.Notes,
		Reminders:           nonNil(e.Reminders),
		Completed:           e.Completed,
		Priority:            string(e.Priority),
		IsRecurringInstance: e.IsRecurringInstance,
		TemplateId:          e.TemplateId,
	}
	if e.ModuleId != NoModule {
		moduleId := e.ModuleId
		dto.ModuleId = &moduleId
	}
	if e.Recurrence != nil {
		r := e.Recurrence
		dto.Recurrence = &RecurrenceDTO{
			Frequency:  string(r.Frequency),
			Interval:   r.Interval,
			Count:      r.Count,
			EndDate:    r.EndDate,
			DayOfMonth: r.DayOfMonth,
		}
		for _, d := range r.DaysOfWeek {
			dto.Recurrence.DaysOfWeek = append(dto.Recurrence.DaysOfWeek, int(d))
		}
	}
	return dto
}

func DTOToEvent(dto EventDTO) Event {
	e := Event{
		Id:          dto.Id,
		Title:       dto.Title,
		Description: dto.Description,
		Start:       dto.Start,
		End:         dto.End,
		Category:    Category(dto.Category),
		Links:       dto.Links,
		Notes:       dto.Notes,
		Reminders:   dto.Reminders,
		Completed:   dto.Completed,
		Priority:    Priority(dto.Priority),
	}
	if dto.ModuleId != nil {
		e.ModuleId = *dto.ModuleId
	}
	if dto.Recurrence != nil {
		r := dto.Recurrence
		e.Recurrence = &RecurrenceRule{
			Frequency:  Frequency(r.Frequency),
			Interval:   r.Interval,
			Count:      r.Count,
			EndDate:    r.EndDate,
			DayOfMonth: r.DayOfMonth,
		}
		for _, d := range r.DaysOfWeek {
			e.Recurrence.DaysOfWeek = append(e.Recurrence.DaysOfWeek, time.Weekday(d))
		}
	}
	return e
}

func EventsToDTO(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	return dtos
}

func DayViewToDTO(v DayView) DayViewDTO {
	dto := DayViewDTO{Date: v.Date, Slots: make([]HourSlotDTO, 0, len(v.Slots))}
	for _, slot := range v.Slots {
		packed := make([]PackedEventDTO, 0, len(slot.Events))
		for _, p := range slot.Events {
			packed = append(packed, PackedEventDTO{Event: EventToDTO(p.Event), Column: p.Column, TotalColumns: p.TotalColumns})
		}
		dto.Slots = append(dto.Slots, HourSlotDTO{Hour: slot.Hour, Events: packed})
	}
	return dto
}

func WeekViewToDTO(v WeekView) WeekViewDTO {
	return WeekViewDTO{Start: v.Start, Days: cellsToDTO(v.Days)}
}

func MonthViewToDTO(v MonthView) MonthViewDTO {
	dto := MonthViewDTO{Year: v.Year, Month: int(v.Month), Weeks: make([][]DayCellDTO, 0, len(v.Weeks))}
	for _, week := range v.Weeks {
		dto.Weeks = append(dto.Weeks, cellsToDTO(week))
	}
	return dto
}

func BucketsToDTO(b Buckets) BucketsDTO {
	return BucketsDTO{
		Today:    EventsToDTO(b.Today),
		Tomorrow: EventsToDTO(b.Tomorrow),
		ThisWeek: EventsToDTO(b.ThisWeek),
		Later:    EventsToDTO(b.Later),
	}
}

func cellsToDTO(cells []DayCell) []DayCellDTO {
	out := make([]DayCellDTO, 0, len(cells))
	for _, c := range cells {
		out = append(out, DayCellDTO{Date: c.Date, InMonth: c.InMonth, Events: EventsToDTO(c.Events)})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package calendar

import (
	"time"

	"github.com/aetas/aetas/internal/utils"
)

type HourSlot struct {
	Hour   int
	Events []PackedEvent
}

type DayView struct {
	Date  time.Time
	Slots []HourSlot
}

type DayCell struct {
	Date    time.Time
	InMonth bool
	Events  []Event
}

type WeekView struct {
	Start time.Time
	Days  []DayCell
}

type MonthView struct {
	Year  int
	Month time.Month
	Weeks [][]DayCell
}

// BuildDayView places the events of day into 24 hourly slots by start hour and packs the
// overlapping ones of each slot into columns.
func BuildDayView(events []Event, day time.Time) DayView {
	byHour := make([][]Event, 24)
	for _, e := range EventsOnDay(events, day) {
		byHour[e.Start.Hour()] = append(byHour[e.Start.Hour()], e)
	}

	view := DayView{Date: utils.StartOfDay(day), Slots: make([]HourSlot, 24)}
	for hour := range view.Slots {
		view.Slots[hour] = HourSlot{Hour: hour, Events: PackOverlaps(byHour[hour])}
	}
	return view
}

// BuildWeekView returns the seven days of the week containing ref.
func BuildWeekView(events []Event, ref time.Time, weekFirstDay time.Weekday) WeekView {
	start := utils.StartOfWeek(ref, weekFirstDay)
	view := WeekView{Start: start, Days: make([]DayCell, 7)}
	for i := range view.Days {
		view.Days[i] = dayCell(events, start.AddDate(0, 0, i), true)
	}
	return view
}

// BuildMonthView returns whole weeks covering the month of ref. Days outside the month are
// included to fill the first and last week and carry InMonth false.
func BuildMonthView(events []Event, ref time.Time, weekFirstDay time.Weekday) MonthView {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)
	gridStart := utils.StartOfWeek(first, weekFirstDay)
	gridEnd := utils.StartOfWeek(last, weekFirstDay).AddDate(0, 0, 7)

	view := MonthView{Year: first.Year(), Month: first.Month()}
	for weekStart := gridStart; weekStart.Before(gridEnd); weekStart = weekStart.AddDate(0, 0, 7) {
		week := make([]DayCell, 7)
		for i := range week {
			day := weekStart.AddDate(0, 0, i)
			week[i] = dayCell(events, day, day.Month() == first.Month())
		}
		view.Weeks = append(view.Weeks, week)
	}
	return view
}

// BuildListView is the rolling list: events from the start of the current week bucketed by
// recency.
func BuildListView(events []Event, now time.Time, weekFirstDay time.Weekday) Buckets {
	return BucketByRecency(EventsFromWeekStart(events, now, weekFirstDay), now)
}

func dayCell(events []Event, day time.Time, inMonth bool) DayCell {
	return DayCell{
		Date:    day,
		InMonth: inMonth,
		Events:  SortedByStart(EventsOnDay(events, day)),
	}
}

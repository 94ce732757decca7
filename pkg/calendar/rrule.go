package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleFrequencies = map[Frequency]rrule.Frequency{
	Daily:   rrule.DAILY,
	Weekly:  rrule.WEEKLY,
	Monthly: rrule.MONTHLY,
	Yearly:  rrule.YEARLY,
}

// indexed by time.Weekday
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ROption translates the rule into rrule-go options anchored at dtstart.
func (r RecurrenceRule) ROption(dtstart time.Time) rrule.ROption {
	opt := rrule.ROption{
		Freq:     rruleFrequencies[r.Frequency],
		Dtstart:  dtstart,
		Interval: max(r.Interval, 1),
	}
	if r.Count != nil {
		opt.Count = *r.Count
	}
	if r.EndDate != nil {
		opt.Until = *r.EndDate
	}
	if r.Frequency == Weekly {
		for _, d := range r.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	}
	if r.DayOfMonth != nil {
		opt.Bymonthday = []int{*r.DayOfMonth}
	}
	return opt
}

// RRuleString returns the value of an RFC 5545 RRULE property, e.g. "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE".
func (r RecurrenceRule) RRuleString() string {
	opt := r.ROption(time.Time{})
	return opt.RRuleString()
}

// RRuleFor returns the RRULE value of a series starting at start. A day of month other than the
// start's day is left out since occurrences follow the start date.
func (r RecurrenceRule) RRuleFor(start time.Time) string {
	if r.DayOfMonth != nil && *r.DayOfMonth != start.Day() {
		r.DayOfMonth = nil
	}
	return r.RRuleString()
}

// RuleFromRRule parses an RRULE value. Only the subset the expander can reproduce is accepted:
// a plain frequency with interval, count or until, weekdays for weekly rules and a single day of
// month.
func RuleFromRRule(value string) (*RecurrenceRule, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}

	rule := &RecurrenceRule{Interval: max(opt.Interval, 1)}
	switch opt.Freq {
	case rrule.DAILY:
		rule.Frequency = Daily
	case rrule.WEEKLY:
		rule.Frequency = Weekly
	case rrule.MONTHLY:
		rule.Frequency = Monthly
	case rrule.YEARLY:
		rule.Frequency = Yearly
	default:
		return nil, fmt.Errorf("%w: unsupported frequency %v", ErrInvalidRecurrence, opt.Freq)
	}

	if len(opt.Bysetpos) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 || len(opt.Bymonth) > 0 ||
		len(opt.Byhour) > 0 || len(opt.Byminute) > 0 || len(opt.Bysecond) > 0 || len(opt.Byeaster) > 0 {
		return nil, fmt.Errorf("%w: unsupported rule parts in %q", ErrInvalidRecurrence, value)
	}

	if opt.Count > 0 {
		count := opt.Count
		rule.Count = &count
	}
	if !opt.Until.IsZero() {
		until := opt.Until
		rule.EndDate = &until
	}

	if len(opt.Byweekday) > 0 {
		if rule.Frequency != Weekly {
			return nil, fmt.Errorf("%w: weekdays are only supported for weekly rules", ErrInvalidRecurrence)
		}
		for _, wd := range opt.Byweekday {
			day := time.Weekday((wd.Day() + 1) % 7)
			if wd != rruleWeekdays[day] {
				return nil, fmt.Errorf("%w: ordinal weekdays are not supported", ErrInvalidRecurrence)
			}
			rule.DaysOfWeek = append(rule.DaysOfWeek, day)
		}
	}

	switch len(opt.Bymonthday) {
	case 0:
	case 1:
		day := opt.Bymonthday[0]
		rule.DayOfMonth = &day
	default:
		return nil, fmt.Errorf("%w: several days of month are not supported", ErrInvalidRecurrence)
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

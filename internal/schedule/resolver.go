// Package schedule resolves recurring weekly templates and per-day
// overrides into concrete bookable (date, time) slots. Everything here is
// pure: no I/O, no global clock.
package schedule

import (
	"sort"
	"strconv"
	"time"

	"github.com/mkashlan/muallim/internal/model"
)

// Slot is one concrete bookable occurrence.
type Slot struct {
	Date time.Time `json:"date"` // midnight in the operating location
	Time string    `json:"time"`
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextWeekday returns the smallest date >= ref whose weekday is w. When
// ref itself falls on w the distance is zero.
func NextWeekday(ref time.Time, w time.Weekday) time.Time {
	ref = DateOnly(ref)
	days := (int(w) - int(ref.Weekday()) + 7) % 7
	return ref.AddDate(0, 0, days)
}

// ExpandWeekly expands a weekly template into concrete slots for every
// matching day within [start, end] inclusive. Entries with unknown
// weekday keys or unparsable times are skipped.
func ExpandWeekly(ws model.WeeklySchedule, start, end time.Time) []Slot {
	start, end = DateOnly(start), DateOnly(end)

	var slots []Slot
	for key, times := range ws {
		weekday, ok := model.ParseWeekdayKey(key)
		if ok && len(times) > 0 {
			for date := NextWeekday(start, weekday); !date.After(end); date = date.AddDate(0, 0, 7) {
				for _, t := range times {
					if ValidClock(t) {
						slots = append(slots, Slot{Date: date, Time: t})
					}
				}
			}
		}
	}
	return Sorted(slots)
}

// ExpandOverrides maps each day-of-month key to the literal date within
// the given month. Keys that do not name a day of that month (for
// example "31" in February) are skipped.
func ExpandOverrides(ov model.DayOverrides, year int, month time.Month, loc *time.Location) []Slot {
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()

	var slots []Slot
	for key, times := range ov {
		day, err := strconv.Atoi(key)
		if err != nil || day < 1 || day > daysInMonth {
			continue
		}
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		for _, t := range times {
			if ValidClock(t) {
				slots = append(slots, Slot{Date: date, Time: t})
			}
		}
	}
	return Sorted(slots)
}

// Merge combines slot lists, dropping duplicates that resolve to the same
// date and minute. Overrides are additive: merging never removes a slot.
func Merge(groups ...[]Slot) []Slot {
	seen := make(map[string]struct{})
	var merged []Slot
	for _, group := range groups {
		for _, s := range group {
			minutes, err := ClockMinutes(s.Time)
			if err != nil {
				continue
			}
			key := s.Date.Format(time.DateOnly) + "#" + strconv.Itoa(minutes)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, s)
		}
	}
	return Sorted(merged)
}

// Sorted orders slots by date, then by time of day.
func Sorted(slots []Slot) []Slot {
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		mi, _ := ClockMinutes(slots[i].Time)
		mj, _ := ClockMinutes(slots[j].Time)
		return mi < mj
	})
	return slots
}

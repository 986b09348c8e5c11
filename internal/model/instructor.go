package model

import "time"

type ScheduleStatus string

const (
	ScheduleStatusUnset    ScheduleStatus = "unset"
	ScheduleStatusPending  ScheduleStatus = "pending"
	ScheduleStatusApproved ScheduleStatus = "approved"
	ScheduleStatusRejected ScheduleStatus = "rejected"
)

// WeeklySchedule maps a weekday key ("sunday".."saturday") to the list of
// time-of-day strings the instructor teaches on that weekday.
type WeeklySchedule map[string][]string

// DayOverrides maps a day-of-month key ("1".."31") to one-off time slots
// for that day of the currently displayed month. Overrides bypass the
// weekly template and its approval gate.
type DayOverrides map[string][]string

// WeekdayKeys lists the fixed weekly schedule keys in calendar order.
var WeekdayKeys = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

var weekdayByKey = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdayKey resolves a weekly schedule key to its time.Weekday.
func ParseWeekdayKey(key string) (time.Weekday, bool) {
	w, ok := weekdayByKey[key]
	return w, ok
}

type Instructor struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Specialty      string         `json:"specialty"`
	WeeklySchedule WeeklySchedule `json:"weekly_schedule"`
	ScheduleStatus ScheduleStatus `json:"schedule_status"`
	Overrides      DayOverrides   `json:"availability_overrides"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

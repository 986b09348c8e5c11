package schedule

import (
	"fmt"
	"regexp"
	"strconv"
)

// Instructors enter times either as 24-hour "HH:MM" or as 12-hour
// "HH:MM ص" / "HH:MM م" (Arabic AM/PM). Both forms canonicalize to
// minutes since midnight so slots compare and dedupe correctly even when
// the weekly template and an override spell the same time differently.
var clockPattern = regexp.MustCompile(`^([0-9]{1,2}):([0-5][0-9])(?: (ص|م))?$`)

// ClockMinutes parses a time-of-day string into minutes since midnight.
func ClockMinutes(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("malformed time %q", s)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("malformed hour in %q", s)
	}
	minute, _ := strconv.Atoi(m[2])

	switch m[3] {
	case "":
		if hour > 23 {
			return 0, fmt.Errorf("hour out of range in %q", s)
		}
		return hour*60 + minute, nil
	case "ص": // morning
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", s)
		}
		return (hour%12)*60 + minute, nil
	default: // "م", afternoon
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", s)
		}
		return (hour%12+12)*60 + minute, nil
	}
}

// ValidClock reports whether s is an acceptable time-of-day string.
func ValidClock(s string) bool {
	_, err := ClockMinutes(s)
	return err == nil
}

// Package timeslot renders, splits, groups and orders the "h:mm AM/PM" time
// range labels used by room availability, teacher availability and batch
// class times.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minutesPerDay = 24 * 60

	// DefaultInterval is the slot width in minutes used when none is given.
	DefaultInterval = 30

	rangeSeparator = " - "
)

// ParseClock converts an "h:mm AM/PM" clock time into minutes since midnight.
// Missing or non-numeric parts count as zero, so malformed input never fails.
func ParseClock(clock string) int {
	fields := strings.Fields(clock)
	if len(fields) == 0 {
		return 0
	}
	hourPart, minutePart, _ := strings.Cut(fields[0], ":")
	hours := atoiOrZero(hourPart)
	minutes := atoiOrZero(minutePart)

	modifier := ""
	if len(fields) > 1 {
		modifier = fields[1]
	}
	switch {
	case modifier == "AM" && hours == 12:
		hours = 0
	case modifier == "PM" && hours != 12:
		hours += 12
	}
	return hours*60 + minutes
}

// FormatClock renders minutes since midnight as "h:mm AM/PM".
func FormatClock(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	hour := minutes / 60
	minute := minutes % 60
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, ampm)
}

// FormatRange renders a start/end pair as "<start> - <end>".
func FormatRange(start, end int) string {
	return FormatClock(start) + rangeSeparator + FormatClock(end)
}

// parseRangeLenient splits "<start> - <end>" and parses both sides leniently.
func parseRangeLenient(timeRange string) (int, int) {
	startPart, endPart, _ := strings.Cut(timeRange, rangeSeparator)
	return ParseClock(startPart), ParseClock(endPart)
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

package timeslot

import "sort"

// weekdays follows the Saturday-first academic week used across the center.
var weekdays = [...]string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Weekdays returns the weekday names, Saturday first.
func Weekdays() []string {
	out := make([]string, len(weekdays))
	copy(out, weekdays[:])
	return out
}

// DayIndex returns the display position of day, or -1 for unknown names.
func DayIndex(day string) int {
	for i, name := range weekdays {
		if name == day {
			return i
		}
	}
	return -1
}

// IsWeekday reports whether day is one of the seven weekday names.
func IsWeekday(day string) bool {
	return DayIndex(day) >= 0
}

// SortDays returns a copy of groups in weekday display order. Unknown day
// names are placed last in their original order.
func SortDays(groups []DaySlot) []DaySlot {
	out := make([]DaySlot, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return dayRank(out[i].Day) < dayRank(out[j].Day)
	})
	return out
}

func dayRank(day string) int {
	if idx := DayIndex(day); idx >= 0 {
		return idx
	}
	return len(weekdays)
}

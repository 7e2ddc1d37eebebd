package timeslot

import "strings"

// SplitTimeRange cuts "<start> - <end>" into consecutive labels of interval
// minutes covering [start, end). The final label is clipped to end when the
// range is not an exact multiple of interval. A non-positive interval falls
// back to DefaultInterval and an empty or inverted range yields no labels.
func SplitTimeRange(timeRange string, interval int) []string {
	if interval <= 0 {
		interval = DefaultInterval
	}
	start, end := parseRangeLenient(timeRange)

	slots := make([]string, 0, slotCapacity(start, end, interval))
	for t := start; t < end; {
		next := end
		if interval < end-t {
			next = t + interval
		}
		slots = append(slots, FormatRange(t, next))
		t = next
	}
	return slots
}

// SplitDayRange splits the range part of "<Day> <start> - <end>" and prefixes
// every resulting label with the day again. Entries without a day token
// produce no labels.
func SplitDayRange(entry string, interval int) []string {
	day, timeRange, ok := splitDayEntry(entry)
	if !ok {
		return []string{}
	}
	slots := SplitTimeRange(timeRange, interval)
	for i, slot := range slots {
		slots[i] = day + " " + slot
	}
	return slots
}

func slotCapacity(start, end, interval int) int {
	if end <= start {
		return 0
	}
	span := end - start
	if interval >= span {
		return 1
	}
	return span/interval + min(span%interval, 1)
}

// splitDayEntry separates the leading day token from the remaining payload,
// collapsing the payload's whitespace to single spaces.
func splitDayEntry(entry string) (string, string, bool) {
	day, rest, found := strings.Cut(entry, " ")
	if !found {
		return "", "", false
	}
	return day, strings.Join(strings.Fields(rest), " "), true
}

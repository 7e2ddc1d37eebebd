package timeslot

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidTimeRange is returned by the strict parsers for malformed input.
var ErrInvalidTimeRange = errors.New("invalid time range")

var clockPattern = regexp.MustCompile(`^(1[0-2]|[1-9]):([0-5][0-9]) (AM|PM)$`)

// Range is a half-open [Start, End) interval in minutes since midnight.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String renders the range in the "<start> - <end>" label format.
func (r Range) String() string {
	return FormatRange(r.Start, r.End)
}

// Overlaps reports whether the two half-open ranges share at least a minute.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// ParseClockStrict parses "h:mm AM/PM" rejecting anything else.
func ParseClockStrict(clock string) (int, error) {
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidTimeRange, clock)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	switch {
	case m[3] == "AM" && hours == 12:
		hours = 0
	case m[3] == "PM" && hours != 12:
		hours += 12
	}
	return hours*60 + minutes, nil
}

// ParseTimeRangeStrict parses "<start> - <end>" and requires start < end.
func ParseTimeRangeStrict(timeRange string) (Range, error) {
	parts := strings.Split(timeRange, rangeSeparator)
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, timeRange)
	}
	start, err := ParseClockStrict(parts[0])
	if err != nil {
		return Range{}, err
	}
	end, err := ParseClockStrict(parts[1])
	if err != nil {
		return Range{}, err
	}
	if start >= end {
		return Range{}, fmt.Errorf("%w: start must precede end in %q", ErrInvalidTimeRange, timeRange)
	}
	return Range{Start: start, End: end}, nil
}

// DayRange is a parsed "<Day> <start> - <end>" entry.
type DayRange struct {
	Day   string `json:"day"`
	Range Range  `json:"range"`
}

// String renders the entry back into its day-qualified label.
func (d DayRange) String() string {
	return d.Day + " " + d.Range.String()
}

// ParseDayRangeStrict parses a day-qualified range and checks the day name.
func ParseDayRangeStrict(entry string) (DayRange, error) {
	day, timeRange, found := strings.Cut(entry, " ")
	if !found {
		return DayRange{}, fmt.Errorf("%w: missing day in %q", ErrInvalidTimeRange, entry)
	}
	if !IsWeekday(day) {
		return DayRange{}, fmt.Errorf("%w: unknown day %q", ErrInvalidTimeRange, day)
	}
	r, err := ParseTimeRangeStrict(timeRange)
	if err != nil {
		return DayRange{}, err
	}
	return DayRange{Day: day, Range: r}, nil
}

// ParseDayRanges parses every entry strictly, stopping at the first failure.
func ParseDayRanges(entries []string) ([]DayRange, error) {
	out := make([]DayRange, 0, len(entries))
	for _, entry := range entries {
		dr, err := ParseDayRangeStrict(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, nil
}

// Covered reports whether target is fully inside one of the given ranges on
// the same day, after merging adjacent or overlapping ranges.
func Covered(target DayRange, available []DayRange) bool {
	for _, r := range MergeDay(target.Day, available) {
		if r.Contains(target.Range) {
			return true
		}
	}
	return false
}

// MergeDay returns the ranges declared for day merged into disjoint ranges
// sorted by start.
func MergeDay(day string, entries []DayRange) []Range {
	var ranges []Range
	for _, e := range entries {
		if e.Day == day {
			ranges = append(ranges, e.Range)
		}
	}
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	merged := []Range{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}


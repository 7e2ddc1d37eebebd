package timeslot

import "sort"

const (
	businessDayRange    = "9:00 AM - 9:00 PM"
	businessDayInterval = 30
)

// The canonical table is generated by the splitter. It is written once here
// and only read afterwards.
var (
	canonicalSlots = SplitTimeRange(businessDayRange, businessDayInterval)
	canonicalIndex = indexSlots(canonicalSlots)
)

// BusinessDay returns the window covered by CanonicalSlots.
func BusinessDay() Range {
	start, end := parseRangeLenient(businessDayRange)
	return Range{Start: start, End: end}
}

// CanonicalSlots returns a copy of every 30-minute label of the business day,
// 9:00 AM through 9:00 PM, in chronological order.
func CanonicalSlots() []string {
	out := make([]string, len(canonicalSlots))
	copy(out, canonicalSlots)
	return out
}

// CanonicalIndex reports the position of label in the canonical table, or -1.
func CanonicalIndex(label string) int {
	if idx, ok := canonicalIndex[label]; ok {
		return idx
	}
	return -1
}

// SortTimeSlots returns a copy of labels ordered by canonical position.
// Unknown labels rank at -1, so they come first and keep their input order.
func SortTimeSlots(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	sort.SliceStable(out, func(i, j int) bool {
		return CanonicalIndex(out[i]) < CanonicalIndex(out[j])
	})
	return out
}

func indexSlots(slots []string) map[string]int {
	index := make(map[string]int, len(slots))
	for i, slot := range slots {
		index[slot] = i
	}
	return index
}

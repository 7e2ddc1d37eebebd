package timeslot

// DaySlot collects the time labels that belong to one weekday.
type DaySlot struct {
	Day   string   `json:"day"`
	Times []string `json:"times"`
}

// GroupByDay groups "<Day> <start> - <end>" entries by their day token.
// Days appear in first-seen order and times keep their input order. Entries
// without a space carry no day token and are skipped.
func GroupByDay(entries []string) []DaySlot {
	groups := make([]DaySlot, 0)
	index := make(map[string]int)
	for _, entry := range entries {
		day, payload, ok := splitDayEntry(entry)
		if !ok {
			continue
		}
		pos, seen := index[day]
		if !seen {
			pos = len(groups)
			index[day] = pos
			groups = append(groups, DaySlot{Day: day, Times: []string{}})
		}
		groups[pos].Times = append(groups[pos].Times, payload)
	}
	return groups
}

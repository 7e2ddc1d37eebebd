package dto

// ScheduleEntry is a batch placed in a grid cell.
type ScheduleEntry struct {
	BatchID     string `json:"batchId"`
	BatchName   string `json:"batchName"`
	Subject     string `json:"subject"`
	TeacherName string `json:"teacherName"`
	RoomName    string `json:"roomName"`
}

// ScheduleCell is one canonical slot of a weekday in the weekly grid. A room
// grid holds at most one entry per cell.
type ScheduleCell struct {
	Time    string          `json:"time"`
	Entries []ScheduleEntry `json:"entries"`
}

// ScheduleDay holds every canonical slot for one weekday.
type ScheduleDay struct {
	Day   string         `json:"day"`
	Cells []ScheduleCell `json:"cells"`
}

// OutsideEntry is a class time that runs past the grid's business day. Time
// is the full class time, not only the part outside the grid.
type OutsideEntry struct {
	Day   string        `json:"day"`
	Time  string        `json:"time"`
	Batch ScheduleEntry `json:"batch"`
}

// ScheduleGridResponse is the weekly timetable for a center or room.
type ScheduleGridResponse struct {
	RoomID  *string        `json:"roomId,omitempty"`
	Slots   []string       `json:"slots"`
	Days    []ScheduleDay  `json:"days"`
	Outside []OutsideEntry `json:"outside"`
}

// AvailableTeacher is a teacher free for a requested class time.
type AvailableTeacher struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Subject  string `json:"subject"`
}

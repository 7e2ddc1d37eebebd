package models

import (
	"time"

	"github.com/lib/pq"
)

// Room is a classroom that batches are scheduled into.
type Room struct {
	ID             string         `db:"id" json:"id"`
	CenterID       string         `db:"center_id" json:"center_id"`
	Name           string         `db:"name" json:"name"`
	Capacity       int            `db:"capacity" json:"capacity"`
	AvailableTimes pq.StringArray `db:"available_times" json:"available_times"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// RoomFilter scopes room listings.
type RoomFilter struct {
	CenterID  string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// RoomSlot is one split slot of a room and the batch occupying it, if any.
type RoomSlot struct {
	Time      string  `json:"time"`
	Occupied  bool    `json:"occupied"`
	BatchID   *string `json:"batch_id,omitempty"`
	BatchName *string `json:"batch_name,omitempty"`
}

// RoomSlotDay groups a room's slots for one weekday.
type RoomSlotDay struct {
	Day   string     `json:"day"`
	Slots []RoomSlot `json:"slots"`
}

// RoomSlots is the occupancy view of a room.
type RoomSlots struct {
	RoomID   string        `json:"room_id"`
	RoomName string        `json:"room_name"`
	Interval int           `json:"interval"`
	Days     []RoomSlotDay `json:"days"`
}

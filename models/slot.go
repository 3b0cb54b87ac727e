package models

import "fmt"

// TimeSlot is one canonical daily teaching window, shared by every tutor.
// Start and End are minutes from midnight (e.g. 420 for 7:00 AM).
type TimeSlot struct {
	ID    string `bson:"id" json:"id"`
	Start int    `bson:"start" json:"start"`
	End   int    `bson:"end" json:"end"`
	Label string `bson:"label" json:"label"` // e.g. "07:00-08:00"
}

// Validate checks the slot's time window.
func (ts TimeSlot) Validate() error {
	if ts.ID == "" {
		return fmt.Errorf("timeslot id is required")
	}
	if ts.Start < 0 || ts.End > 24*60 {
		return fmt.Errorf("timeslot %s is outside the day: [%d, %d]", ts.ID, ts.Start, ts.End)
	}
	if ts.End <= ts.Start {
		return fmt.Errorf("timeslot %s has end <= start: [%d, %d]", ts.ID, ts.Start, ts.End)
	}
	return nil
}

// SlotStatus is the live classification of a (tutor, date, slot) key.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"   // published and not booked
	SlotUnavailable SlotStatus = "unavailable" // tutor has not published the slot
	SlotTaken       SlotStatus = "taken"       // an active booking occupies the key
)

// SlotStatusEntry is one cell of a tutor's day grid.
type SlotStatusEntry struct {
	SlotID string     `json:"slotId"`
	Start  int        `json:"start"`
	End    int        `json:"end"`
	Label  string     `json:"label"`
	Status SlotStatus `json:"status"`
}

// DefaultCatalog returns the seed catalog of hourly windows from 07:00 to 22:00.
func DefaultCatalog() []TimeSlot {
	slots := make([]TimeSlot, 0, 15)
	for h := 7; h < 22; h++ {
		slots = append(slots, TimeSlot{
			ID:    fmt.Sprintf("slot-%02d", h),
			Start: h * 60,
			End:   (h + 1) * 60,
			Label: fmt.Sprintf("%02d:00-%02d:00", h, h+1),
		})
	}
	return slots
}

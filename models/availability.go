package models

// Availability marks a tutor as willing to teach a catalog slot on a date.
// At most one row may exist per (tutorId, date, slotId).
type Availability struct {
	TutorID string `bson:"tutor_id" json:"tutorId"`
	Date    string `bson:"date" json:"date"` // "YYYY-MM-DD"
	SlotID  string `bson:"slot_id" json:"slotId"`
}

package models

// CreditAccount tracks the remaining prepaid booking credits of one combo
// order. A booking backed by the combo debits exactly one unit at creation
// and is credited back if the booking dies before approval.
type CreditAccount struct {
	StudentID      string `bson:"student_id" json:"studentId"`
	ComboOrderID   string `bson:"combo_order_id" json:"comboOrderId"`
	RemainingSlots int    `bson:"remaining_slots" json:"remainingSlots"`
}

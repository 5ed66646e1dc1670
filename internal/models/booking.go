package models

import "time"

type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
	BookerID int64         `json:"booker_id"`
	ItemID   int64         `json:"item_id"`

	// Booker и Item заполняются репозиторием при чтении.
	Booker *User `json:"booker,omitempty"`
	Item   *Item `json:"item,omitempty"`
}

// IsApproved reports whether the host approved the booking.
func (b *Booking) IsApproved() bool {
	return b.Status == StatusApproved
}

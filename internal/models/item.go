package models

import "time"

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	HostID      int64  `json:"host_id"`
	RequestID   *int64 `json:"request_id,omitempty"`
}

// ItemPatch holds optional fields for a partial update by the host.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

type Comment struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	ItemID     int64     `json:"item_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// ItemDetails is an item enriched for display.
type ItemDetails struct {
	Item        Item
	Comments    []Comment
	LastBooking *Booking
	NextBooking *Booking
}

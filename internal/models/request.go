package models

import "time"

type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	UserID      int64     `json:"user_id"`
	Created     time.Time `json:"created"`
}

// RequestItem links an item created in response to a request.
type RequestItem struct {
	ID        int64     `json:"id"`
	RequestID int64     `json:"request_id"`
	ItemID    int64     `json:"item_id"`
	Created   time.Time `json:"created"`
}

// RequestDetails is a request together with the items offered for it.
type RequestDetails struct {
	Request ItemRequest
	Items   []Item
}

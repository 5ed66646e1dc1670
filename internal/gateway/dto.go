package gateway

import "shareit/internal/models"

type userRequest struct {
	Name  string `json:"name" validate:"notblank,max=255"`
	Email string `json:"email" validate:"notblank,email,max=255"`
}

type itemRequest struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	Description string `json:"description" validate:"notblank,max=255"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId"`
}

type bookingRequest struct {
	ItemID *int64           `json:"itemId" validate:"required"`
	Start  *models.DateTime `json:"start" validate:"required,futureorpresent"`
	End    *models.DateTime `json:"end" validate:"required,futureorpresent"`
}

type itemWantedRequest struct {
	Description string `json:"description" validate:"notblank,max=255"`
}

type commentRequest struct {
	Text string `json:"text" validate:"notblank"`
}

package models

import "time"

// BookingStatus is the lifecycle status stored on a booking.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

const (
	// HeaderUserID carries the caller identity between gateway and server.
	HeaderUserID = "X-Sharer-User-Id"

	// HeaderRequestID correlates log lines across gateway and server.
	HeaderRequestID = "X-Request-ID"

	// DateTimeLayout is the wire format of every timestamp (no zone offset).
	DateTimeLayout = "2006-01-02T15:04:05"

	// LastBookingOffset excludes bookings that ended within the last day from "last booking".
	LastBookingOffset = 24 * time.Hour

	// MaxTextLength limits names, descriptions and emails.
	MaxTextLength = 255
)

package models

import (
	"fmt"
	"strconv"
	"time"
)

// BookingState selects a window of bookings for list queries.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
)

// BookingStates lists every state in display order.
var BookingStates = []BookingState{StateAll, StateWaiting, StateRejected, StateCurrent, StatePast, StateFuture}

// ParseBookingState is case-sensitive; an empty value means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	if raw == "" {
		return StateAll, nil
	}
	for _, s := range BookingStates {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("Unknown state: %s", raw)
}

// Matches reports whether the booking falls into the state window at now.
// Comparison is done at second precision, the same as the SQL store.
func (s BookingState) Matches(b *Booking, now time.Time) bool {
	ts := now.Unix()
	switch s {
	case StateAll:
		return true
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	case StateCurrent:
		return b.IsApproved() && b.Start.Unix() < ts && b.End.Unix() > ts
	case StatePast:
		return b.IsApproved() && b.End.Unix() < ts
	case StateFuture:
		return b.IsApproved() && b.Start.Unix() > ts
	default:
		return false
	}
}

// DateTime is a local timestamp serialized without a zone offset.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// ParseDateTime accepts the wire layout with optional fractional seconds.
func ParseDateTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", raw, "yyyy-MM-dd'T'HH:mm:ss")
	}
	return t, nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.In(time.Local).Format(DateTimeLayout))), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	unquoted, err := strconv.Unquote(raw)
	if err != nil {
		return fmt.Errorf("invalid date %s", raw)
	}
	t, err := ParseDateTime(unquoted)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

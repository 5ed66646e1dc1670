package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	handler := func(event *Event) error {
		received = event
		callCount++
		return nil
	}

	bus.Subscribe(EventBookingCreated, handler)

	payload := BookingEventPayload{BookingID: 7, Status: "WAITING"}
	if err := bus.PublishJSON(EventBookingCreated, payload); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}

	if received.Type != EventBookingCreated {
		t.Errorf("expected type %s, got %s", EventBookingCreated, received.Type)
	}

	if received.CreatedAt.IsZero() {
		t.Errorf("expected CreatedAt to be set")
	}

	var decoded BookingEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if decoded.BookingID != 7 || decoded.Status != "WAITING" {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	if err := bus.Publish(&Event{Type: "event"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusHandlerError(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	var secondCalled bool

	bus.Subscribe("event", func(_ *Event) error { return boom })
	bus.Subscribe("event", func(_ *Event) error { secondCalled = true; return nil })

	if err := bus.Publish(&Event{Type: "event"}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if !secondCalled {
		t.Errorf("expected remaining handlers to run after an error")
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	if err := bus.Publish(&Event{Type: "unknown"}); err != nil {
		t.Errorf("Publish failed: %v", err)
	}
	if err := bus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventBookingApproved, BookingEventPayload{}); err != nil {
		t.Errorf("nil bus should be a no-op, got %v", err)
	}
}

func TestSubscribeBookingAudit(t *testing.T) {
	bus := NewEventBus()
	logger := zerolog.Nop()
	SubscribeBookingAudit(bus, &logger)

	for _, eventType := range BookingEvents {
		payload := BookingEventPayload{BookingID: 1, ItemID: 2, BookerID: 3, Start: time.Now()}
		if err := bus.PublishJSON(eventType, payload); err != nil {
			t.Errorf("%s: unexpected error %v", eventType, err)
		}
	}

	if err := bus.Publish(&Event{Type: EventBookingRejected, Payload: []byte("{broken")}); err == nil {
		t.Errorf("expected decode error for a malformed payload")
	}
}

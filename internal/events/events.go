package events

import (
	"encoding/json"
	"sync"
	"time"

	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	EventBookingCreated  = "booking_created"
	EventBookingApproved = "booking_approved"
	EventBookingRejected = "booking_rejected"
)

// BookingEvents lists every booking event type.
var BookingEvents = []string{EventBookingCreated, EventBookingApproved, EventBookingRejected}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID int64     `json:"booking_id"`
	BookerID  int64     `json:"booker_id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name"`
	HostID    int64     `json:"host_id"`
	Status    string    `json:"status"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	ChangedBy int64     `json:"changed_by,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type and returns the first handler error.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var firstErr error
	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}

// SubscribeBookingAudit logs every booking transition and counts it in metrics.
func SubscribeBookingAudit(bus *EventBus, logger *zerolog.Logger) {
	l := logger.With().Str("component", "events").Logger()
	for _, eventType := range BookingEvents {
		bus.Subscribe(eventType, func(event *Event) error {
			var p BookingEventPayload
			if err := json.Unmarshal(event.Payload, &p); err != nil {
				l.Error().Err(err).Str("event", event.Type).Msg("failed to decode booking event")
				return err
			}
			metrics.IncBookingTransition(event.Type)
			l.Info().
				Str("event", event.Type).
				Int64("booking_id", p.BookingID).
				Int64("item_id", p.ItemID).
				Int64("booker_id", p.BookerID).
				Str("status", p.Status).
				Msg("booking transition")
			return nil
		})
	}
}

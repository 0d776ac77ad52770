package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventBookingCreated    = "booking_created"
	EventFeedbackSubmitted = "feedback_submitted"
	EventUserRegistered    = "user_registered"
	EventUserLoggedIn      = "user_logged_in"
	EventUserLoggedOut     = "user_logged_out"
)

// BookingPayload is the booking snapshot sent to subscribers.
type BookingPayload struct {
	BookingID        string    `json:"booking_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	TestType         string    `json:"test_type"`
	Price            int64     `json:"price"`
	PreferredDate    string    `json:"preferred_date"`
	PreferredTime    string    `json:"preferred_time"`
	CollectionMethod string    `json:"collection_method"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type FeedbackPayload struct {
	FeedbackID string `json:"feedback_id"`
	BookingID  string `json:"booking_id,omitempty"`
	Rating     string `json:"rating"`
}

type SessionPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors are logged to logger when it is set.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && b.logger != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
		}
	}
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

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// Package events carries the domain events exchanged between modules and the
// in-process bus that dispatches them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/domain"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName uniquely identifies the event type, e.g. "leads.created".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp common to all events. Embed it and
// implement EventName on the concrete type.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events it subscribed to.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus decouples event producers from subscribers.
type Bus interface {
	// Publish dispatches asynchronously; handler errors are logged, not returned.
	Publish(ctx context.Context, event Event)

	// PublishSync waits for every handler and returns the first error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the name returned by Event.EventName.
	Subscribe(eventName string, handler Handler)
}

// LeadCreated is published when the intake pipeline creates a lead on first contact.
type LeadCreated struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	ContactID   string    `json:"contactId"`
	DisplayName string    `json:"displayName"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadClassified is published after a lead's classification fields were updated.
type LeadClassified struct {
	BaseEvent
	LeadID         uuid.UUID             `json:"leadId"`
	ContactID      string                `json:"contactId"`
	DisplayName    string                `json:"displayName"`
	MessageText    string                `json:"messageText"`
	Classification domain.Classification `json:"classification"`
}

func (e LeadClassified) EventName() string { return "leads.classified" }

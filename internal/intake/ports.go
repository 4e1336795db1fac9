// Package intake implements the message-intake pipeline: it receives inbound
// channel events and drives the lead store, classifier, onboarding sequence,
// and outbound replies in the required order.
package intake

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// InboundEvent is one message delivered by the channel transport.
type InboundEvent struct {
	// SourceAddress is the raw contact address as the channel reports it.
	SourceAddress string
	// PushName is the contact's display name, when the channel provides one.
	PushName string
	// Text is the extracted message text; empty for media-only events.
	Text string
	// HasMedia marks events carrying non-textual content.
	HasMedia bool
	// EventRef identifies the source message for read acknowledgement.
	EventRef string
	// IsFromSelf marks echoes of our own outbound messages.
	IsFromSelf bool
	// IsBroadcast marks broadcast and status-feed events.
	IsBroadcast bool
}

// LeadStore is the pipeline's view of lead persistence. Implemented by
// the leads repository; faked in tests. FindOrCreate must report created
// true for exactly one caller per contact, even under concurrent calls:
// that flag is the pipeline's only run-once signal.
type LeadStore interface {
	FindOrCreate(ctx context.Context, contactID, displayName string) (domain.Lead, bool, error)
	AppendMessage(ctx context.Context, contactID, text string, sender domain.Sender) (domain.Message, error)
	UpdateClassification(ctx context.Context, contactID string, c domain.Classification) (domain.Lead, error)
	UpdateStatus(ctx context.Context, contactID, status string) (domain.Lead, error)
}

// Transport sends messages and acknowledgements on the contact channel.
// Implemented by the channel client.
type Transport interface {
	SendText(ctx context.Context, destination, text string) error
	MarkRead(ctx context.Context, eventRef string) error
	SetTyping(ctx context.Context, destination string, typing bool) error
}

// Classifier produces a classification for a message text. Implementations
// never fail; unavailable backends resolve to the fixed fallback.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Classification
}

// FollowUpScheduler schedules the one-shot check-in sent to leads that stay
// silent after onboarding.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, contactID string, runAt time.Time) error
}

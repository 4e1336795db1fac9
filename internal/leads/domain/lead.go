// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lead lifecycle state. Transitions new -> in_progress -> done
// are driven by operator actions; the intake pipeline only ever assigns the
// initial state on first contact.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ErrInvalidStatus is returned when a status value outside the closed set is used.
var ErrInvalidStatus = errors.New("invalid lead status")

// ValidStatus reports whether the value is one of the legal statuses.
func ValidStatus(value string) bool {
	switch Status(value) {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Sender identifies who produced a message.
type Sender string

const (
	SenderContact Sender = "contact"
	SenderSystem  Sender = "system"
)

// Closed sets for classification fields. Values outside these sets coming
// back from a classification backend are treated as a failed classification.
const (
	IntentBudget     = "budget"
	IntentScheduling = "scheduling"
	IntentSupport    = "support"
	IntentComplaint  = "complaint"
	IntentOther      = "other"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Defaults applied when a lead is created and used as the classification fallback.
const (
	DefaultIntent    = IntentOther
	DefaultSentiment = SentimentNeutral
	DefaultPriority  = PriorityMedium
)

// Classification is the transient intent/sentiment/priority triple produced
// per inbound message. It is merged into the lead, never stored standalone.
type Classification struct {
	Intent    string `json:"intent"`
	Sentiment string `json:"sentiment"`
	Priority  string `json:"priority"`
}

// FallbackClassification is the fixed safe result used when the external
// classifier is unavailable or returns an unusable response.
func FallbackClassification() Classification {
	return Classification{
		Intent:    DefaultIntent,
		Sentiment: DefaultSentiment,
		Priority:  DefaultPriority,
	}
}

// Valid reports whether every field is present and within its closed set.
func (c Classification) Valid() bool {
	return validIntent(c.Intent) && validSentiment(c.Sentiment) && validPriority(c.Priority)
}

func validIntent(value string) bool {
	switch value {
	case IntentBudget, IntentScheduling, IntentSupport, IntentComplaint, IntentOther:
		return true
	}
	return false
}

func validSentiment(value string) bool {
	switch value {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

func validPriority(value string) bool {
	switch value {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Lead is the durable record tracking one contact's classification and
// status over time. Exactly one lead exists per canonical contact id.
type Lead struct {
	ID                uuid.UUID
	ContactID         string
	DisplayName       string
	Intent            string
	Sentiment         string
	Priority          string
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastInteractionAt time.Time
}

// Message is one entry in a lead's append-only history, ordered by timestamp.
type Message struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Text      string
	Sender    Sender
	Timestamp time.Time
}

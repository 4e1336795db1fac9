package alert

import (
	"context"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

// Subscriber listens for classification events and alerts operators on
// high-priority leads.
type Subscriber struct {
	sender Sender
	log    *logger.Logger
}

func NewSubscriber(sender Sender, log *logger.Logger) *Subscriber {
	return &Subscriber{sender: sender, log: log}
}

// RegisterHandlers subscribes to the relevant domain events on the bus.
func (s *Subscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadClassified{}.EventName(), s)
	s.log.Info("alert subscriber registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (s *Subscriber) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadClassified:
		return s.handleLeadClassified(ctx, e)
	default:
		return nil
	}
}

func (s *Subscriber) handleLeadClassified(ctx context.Context, event events.LeadClassified) error {
	if event.Classification.Priority != domain.PriorityHigh {
		return nil
	}

	err := s.sender.SendHighPriorityAlert(ctx, HighPriorityAlertData{
		ContactID:   event.ContactID,
		DisplayName: event.DisplayName,
		Intent:      event.Classification.Intent,
		Sentiment:   event.Classification.Sentiment,
		MessageText: event.MessageText,
	})
	if err != nil {
		s.log.Error("failed to send high priority alert", "contact_id", event.ContactID, "error", err)
		return err
	}

	s.log.Info("high priority alert sent", "contact_id", event.ContactID, "intent", event.Classification.Intent)
	return nil
}

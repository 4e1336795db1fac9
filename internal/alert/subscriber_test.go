package alert

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
)

type recordingSender struct {
	alerts []HighPriorityAlertData
}

func (r *recordingSender) SendHighPriorityAlert(ctx context.Context, data HighPriorityAlertData) error {
	r.alerts = append(r.alerts, data)
	return nil
}

func classifiedEvent(priority string) events.LeadClassified {
	return events.LeadClassified{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      uuid.New(),
		ContactID:   "5511999999999",
		DisplayName: "Maria",
		MessageText: "preciso disso pra hoje!",
		Classification: domain.Classification{
			Intent:    domain.IntentSupport,
			Sentiment: domain.SentimentNegative,
			Priority:  priority,
		},
	}
}

func TestHighPriorityClassificationTriggersAlert(t *testing.T) {
	sender := &recordingSender{}
	sub := NewSubscriber(sender, logger.New("development"))

	if err := sub.Handle(context.Background(), classifiedEvent(domain.PriorityHigh)); err != nil {
		t.Fatal(err)
	}

	if len(sender.alerts) != 1 {
		t.Fatalf("alerts sent = %d, want 1", len(sender.alerts))
	}
	alert := sender.alerts[0]
	if alert.ContactID != "5511999999999" || alert.Intent != domain.IntentSupport {
		t.Errorf("alert data = %+v", alert)
	}
}

func TestLowerPrioritiesDoNotAlert(t *testing.T) {
	sender := &recordingSender{}
	sub := NewSubscriber(sender, logger.New("development"))

	for _, priority := range []string{domain.PriorityLow, domain.PriorityMedium} {
		if err := sub.Handle(context.Background(), classifiedEvent(priority)); err != nil {
			t.Fatal(err)
		}
	}

	if len(sender.alerts) != 0 {
		t.Errorf("alerts sent for non-high priorities: %d", len(sender.alerts))
	}
}

func TestUnrelatedEventsAreIgnored(t *testing.T) {
	sender := &recordingSender{}
	sub := NewSubscriber(sender, logger.New("development"))

	err := sub.Handle(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		ContactID: "5511999999999",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sender.alerts) != 0 {
		t.Errorf("alert sent for unrelated event")
	}
}

func TestRenderAlertTemplate(t *testing.T) {
	content, err := renderAlertTemplate(HighPriorityAlertData{
		ContactID:   "5511999999999",
		DisplayName: "Maria",
		Intent:      domain.IntentComplaint,
		Sentiment:   domain.SentimentNegative,
		MessageText: "quero cancelar tudo",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"5511999999999", "Maria", "complaint", "quero cancelar tudo"} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered alert missing %q", want)
		}
	}
}

func TestNoopSenderWhenAlertsDisabled(t *testing.T) {
	sender := NewSender(disabledAlertConfig{})
	if _, ok := sender.(NoopSender); !ok {
		t.Errorf("expected NoopSender for disabled alerts, got %T", sender)
	}
}

type disabledAlertConfig struct{}

func (disabledAlertConfig) GetSMTPHost() string         { return "" }
func (disabledAlertConfig) GetSMTPPort() int            { return 0 }
func (disabledAlertConfig) GetSMTPUsername() string     { return "" }
func (disabledAlertConfig) GetSMTPPassword() string     { return "" }
func (disabledAlertConfig) GetAlertFromName() string    { return "" }
func (disabledAlertConfig) GetAlertFromAddress() string { return "" }
func (disabledAlertConfig) GetAlertRecipient() string   { return "" }
func (disabledAlertConfig) IsAlertEnabled() bool        { return false }

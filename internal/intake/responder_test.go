package intake

import (
	"strings"
	"testing"

	"leadflow_backend/internal/leads/domain"
)

func TestSelectResponsePicksTemplateByIntent(t *testing.T) {
	for _, intent := range []string{
		domain.IntentBudget,
		domain.IntentScheduling,
		domain.IntentSupport,
		domain.IntentComplaint,
		domain.IntentOther,
	} {
		got := SelectResponse(domain.Classification{
			Intent:    intent,
			Sentiment: domain.SentimentNeutral,
			Priority:  domain.PriorityMedium,
		})
		if got != responseTemplates[intent] {
			t.Errorf("SelectResponse(%q) = %q, want the %q template", intent, got, intent)
		}
	}
}

func TestSelectResponseUnknownIntentFallsBack(t *testing.T) {
	got := SelectResponse(domain.Classification{Intent: "refund", Priority: domain.PriorityLow})
	if got != responseTemplates[domain.IntentOther] {
		t.Errorf("unknown intent reply = %q, want default template", got)
	}
}

func TestSelectResponseHighPriorityAnnotatesSameTemplate(t *testing.T) {
	c := domain.Classification{
		Intent:    domain.IntentComplaint,
		Sentiment: domain.SentimentNegative,
		Priority:  domain.PriorityHigh,
	}
	got := SelectResponse(c)

	if !strings.HasPrefix(got, urgentPrefix) {
		t.Errorf("high priority reply missing urgency note: %q", got)
	}
	if !strings.HasSuffix(got, responseTemplates[domain.IntentComplaint]) {
		t.Errorf("high priority changed the template choice: %q", got)
	}
}

func TestSelectResponseSentimentDoesNotChangeTemplate(t *testing.T) {
	base := domain.Classification{Intent: domain.IntentSupport, Priority: domain.PriorityMedium}
	for _, sentiment := range []string{domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative} {
		c := base
		c.Sentiment = sentiment
		if got := SelectResponse(c); got != responseTemplates[domain.IntentSupport] {
			t.Errorf("sentiment %q altered reply: %q", sentiment, got)
		}
	}
}

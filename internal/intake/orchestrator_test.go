package intake

import (
	"context"
	"strings"
	"sync"
	"testing"

	"leadflow_backend/internal/leads/domain"
)

const testContact = "5511999999999"

func budgetClassifier() *stubClassifier {
	return &stubClassifier{result: domain.Classification{
		Intent:    domain.IntentBudget,
		Sentiment: domain.SentimentNeutral,
		Priority:  domain.PriorityMedium,
	}}
}

func inbound(text string) InboundEvent {
	return InboundEvent{
		SourceAddress: testContact + "@s.whatsapp.net",
		PushName:      "Maria",
		Text:          text,
		EventRef:      "msg-1",
	}
}

func TestSelfEchoAndBroadcastAreDiscarded(t *testing.T) {
	for _, ev := range []InboundEvent{
		{SourceAddress: testContact, Text: "oi", IsFromSelf: true},
		{SourceAddress: testContact, Text: "oi", IsBroadcast: true},
	} {
		store := newMemStore()
		transport := newFakeTransport()
		o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

		o.HandleEvent(context.Background(), ev)

		if store.leadCount() != 0 {
			t.Errorf("expected zero store writes, got %d leads", store.leadCount())
		}
		if len(transport.sentTexts()) != 0 {
			t.Errorf("expected zero outbound sends, got %v", transport.sentTexts())
		}
	}
}

func TestMediaOnlyEventSendsNoticeWithoutWrites(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

	o.HandleEvent(context.Background(), InboundEvent{
		SourceAddress: testContact,
		HasMedia:      true,
	})

	sent := transport.sentTexts()
	if len(sent) != 1 || sent[0] != textOnlyNotice {
		t.Fatalf("expected single text-only notice, got %v", sent)
	}
	if store.leadCount() != 0 {
		t.Errorf("expected no lead creation for media-only event")
	}
}

func TestFirstMessageRunsOnboardingOnce(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	followUps := &fakeFollowUps{}
	o := newTestOrchestrator(store, transport, budgetClassifier(), followUps)

	o.HandleEvent(context.Background(), inbound("quanto custa?"))

	// greeting + presentation + expectations + classification reply
	if got := len(transport.sentTexts()); got != 4 {
		t.Fatalf("expected 4 outbound sends after first message, got %d: %v", got, transport.sentTexts())
	}

	lead, ok := store.lead(testContact)
	if !ok {
		t.Fatal("expected lead to be created")
	}
	if lead.Status != domain.StatusNew {
		t.Errorf("status = %q, want %q", lead.Status, domain.StatusNew)
	}
	if lead.Intent != domain.IntentBudget {
		t.Errorf("intent = %q, want %q", lead.Intent, domain.IntentBudget)
	}
	if len(followUps.scheduled) != 1 {
		t.Errorf("expected one follow-up scheduled, got %d", len(followUps.scheduled))
	}

	// Second message must not re-run onboarding.
	o.HandleEvent(context.Background(), inbound("pode ser amanhã?"))

	if got := len(transport.sentTexts()); got != 5 {
		t.Fatalf("expected exactly one more send after second message, got %d total", got)
	}
	if len(followUps.scheduled) != 1 {
		t.Errorf("follow-up scheduled again on second message")
	}
}

func TestAllOutboundSendsAreRecorded(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

	o.HandleEvent(context.Background(), inbound("quanto custa?"))

	messages, err := store.ListMessages(context.Background(), testContact)
	if err != nil {
		t.Fatal(err)
	}
	// 1 contact message + 3 onboarding + 1 reply.
	if len(messages) != 5 {
		t.Fatalf("expected 5 history entries, got %d", len(messages))
	}
	if messages[0].Sender != domain.SenderContact {
		t.Errorf("first message sender = %q, want contact", messages[0].Sender)
	}
	for _, msg := range messages[1:] {
		if msg.Sender != domain.SenderSystem {
			t.Errorf("outbound message recorded with sender %q", msg.Sender)
		}
	}
	reply := messages[len(messages)-1]
	if reply.Text != responseTemplates[domain.IntentBudget] {
		t.Errorf("reply text = %q, want budget template", reply.Text)
	}
}

func TestHistoryOrderingIsTimestampAscending(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

	o.HandleEvent(context.Background(), inbound("A"))
	o.HandleEvent(context.Background(), inbound("B"))

	messages, err := store.ListMessages(context.Background(), testContact)
	if err != nil {
		t.Fatal(err)
	}

	var contactTexts []string
	for _, msg := range messages {
		if msg.Sender == domain.SenderContact {
			contactTexts = append(contactTexts, msg.Text)
		}
	}
	if len(contactTexts) != 2 || contactTexts[0] != "A" || contactTexts[1] != "B" {
		t.Errorf("contact history = %v, want [A B]", contactTexts)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.Before(messages[i-1].Timestamp) {
			t.Errorf("history not ordered by timestamp at index %d", i)
		}
	}
}

func TestClassificationFallbackStillRepliesAndPersists(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	fallback := &stubClassifier{result: domain.FallbackClassification()}
	o := newTestOrchestrator(store, transport, fallback, nil)

	o.HandleEvent(context.Background(), inbound("quanto custa?"))

	lead, ok := store.lead(testContact)
	if !ok {
		t.Fatal("expected lead to exist")
	}
	if lead.Intent != domain.IntentOther || lead.Sentiment != domain.SentimentNeutral || lead.Priority != domain.PriorityMedium {
		t.Errorf("lead classification = %s/%s/%s, want fallback", lead.Intent, lead.Sentiment, lead.Priority)
	}

	sent := transport.sentTexts()
	if len(sent) == 0 || sent[len(sent)-1] != responseTemplates[domain.IntentOther] {
		t.Errorf("expected default reply template, got %v", sent)
	}

	messages, _ := store.ListMessages(context.Background(), testContact)
	if len(messages) == 0 {
		t.Error("inbound message was not persisted")
	}
}

func TestStoreFailureTriggersApology(t *testing.T) {
	store := newMemStore()
	store.failFindOrCreate = true
	transport := newFakeTransport()
	o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

	o.HandleEvent(context.Background(), inbound("oi"))

	sent := transport.sentTexts()
	if len(sent) != 1 || sent[0] != apologyNotice {
		t.Fatalf("expected single apology, got %v", sent)
	}
	if store.leadCount() != 0 {
		t.Errorf("expected no lead after store failure")
	}
}

func TestMarkReadFailureDoesNotAbortPipeline(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	transport.failReads = true
	o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

	o.HandleEvent(context.Background(), inbound("quanto custa?"))

	sent := transport.sentTexts()
	if len(sent) == 0 {
		t.Fatal("expected pipeline to continue past mark-read failure")
	}
	for _, text := range sent {
		if text == apologyNotice {
			t.Errorf("mark-read failure must not produce an apology")
		}
	}
	lead, ok := store.lead(testContact)
	if !ok || lead.Intent != domain.IntentBudget {
		t.Errorf("classification was not persisted after mark-read failure")
	}
}

func TestFailedReplySendIsNotRecorded(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	transport.failSends[responseTemplates[domain.IntentBudget]] = true
	o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

	o.HandleEvent(context.Background(), inbound("quanto custa?"))

	messages, _ := store.ListMessages(context.Background(), testContact)
	for _, msg := range messages {
		if strings.Contains(msg.Text, responseTemplates[domain.IntentBudget]) {
			t.Errorf("undelivered reply was recorded in history")
		}
	}
	for _, text := range transport.sentTexts() {
		if text == apologyNotice {
			t.Errorf("transient send failure must not produce an apology")
		}
	}
}

func TestConcurrentFirstMessagesOnboardOnce(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	followUps := &fakeFollowUps{}
	o := newTestOrchestrator(store, transport, budgetClassifier(), followUps)

	// Hold both pipelines at the onboarding decision: neither may proceed
	// until both have passed the upsert. If the decision were derived from
	// a separate history read instead of the upsert itself, both would
	// observe an empty history here and onboard twice.
	var gate sync.WaitGroup
	gate.Add(2)
	store.afterFindOrCreate = func() {
		gate.Done()
		gate.Wait()
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.HandleEvent(context.Background(), inbound("quanto custa?"))
		}()
	}
	wg.Wait()

	if store.leadCount() != 1 {
		t.Fatalf("expected one lead, got %d", store.leadCount())
	}

	onboardings := 0
	for _, text := range transport.sentTexts() {
		if text == onboardingPresentation {
			onboardings++
		}
	}
	if onboardings != 1 {
		t.Errorf("onboarding ran %d times for one lead, want exactly 1", onboardings)
	}
	if len(followUps.scheduled) != 1 {
		t.Errorf("follow-up scheduled %d times, want exactly 1", len(followUps.scheduled))
	}
}

func TestConcurrentEventsCreateOneLead(t *testing.T) {
	store := newMemStore()
	transport := newFakeTransport()
	o := newTestOrchestrator(store, transport, budgetClassifier(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.HandleEvent(context.Background(), inbound("oi"))
		}()
	}
	wg.Wait()

	if store.leadCount() != 1 {
		t.Fatalf("expected exactly one lead under concurrent intake, got %d", store.leadCount())
	}
}

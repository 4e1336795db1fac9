package intake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// memStore is a thread-safe in-memory LeadStore used by pipeline tests.
// Its FindOrCreate mirrors the repository's single-lead-per-contact guarantee.
type memStore struct {
	mu       sync.Mutex
	leads    map[string]*domain.Lead
	messages map[string][]domain.Message
	clock    time.Time

	failFindOrCreate bool
	failAppend       bool

	// afterFindOrCreate runs outside the lock after each upsert, letting
	// tests line up concurrent pipelines at the onboarding decision point.
	afterFindOrCreate func()
}

func newMemStore() *memStore {
	return &memStore{
		leads:    make(map[string]*domain.Lead),
		messages: make(map[string][]domain.Message),
		clock:    time.Now(),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *memStore) FindOrCreate(ctx context.Context, contactID, displayName string) (domain.Lead, bool, error) {
	lead, created, err := s.findOrCreate(contactID, displayName)
	if s.afterFindOrCreate != nil {
		s.afterFindOrCreate()
	}
	return lead, created, err
}

func (s *memStore) findOrCreate(contactID, displayName string) (domain.Lead, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFindOrCreate {
		return domain.Lead{}, false, errors.New("store unavailable")
	}

	if lead, ok := s.leads[contactID]; ok {
		return *lead, false, nil
	}

	now := s.tick()
	lead := &domain.Lead{
		ID:                uuid.New(),
		ContactID:         contactID,
		DisplayName:       displayName,
		Intent:            domain.DefaultIntent,
		Sentiment:         domain.DefaultSentiment,
		Priority:          domain.DefaultPriority,
		Status:            domain.StatusNew,
		CreatedAt:         now,
		UpdatedAt:         now,
		LastInteractionAt: now,
	}
	s.leads[contactID] = lead
	return *lead, true, nil
}

func (s *memStore) AppendMessage(ctx context.Context, contactID, text string, sender domain.Sender) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAppend {
		return domain.Message{}, errors.New("store unavailable")
	}

	lead, ok := s.leads[contactID]
	if !ok {
		return domain.Message{}, repository.ErrNotFound
	}

	now := s.tick()
	msg := domain.Message{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
	s.messages[contactID] = append(s.messages[contactID], msg)
	lead.LastInteractionAt = now
	lead.UpdatedAt = now
	return msg, nil
}

func (s *memStore) UpdateClassification(ctx context.Context, contactID string, c domain.Classification) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[contactID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.Intent = c.Intent
	lead.Sentiment = c.Sentiment
	lead.Priority = c.Priority
	lead.UpdatedAt = s.tick()
	return *lead, nil
}

func (s *memStore) UpdateStatus(ctx context.Context, contactID, status string) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.ValidStatus(status) {
		return domain.Lead{}, domain.ErrInvalidStatus
	}
	lead, ok := s.leads[contactID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.Status = domain.Status(status)
	lead.UpdatedAt = s.tick()
	return *lead, nil
}

func (s *memStore) ListMessages(ctx context.Context, contactID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.messages[contactID]...), nil
}

func (s *memStore) leadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func (s *memStore) lead(contactID string) (domain.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[contactID]
	if !ok {
		return domain.Lead{}, false
	}
	return *lead, true
}

// fakeTransport records channel interactions and can fail selectively.
type fakeTransport struct {
	mu        sync.Mutex
	sent      []sentMessage
	reads     []string
	typing    int
	failSends map[string]bool // fail sends whose text contains the key
	failReads bool
}

type sentMessage struct {
	Destination string
	Text        string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failSends: make(map[string]bool)}
}

func (t *fakeTransport) SendText(ctx context.Context, destination, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.failSends {
		if key != "" && strings.Contains(text, key) {
			return errors.New("send failed")
		}
	}
	t.sent = append(t.sent, sentMessage{Destination: destination, Text: text})
	return nil
}

func (t *fakeTransport) MarkRead(ctx context.Context, eventRef string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failReads {
		return errors.New("mark read failed")
	}
	t.reads = append(t.reads, eventRef)
	return nil
}

func (t *fakeTransport) SetTyping(ctx context.Context, destination string, typing bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.typing++
	return nil
}

func (t *fakeTransport) sentTexts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	texts := make([]string, len(t.sent))
	for i, m := range t.sent {
		texts[i] = m.Text
	}
	return texts
}

// stubClassifier returns a fixed classification.
type stubClassifier struct {
	result domain.Classification
}

func (s *stubClassifier) Classify(ctx context.Context, text string) domain.Classification {
	return s.result
}

// fakeFollowUps records scheduled follow-ups.
type fakeFollowUps struct {
	mu        sync.Mutex
	scheduled []string
}

func (f *fakeFollowUps) ScheduleFollowUp(ctx context.Context, contactID string, runAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, contactID)
	return nil
}

type intakeConfig struct {
	stepDelay time.Duration
}

func (c intakeConfig) GetOnboardingStepDelay() time.Duration { return c.stepDelay }

var _ config.IntakeConfig = intakeConfig{}

func newTestOnboarder(transport Transport) *Onboarder {
	o := NewOnboarder(transport, intakeConfig{}, logger.New("development"))
	o.sleep = func(time.Duration) {}
	return o
}

func newTestOrchestrator(store LeadStore, transport Transport, c Classifier, followUps FollowUpScheduler) *Orchestrator {
	return NewOrchestrator(
		store,
		transport,
		c,
		newTestOnboarder(transport),
		followUps,
		time.Hour,
		nil,
		logger.New("development"),
	)
}

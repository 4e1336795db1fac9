package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
)

// Orchestrator drives the intake pipeline for one inbound event at a time.
// It holds no per-event state: concurrent events are independent units of
// work, and all shared mutable state lives behind the LeadStore.
type Orchestrator struct {
	store         LeadStore
	transport     Transport
	classifier    Classifier
	onboarder     *Onboarder
	followUps     FollowUpScheduler
	followUpDelay time.Duration
	bus           events.Bus
	log           *logger.Logger
}

func NewOrchestrator(
	store LeadStore,
	transport Transport,
	classifier Classifier,
	onboarder *Onboarder,
	followUps FollowUpScheduler,
	followUpDelay time.Duration,
	bus events.Bus,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:         store,
		transport:     transport,
		classifier:    classifier,
		onboarder:     onboarder,
		followUps:     followUps,
		followUpDelay: followUpDelay,
		bus:           bus,
		log:           log,
	}
}

// HandleEvent processes one inbound event end to end. It never panics out
// and never returns an error: any failure past the filter stage resolves to
// a single best-effort apology to the contact.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev InboundEvent) {
	contactID := phone.Canonical(ev.SourceAddress)

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("intake pipeline panicked", "contact_id", contactID, "panic", fmt.Sprint(r))
			o.sendApology(ctx, contactID)
		}
	}()

	if err := o.process(ctx, contactID, ev); err != nil {
		o.log.Error("intake pipeline failed", "contact_id", contactID, "error", err)
		o.sendApology(ctx, contactID)
	}
}

func (o *Orchestrator) process(ctx context.Context, contactID string, ev InboundEvent) error {
	// 1. Filter: self-echoes and broadcast/status events produce nothing,
	// not even store writes.
	if ev.IsFromSelf || ev.IsBroadcast {
		o.log.Debug("discarding non-contact event", "from_self", ev.IsFromSelf, "broadcast", ev.IsBroadcast)
		return nil
	}

	// 2. Extract: media-only events get a notice and stop before any write.
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		if err := o.transport.SendText(ctx, contactID, textOnlyNotice); err != nil {
			o.log.ChannelError("text_only_notice", contactID, err)
		}
		return nil
	}

	// 3. Upsert. The created flag doubles as the first-message signal: the
	// insert is atomic, so concurrent duplicates of the same first message
	// see created exactly once between them.
	lead, created, err := o.store.FindOrCreate(ctx, contactID, ev.PushName)
	if err != nil {
		return fmt.Errorf("find or create lead: %w", err)
	}

	// 4. Persist the inbound message.
	if _, err := o.store.AppendMessage(ctx, contactID, text, domain.SenderContact); err != nil {
		return fmt.Errorf("append inbound message: %w", err)
	}

	// 5. Acknowledge. Best-effort: a failed read receipt never stops the pipeline.
	if ev.EventRef != "" {
		if err := o.transport.MarkRead(ctx, ev.EventRef); err != nil {
			o.log.ChannelError("mark_read", contactID, err)
		}
	}

	// 6. Onboarding runs at most once per lead, before classification.
	if created {
		if err := o.runOnboarding(ctx, contactID, lead); err != nil {
			return err
		}
	}

	// 7-8. Classify (always yields a real or fallback result) and persist.
	classification := o.classifier.Classify(ctx, text)
	lead, err = o.store.UpdateClassification(ctx, contactID, classification)
	if err != nil {
		return fmt.Errorf("update classification: %w", err)
	}

	o.publish(ctx, events.LeadClassified{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		ContactID:      contactID,
		DisplayName:    lead.DisplayName,
		MessageText:    text,
		Classification: classification,
	})

	// 9. Reply. A failed send is transient: log it and skip the history
	// write so the recorded history matches what the contact received.
	reply := SelectResponse(classification)
	if err := o.transport.SendText(ctx, contactID, reply); err != nil {
		o.log.ChannelError("reply_send", contactID, err)
		return nil
	}
	if _, err := o.store.AppendMessage(ctx, contactID, reply, domain.SenderSystem); err != nil {
		return fmt.Errorf("append reply message: %w", err)
	}

	return nil
}

func (o *Orchestrator) runOnboarding(ctx context.Context, contactID string, lead domain.Lead) error {
	delivered := o.onboarder.Run(ctx, contactID, lead.DisplayName)

	// Every outbound send is recorded in the history; onboarding recording
	// is best-effort because the sends themselves already happened.
	for _, text := range delivered {
		if _, err := o.store.AppendMessage(ctx, contactID, text, domain.SenderSystem); err != nil {
			o.log.Error("failed to record onboarding message", "contact_id", contactID, "error", err)
		}
	}

	if _, err := o.store.UpdateStatus(ctx, contactID, string(domain.StatusNew)); err != nil {
		return fmt.Errorf("set initial status: %w", err)
	}

	o.publish(ctx, events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		ContactID:   contactID,
		DisplayName: lead.DisplayName,
	})

	if o.followUps != nil && o.followUpDelay > 0 {
		runAt := time.Now().Add(o.followUpDelay)
		if err := o.followUps.ScheduleFollowUp(ctx, contactID, runAt); err != nil {
			o.log.Error("failed to schedule follow-up", "contact_id", contactID, "error", err)
		}
	}

	return nil
}

// sendApology delivers the single generic apology. If even this fails the
// contact sees silence; channel redelivery is the only recovery path.
func (o *Orchestrator) sendApology(ctx context.Context, contactID string) {
	if err := o.transport.SendText(ctx, contactID, apologyNotice); err != nil {
		o.log.ChannelError("apology_send", contactID, err)
	}
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.bus != nil {
		o.bus.Publish(ctx, event)
	}
}

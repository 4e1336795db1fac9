package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

const followUpText = "Oi! Passando para saber se você ainda precisa de ajuda. " +
	"É só responder por aqui que seguimos o atendimento. 😊"

// FollowUpStore is the lead persistence the worker needs.
type FollowUpStore interface {
	GetByContactID(ctx context.Context, contactID string) (domain.Lead, error)
	ListMessages(ctx context.Context, contactID string) ([]domain.Message, error)
	AppendMessage(ctx context.Context, contactID, text string, sender domain.Sender) (domain.Message, error)
}

// Transport sends the nudge on the contact channel.
type Transport interface {
	SendText(ctx context.Context, destination, text string) error
}

// Worker consumes scheduler tasks from Redis.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	store     FollowUpStore
	transport Transport
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, store FollowUpStore, transport Transport, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		store:     store,
		transport: transport,
		log:       log,
	}

	mux.HandleFunc(TaskLeadFollowUp, w.handleLeadFollowUp)

	return w, nil
}

// handleLeadFollowUp sends the one-shot check-in, but only when the lead is
// still untouched: status new and no contact message after the first one.
// A disappeared lead or a re-engaged contact completes the task silently.
func (w *Worker) handleLeadFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		return err
	}

	lead, err := w.store.GetByContactID(ctx, payload.ContactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load lead: %w", err)
	}

	if lead.Status != domain.StatusNew {
		w.log.Debug("skipping follow-up, lead already handled", "contact_id", payload.ContactID, "status", lead.Status)
		return nil
	}

	messages, err := w.store.ListMessages(ctx, payload.ContactID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if contactMessageCount(messages) > 1 {
		w.log.Debug("skipping follow-up, contact re-engaged", "contact_id", payload.ContactID)
		return nil
	}

	if err := w.transport.SendText(ctx, payload.ContactID, followUpText); err != nil {
		// Returning the error lets asynq retry with backoff.
		return fmt.Errorf("send follow-up: %w", err)
	}

	if _, err := w.store.AppendMessage(ctx, payload.ContactID, followUpText, domain.SenderSystem); err != nil {
		w.log.Error("failed to record follow-up message", "contact_id", payload.ContactID, "error", err)
	}

	w.log.Info("follow-up sent", "contact_id", payload.ContactID)
	return nil
}

func contactMessageCount(messages []domain.Message) int {
	count := 0
	for _, msg := range messages {
		if msg.Sender == domain.SenderContact {
			count++
		}
	}
	return count
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

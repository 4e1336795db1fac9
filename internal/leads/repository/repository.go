package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when no lead exists for the given identifier.
var ErrNotFound = errors.New("lead not found")

const leadColumns = `id, contact_id, display_name, intent, sentiment, priority, status,
		created_at, updated_at, last_interaction_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindOrCreate returns the lead for the canonical contact id, creating it
// with default field values when absent. The uniqueness constraint on
// contact_id plus the read-after-conflict fallback makes this safe under
// concurrent calls for the same id: at most one lead ever exists per contact.
// The created flag is true for exactly one caller per contact, ever; the
// intake pipeline keys its run-once work off it.
func (r *Repository) FindOrCreate(ctx context.Context, contactID, displayName string) (domain.Lead, bool, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (contact_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (contact_id) DO NOTHING
		RETURNING `+leadColumns,
		contactID, displayName,
	).Scan(scanTargets(&lead)...)
	if err == nil {
		return lead, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, false, fmt.Errorf("find or create lead: %w", err)
	}

	// Conflict: the lead already exists, read it back.
	lead, err = r.GetByContactID(ctx, contactID)
	return lead, false, err
}

// GetByContactID returns the lead for the canonical contact id.
func (r *Repository) GetByContactID(ctx context.Context, contactID string) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE contact_id = $1
	`, contactID).Scan(scanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// GetByID returns the lead with the given surrogate id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1
	`, id).Scan(scanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// AppendMessage appends one message to the lead's history and bumps the
// lead's interaction timestamps. Returns ErrNotFound when the lead does not
// exist; callers must FindOrCreate first. Both writes land in one
// transaction so history and timestamps never diverge.
func (r *Repository) AppendMessage(ctx context.Context, contactID, text string, sender domain.Sender) (domain.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Message{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var msg domain.Message
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (lead_id, text, sender)
		SELECT id, $2, $3 FROM leads WHERE contact_id = $1
		RETURNING id, lead_id, text, sender, created_at
	`, contactID, text, string(sender)).Scan(&msg.ID, &msg.LeadID, &msg.Text, (*string)(&msg.Sender), &msg.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, ErrNotFound
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE leads SET last_interaction_at = $2, updated_at = $2 WHERE id = $1
	`, msg.LeadID, msg.Timestamp)
	if err != nil {
		return domain.Message{}, fmt.Errorf("bump lead interaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// UpdateClassification overwrites the lead's intent/sentiment/priority.
// Last write wins; there are no merge semantics.
func (r *Repository) UpdateClassification(ctx context.Context, contactID string, c domain.Classification) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET intent = $2, sentiment = $3, priority = $4, updated_at = now()
		WHERE contact_id = $1
		RETURNING `+leadColumns,
		contactID, c.Intent, c.Sentiment, c.Priority,
	).Scan(scanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update classification: %w", err)
	}
	return lead, nil
}

// UpdateStatus sets the lead's lifecycle status. The value is checked against
// the closed set before any write; an illegal value leaves the row untouched.
func (r *Repository) UpdateStatus(ctx context.Context, contactID, status string) (domain.Lead, error) {
	if !domain.ValidStatus(status) {
		return domain.Lead{}, domain.ErrInvalidStatus
	}

	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now() WHERE contact_id = $1
		RETURNING `+leadColumns,
		contactID, status,
	).Scan(scanTargets(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update status: %w", err)
	}
	return lead, nil
}

// ListMessages returns the lead's full history ordered by timestamp ascending.
func (r *Repository) ListMessages(ctx context.Context, contactID string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.lead_id, m.text, m.sender, m.created_at
		FROM messages m
		JOIN leads l ON l.id = m.lead_id
		WHERE l.contact_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.LeadID, &msg.Text, (*string)(&msg.Sender), &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Page size bounds for the operator lead listing.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ListParams filters and paginates the operator lead listing.
type ListParams struct {
	Status   string
	Priority string
	Intent   string
	Limit    int
	Offset   int
}

// List returns leads matching the filters, newest interaction first, along
// with the total match count for pagination.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addFilter("status", params.Status)
	addFilter("priority", params.Priority)
	addFilter("intent", params.Intent)

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	limit := params.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	countArgs := append([]interface{}(nil), args...)
	pageArgs := append(args, limit, params.Offset)
	query := fmt.Sprintf(
		"SELECT "+leadColumns+" FROM leads%s ORDER BY last_interaction_at DESC LIMIT $%d OFFSET $%d",
		clause, len(pageArgs)-1, len(pageArgs),
	)

	// The count and the page are independent reads; run them in parallel on
	// separate pool connections.
	g, gctx := errgroup.WithContext(ctx)

	var total int
	g.Go(func() error {
		return r.pool.QueryRow(gctx, "SELECT count(*) FROM leads"+clause, countArgs...).Scan(&total)
	})

	var leadsOut []domain.Lead
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, query, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		leadsOut = make([]domain.Lead, 0, limit)
		for rows.Next() {
			var lead domain.Lead
			if err := rows.Scan(scanTargets(&lead)...); err != nil {
				return err
			}
			leadsOut = append(leadsOut, lead)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return leadsOut, total, nil
}

// Stats aggregates lead counts by status, priority, and intent.
type Stats struct {
	ByStatus   map[string]int
	ByPriority map[string]int
	ByIntent   map[string]int
}

// AggregateStats returns lead counts grouped by each classification dimension.
func (r *Repository) AggregateStats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
		ByIntent:   make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT 'status' AS dim, status AS value, count(*) FROM leads GROUP BY status
		UNION ALL
		SELECT 'priority', priority, count(*) FROM leads GROUP BY priority
		UNION ALL
		SELECT 'intent', intent, count(*) FROM leads GROUP BY intent
	`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var dim, value string
		var count int
		if err := rows.Scan(&dim, &value, &count); err != nil {
			return Stats{}, err
		}
		switch dim {
		case "status":
			stats.ByStatus[value] = count
		case "priority":
			stats.ByPriority[value] = count
		case "intent":
			stats.ByIntent[value] = count
		}
	}
	return stats, rows.Err()
}

func scanTargets(lead *domain.Lead) []interface{} {
	return []interface{}{
		&lead.ID, &lead.ContactID, &lead.DisplayName,
		&lead.Intent, &lead.Sentiment, &lead.Priority, (*string)(&lead.Status),
		&lead.CreatedAt, &lead.UpdatedAt, &lead.LastInteractionAt,
	}
}

// Package service implements the operator-facing lead operations on top of
// the repository.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
)

// Repository is the persistence surface the service needs. Implemented by
// the pgx repository; faked in tests.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateStatus(ctx context.Context, contactID, status string) (domain.Lead, error)
	ListMessages(ctx context.Context, contactID string) ([]domain.Message, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error)
	AggregateStats(ctx context.Context) (repository.Stats, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a filtered, paginated page of leads ordered by most recent
// interaction.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.ListLeadsResponse, error) {
	params := repository.ListParams{
		Status:   req.Status,
		Priority: req.Priority,
		Intent:   req.Intent,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListLeadsResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	limit := params.Limit
	if limit <= 0 || limit > repository.MaxPageSize {
		limit = repository.DefaultPageSize
	}

	return transport.ListLeadsResponse{
		Leads:  transport.ToLeadResponses(leads),
		Total:  total,
		Limit:  limit,
		Offset: params.Offset,
	}, nil
}

// GetByID returns one lead with its full message history, oldest first.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadDetailResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	messages, err := s.repo.ListMessages(ctx, lead.ContactID)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load message history", err)
	}

	return transport.LeadDetailResponse{
		LeadResponse: transport.ToLeadResponse(lead),
		Messages:     transport.ToMessageResponses(messages),
	}, nil
}

// UpdateStatus moves a lead to a new workflow status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	updated, err := s.repo.UpdateStatus(ctx, lead.ContactID, req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			return transport.LeadResponse{}, apperr.Validation("invalid status value")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update status", err)
	}

	return transport.ToLeadResponse(updated), nil
}

// Stats returns aggregate lead counts grouped by status, priority and intent.
func (s *Service) Stats(ctx context.Context) (transport.StatsResponse, error) {
	stats, err := s.repo.AggregateStats(ctx)
	if err != nil {
		return transport.StatsResponse{}, apperr.Wrap(apperr.KindInternal, "failed to aggregate stats", err)
	}

	return transport.StatsResponse{
		ByStatus:   stats.ByStatus,
		ByPriority: stats.ByPriority,
		ByIntent:   stats.ByIntent,
	}, nil
}

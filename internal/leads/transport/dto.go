// Package transport defines the operator API request and response shapes
// for the leads module.
package transport

import (
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/domain"
)

// ListLeadsRequest carries the optional filters and pagination for GET /leads.
type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=new in_progress done"`
	Priority string `form:"priority" validate:"omitempty,oneof=low medium high"`
	Intent   string `form:"intent" validate:"omitempty,oneof=budget scheduling support complaint other"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" validate:"omitempty,min=0"`
}

// UpdateStatusRequest changes a lead's workflow status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new in_progress done"`
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID                uuid.UUID `json:"id"`
	ContactID         string    `json:"contactId"`
	DisplayName       string    `json:"displayName"`
	Intent            string    `json:"intent"`
	Sentiment         string    `json:"sentiment"`
	Priority          string    `json:"priority"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	LastInteractionAt time.Time `json:"lastInteractionAt"`
}

// MessageResponse is one history entry.
type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// LeadDetailResponse is a lead together with its full message history.
type LeadDetailResponse struct {
	LeadResponse
	Messages []MessageResponse `json:"messages"`
}

// ListLeadsResponse is a filtered page of leads with the total match count.
type ListLeadsResponse struct {
	Leads  []LeadResponse `json:"leads"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// StatsResponse reports lead counts per classification dimension.
type StatsResponse struct {
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
	ByIntent   map[string]int `json:"byIntent"`
}

func ToLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:                lead.ID,
		ContactID:         lead.ContactID,
		DisplayName:       lead.DisplayName,
		Intent:            lead.Intent,
		Sentiment:         lead.Sentiment,
		Priority:          lead.Priority,
		Status:            string(lead.Status),
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
		LastInteractionAt: lead.LastInteractionAt,
	}
}

func ToLeadResponses(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, len(leads))
	for i, lead := range leads {
		out[i] = ToLeadResponse(lead)
	}
	return out
}

func ToMessageResponses(messages []domain.Message) []MessageResponse {
	out := make([]MessageResponse, len(messages))
	for i, msg := range messages {
		out[i] = MessageResponse{
			ID:        msg.ID,
			Text:      msg.Text,
			Sender:    string(msg.Sender),
			Timestamp: msg.Timestamp,
		}
	}
	return out
}

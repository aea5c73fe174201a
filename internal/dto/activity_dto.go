package dto

import (
	"time"

	"github.com/kenshokan/dojang-api/internal/models"
)

// ActivityListRequest filters the audit trail listing.
type ActivityListRequest struct {
	Page       int    `query:"page" validate:"omitempty,gte=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
	ActorID    *uint  `query:"actor_id"`
	Action     string `query:"action"`
	EntityType string `query:"entity_type"`
}

// ActivityResponse serializes one audit trail entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a page of audit entries.
type ActivityListResponse struct {
	Items    []ActivityResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		ActorRole:  model.ActorRole,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   model.Metadata,
		CreatedAt:  model.CreatedAt,
	}
}

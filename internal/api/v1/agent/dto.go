package agent

import (
	"time"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

type CreateAgentInput struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Type        string `json:"type" binding:"required,oneof=writer judge"`
	Personality string `json:"personality" binding:"required"`
	Model       string `json:"model" binding:"required"`
	IsPublic    bool   `json:"is_public"`
}

type UpdateAgentInput struct {
	Name        *string `json:"name,omitempty"`
	Personality *string `json:"personality,omitempty"`
	Model       *string `json:"model,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

type AgentResponse struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	OwnerID     uint      `json:"owner_id"`
	Personality string    `json:"personality"`
	Model       string    `json:"model"`
	IsPublic    bool      `json:"is_public"`
}

func toAgentResponse(a *models.Agent) AgentResponse {
	return AgentResponse{
		ID:          a.ID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		Name:        a.Name,
		Type:        string(a.Type),
		OwnerID:     a.OwnerID,
		Personality: a.Personality,
		Model:       a.Model,
		IsPublic:    a.IsPublic,
	}
}

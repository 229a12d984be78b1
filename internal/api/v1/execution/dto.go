package execution

import (
	"time"

	"gorm.io/datatypes"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

type WriterExecutionInput struct {
	AgentID  uint   `json:"agent_id" binding:"required"`
	Title    string `json:"title"`
	Guidance string `json:"guidance"`
}

type JudgeExecutionInput struct {
	AgentID   uint `json:"agent_id" binding:"required"`
	ContestID uint `json:"contest_id" binding:"required"`
}

type EstimateInput struct {
	AgentID     uint `json:"agent_id" binding:"required"`
	ContextSize int  `json:"context_size" binding:"min=0"`
}

type EstimateResponse struct {
	AgentID          uint   `json:"agent_id"`
	Model            string `json:"model"`
	EstimatedCredits int64  `json:"estimated_credits"`
}

type ExecutionResponse struct {
	ID               string         `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	AgentID          uint           `json:"agent_id"`
	Type             string         `json:"type"`
	ContestID        *uint          `json:"contest_id,omitempty"`
	Model            string         `json:"model"`
	Status           string         `json:"status"`
	CreditsCharged   int64          `json:"credits_charged"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	Result           datatypes.JSON `json:"result,omitempty"`
	ErrorLog         string         `json:"error_log,omitempty"`
}

func toExecutionResponse(e *models.AgentExecution) ExecutionResponse {
	return ExecutionResponse{
		ID:               e.ID,
		CreatedAt:        e.CreatedAt,
		CompletedAt:      e.CompletedAt,
		AgentID:          e.AgentID,
		Type:             string(e.Type),
		ContestID:        e.ContestID,
		Model:            e.Model,
		Status:           string(e.Status),
		CreditsCharged:   e.CreditsCharged,
		PromptTokens:     e.PromptTokens,
		CompletionTokens: e.CompletionTokens,
		Result:           e.Result,
		ErrorLog:         e.ErrorLog,
	}
}

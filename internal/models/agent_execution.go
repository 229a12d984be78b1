package models

import (
	"time"

	"gorm.io/datatypes"
)

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// AgentExecution is the audit record of one agent invocation. A row is
// created when the request is accepted and reaches exactly one terminal
// status no matter where the execution fails; it is written outside the
// financial transaction so a ledger rollback never erases it.
type AgentExecution struct {
	ID               string          `gorm:"primarykey;type:varchar(36)" json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	AgentID          uint            `gorm:"index;not null" json:"agent_id"`
	UserID           uint            `gorm:"index;not null" json:"user_id"`
	Type             AgentType       `gorm:"type:varchar(20);not null" json:"type"`
	ContestID        *uint           `gorm:"index" json:"contest_id,omitempty"`
	Model            string          `gorm:"type:varchar(100)" json:"model"`
	Status           ExecutionStatus `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	CreditsCharged   int64           `gorm:"not null;default:0" json:"credits_charged"`
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	Result           datatypes.JSON  `gorm:"type:jsonb" json:"result,omitempty"`
	ErrorLog         string          `gorm:"type:text" json:"error_log,omitempty"`
}

// TableName overrides the table name
func (AgentExecution) TableName() string {
	return "agent_executions"
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// DebugLogEntry captures the full prompt/response/parse/cost tuple of
// one execution. Only materialized when the development flag is set;
// each operation stream is trimmed FIFO at DebugLogCapacity rows.
type DebugLogEntry struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	Operation        AgentType      `gorm:"type:varchar(20);index;not null" json:"operation"`
	UserID           uint           `gorm:"index" json:"user_id"`
	AgentID          uint           `gorm:"index" json:"agent_id"`
	ContestID        *uint          `json:"contest_id,omitempty"`
	ExecutionID      string         `gorm:"type:varchar(36);index" json:"execution_id"`
	StrategyInput    datatypes.JSON `gorm:"type:jsonb" json:"strategy_input"`
	Prompt           string         `gorm:"type:text" json:"prompt"`
	RawResponse      string         `gorm:"type:text" json:"raw_response"`
	ParsedOutput     datatypes.JSON `gorm:"type:jsonb" json:"parsed_output"`
	DurationMs       int64          `json:"duration_ms"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	MonetaryCost     float64        `gorm:"type:decimal(20,8)" json:"monetary_cost"`
	CreditsCharged   int64          `json:"credits_charged"`
}

// TableName overrides the table name
func (DebugLogEntry) TableName() string {
	return "debug_log_entries"
}

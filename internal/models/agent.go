package models

import "time"

type AgentType string

const (
	AgentTypeWriter AgentType = "writer"
	AgentTypeJudge  AgentType = "judge"
)

// Agent is a user-configured persona that drives one kind of LLM
// invocation: writers generate texts, judges rank contest submissions.
type Agent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"index;not null" json:"name"`
	Type        AgentType `gorm:"type:varchar(20);index;not null" json:"type"`
	OwnerID     uint      `gorm:"index;not null" json:"owner_id"`
	Personality string    `gorm:"type:text;not null" json:"personality"`
	Model       string    `gorm:"type:varchar(100);not null" json:"model"`
	IsPublic    bool      `gorm:"index;default:false" json:"is_public"`
}

package models

import "time"

// ModelPricing is the read-only pricing table for LLM models. A model
// absent from this table cannot be executed.
type ModelPricing struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	ModelID          string    `gorm:"uniqueIndex;not null" json:"model_id"`
	Provider         string    `gorm:"type:varchar(50);index;not null" json:"provider"`
	DisplayName      string    `gorm:"type:varchar(100)" json:"display_name"`
	InputPricePer1K  float64   `gorm:"type:decimal(20,8);not null" json:"input_price_per_1k"`
	OutputPricePer1K float64   `gorm:"type:decimal(20,8);not null" json:"output_price_per_1k"`
	ContextWindow    int       `gorm:"not null;default:0" json:"context_window"`
}

// TableName overrides the table name
func (ModelPricing) TableName() string {
	return "model_pricing"
}

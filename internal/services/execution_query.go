package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var ErrExecutionNotFound = errors.New("execution not found")

// ExecutionFilter defines criteria for listing agent executions
type ExecutionFilter struct {
	UserID    *uint
	AgentID   *uint
	Status    *models.ExecutionStatus
	Type      *models.AgentType
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// FindExecutions retrieves a paginated list of executions with filtering
func FindExecutions(filter ExecutionFilter) ([]models.AgentExecution, int64, error) {
	var executions []models.AgentExecution
	var total int64

	query := database.DB.Model(&models.AgentExecution{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&executions).Error; err != nil {
		return nil, 0, err
	}

	return executions, total, nil
}

// GetExecutionByID returns a single execution row.
func GetExecutionByID(id string) (*models.AgentExecution, error) {
	var exec models.AgentExecution
	if err := database.DB.First(&exec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExecutionNotFound
		}
		return nil, err
	}
	return &exec, nil
}

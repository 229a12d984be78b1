package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var (
	ErrAgentNotFound   = errors.New("agent not found")
	ErrAgentForbidden  = errors.New("agent belongs to another user")
	ErrAgentBusy       = errors.New("agent has pending executions and cannot be deleted")
	ErrInvalidAgent    = errors.New("invalid agent definition")
	agentCacheDuration = 30 * time.Minute
)

const agentCacheKeyPrefix = "agent:"

// AgentFilter defines criteria for listing agents
type AgentFilter struct {
	OwnerID    *uint
	Type       *models.AgentType
	PublicOnly bool
	Page       int
	Limit      int
}

// CreateAgent validates and persists a new agent
func CreateAgent(agent *models.Agent) error {
	if agent.Type != models.AgentTypeWriter && agent.Type != models.AgentTypeJudge {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAgent, agent.Type)
	}
	if agent.Name == "" || agent.Personality == "" || agent.Model == "" {
		return fmt.Errorf("%w: name, personality and model are required", ErrInvalidAgent)
	}
	return database.DB.Create(agent).Error
}

// GetAgentByID retrieves an agent, using cache
func GetAgentByID(id uint) (*models.Agent, error) {
	cacheKey := fmt.Sprintf("%s%d", agentCacheKeyPrefix, id)

	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var agent models.Agent
			if err := json.Unmarshal([]byte(val), &agent); err == nil {
				return &agent, nil
			}
		}
	}

	var agent models.Agent
	if err := database.DB.First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(agent); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, agentCacheDuration)
		}
	}

	return &agent, nil
}

// FindAgents retrieves a paginated list of agents with filtering
func FindAgents(filter AgentFilter) ([]models.Agent, int64, error) {
	var agents []models.Agent
	var total int64

	query := database.DB.Model(&models.Agent{})

	if filter.OwnerID != nil {
		if filter.PublicOnly {
			query = query.Where("owner_id = ? OR is_public = ?", *filter.OwnerID, true)
		} else {
			query = query.Where("owner_id = ?", *filter.OwnerID)
		}
	} else if filter.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&agents).Error; err != nil {
		return nil, 0, err
	}

	return agents, total, nil
}

// UpdateAgent applies owner/admin edits to an agent
func UpdateAgent(id uint, requester *models.User, updates map[string]interface{}) (*models.Agent, error) {
	agent, err := GetAgentByID(id)
	if err != nil {
		return nil, err
	}
	if agent.OwnerID != requester.ID && requester.Role != "admin" {
		return nil, ErrAgentForbidden
	}

	// Type and owner are immutable after creation.
	delete(updates, "type")
	delete(updates, "owner_id")

	if err := database.DB.Model(&models.Agent{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	invalidateAgentCache(id)

	var updated models.Agent
	if err := database.DB.First(&updated, id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAgent removes an agent unless executions still reference it
func DeleteAgent(id uint, requester *models.User) error {
	agent, err := GetAgentByID(id)
	if err != nil {
		return err
	}
	if agent.OwnerID != requester.ID && requester.Role != "admin" {
		return ErrAgentForbidden
	}

	var pending int64
	if err := database.DB.Model(&models.AgentExecution{}).
		Where("agent_id = ? AND status IN ?", id,
			[]models.ExecutionStatus{models.ExecutionStatusPending, models.ExecutionStatusRunning}).
		Count(&pending).Error; err != nil {
		return err
	}
	if pending > 0 {
		return ErrAgentBusy
	}

	if err := database.DB.Delete(&models.Agent{}, id).Error; err != nil {
		return err
	}

	invalidateAgentCache(id)
	return nil
}

func invalidateAgentCache(id uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, fmt.Sprintf("%s%d", agentCacheKeyPrefix, id))
	}
}

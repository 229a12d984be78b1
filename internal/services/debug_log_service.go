package services

import (
	"go.uber.org/zap"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

// DebugLogCapacity bounds retention per operation stream; inserting
// past capacity evicts the oldest entries (FIFO).
const DebugLogCapacity = 1000

// DebugLogger traces full executions (prompt, raw response, parsed
// output, timing, cost) when the development flag is on. It is a pure
// side channel: it never returns an error and never blocks the
// execution path on failure.
type DebugLogger struct {
	enabled bool
}

func NewDebugLogger(enabled bool) *DebugLogger {
	return &DebugLogger{enabled: enabled}
}

func (d *DebugLogger) Enabled() bool {
	return d != nil && d.enabled
}

// Record persists one debug entry and trims the stream to capacity.
// All failures are swallowed.
func (d *DebugLogger) Record(entry *models.DebugLogEntry) {
	if !d.Enabled() {
		return
	}

	if err := database.DB.Create(entry).Error; err != nil {
		zap.L().Debug("debug log insert failed", zap.Error(err))
		return
	}

	d.trim(entry.Operation)
}

func (d *DebugLogger) trim(operation models.AgentType) {
	var count int64
	if err := database.DB.Model(&models.DebugLogEntry{}).
		Where("operation = ?", operation).Count(&count).Error; err != nil {
		zap.L().Debug("debug log count failed", zap.Error(err))
		return
	}
	if count <= DebugLogCapacity {
		return
	}

	var victims []models.DebugLogEntry
	if err := database.DB.Where("operation = ?", operation).
		Order("id asc").Limit(int(count - DebugLogCapacity)).Find(&victims).Error; err != nil {
		zap.L().Debug("debug log trim query failed", zap.Error(err))
		return
	}
	if len(victims) == 0 {
		return
	}

	ids := make([]uint, len(victims))
	for i, v := range victims {
		ids[i] = v.ID
	}
	if err := database.DB.Delete(&models.DebugLogEntry{}, ids).Error; err != nil {
		zap.L().Debug("debug log trim delete failed", zap.Error(err))
	}
}

// FindDebugLogEntries retrieves recent debug entries, newest first.
func FindDebugLogEntries(operation *models.AgentType, limit int) ([]models.DebugLogEntry, error) {
	if limit <= 0 || limit > DebugLogCapacity {
		limit = 100
	}

	query := database.DB.Model(&models.DebugLogEntry{})
	if operation != nil {
		query = query.Where("operation = ?", *operation)
	}

	var entries []models.DebugLogEntry
	if err := query.Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

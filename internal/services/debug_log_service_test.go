package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

func TestDebugLoggerDisabledRecordsNothing(t *testing.T) {
	setupTestDB()

	d := NewDebugLogger(false)
	d.Record(&models.DebugLogEntry{Operation: models.AgentTypeWriter, Prompt: "p"})

	var count int64
	database.DB.Model(&models.DebugLogEntry{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var nilLogger *DebugLogger
	assert.False(t, nilLogger.Enabled())
}

func TestDebugLoggerRecords(t *testing.T) {
	setupTestDB()

	d := NewDebugLogger(true)
	d.Record(&models.DebugLogEntry{
		Operation:   models.AgentTypeJudge,
		ExecutionID: "e-1",
		Prompt:      "rank these",
		RawResponse: "1. A - ok",
	})

	entries, err := FindDebugLogEntries(nil, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "e-1", entries[0].ExecutionID)
}

func TestDebugLoggerEvictsOldestPastCapacity(t *testing.T) {
	setupTestDB()

	d := NewDebugLogger(true)
	for i := 0; i < DebugLogCapacity; i++ {
		database.DB.Create(&models.DebugLogEntry{
			Operation:   models.AgentTypeWriter,
			ExecutionID: fmt.Sprintf("w-%d", i),
		})
	}

	// The insert past capacity evicts the oldest writer entry.
	d.Record(&models.DebugLogEntry{
		Operation:   models.AgentTypeWriter,
		ExecutionID: "w-overflow",
	})

	var count int64
	database.DB.Model(&models.DebugLogEntry{}).
		Where("operation = ?", models.AgentTypeWriter).Count(&count)
	assert.Equal(t, int64(DebugLogCapacity), count)

	var oldest models.DebugLogEntry
	err := database.DB.Where("execution_id = ?", "w-0").First(&oldest).Error
	assert.Error(t, err)

	var newest models.DebugLogEntry
	assert.NoError(t, database.DB.Where("execution_id = ?", "w-overflow").First(&newest).Error)
}

func TestDebugLoggerCapacityIsPerOperation(t *testing.T) {
	setupTestDB()

	d := NewDebugLogger(true)
	for i := 0; i < DebugLogCapacity; i++ {
		database.DB.Create(&models.DebugLogEntry{
			Operation:   models.AgentTypeWriter,
			ExecutionID: fmt.Sprintf("w-%d", i),
		})
	}

	// A judge entry does not evict writer entries.
	d.Record(&models.DebugLogEntry{Operation: models.AgentTypeJudge, ExecutionID: "j-0"})

	var writerCount int64
	database.DB.Model(&models.DebugLogEntry{}).
		Where("operation = ?", models.AgentTypeWriter).Count(&writerCount)
	assert.Equal(t, int64(DebugLogCapacity), writerCount)
}

func TestFindDebugLogEntriesNewestFirstAndFiltered(t *testing.T) {
	setupTestDB()

	d := NewDebugLogger(true)
	d.Record(&models.DebugLogEntry{Operation: models.AgentTypeWriter, ExecutionID: "w-1"})
	d.Record(&models.DebugLogEntry{Operation: models.AgentTypeJudge, ExecutionID: "j-1"})
	d.Record(&models.DebugLogEntry{Operation: models.AgentTypeWriter, ExecutionID: "w-2"})

	entries, err := FindDebugLogEntries(nil, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "w-2", entries[0].ExecutionID)

	writer := models.AgentTypeWriter
	entries, err = FindDebugLogEntries(&writer, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, models.AgentTypeWriter, e.Operation)
	}
}

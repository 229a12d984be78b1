package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/llm"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

type stubProvider struct {
	name       string
	content    string
	usage      llm.Usage
	err        error
	lastPrompt string
	calls      int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	s.calls++
	s.lastPrompt = req.Prompt
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content, Model: req.Model, Usage: s.usage}, nil
}

func newTestEngine(stub *stubProvider) *ExecutionEngine {
	registry := llm.NewRegistry()
	if stub != nil {
		registry.Register(stub)
	}
	return &ExecutionEngine{
		Providers: registry,
		Pricing:   testPricingCfg,
		Timeout:   5 * time.Second,
		Debug:     NewDebugLogger(false),
	}
}

func seedWriterAgent(ownerID uint, model string) *models.Agent {
	agent := &models.Agent{
		Name:        "verse-smith",
		Type:        models.AgentTypeWriter,
		OwnerID:     ownerID,
		Personality: "A laconic poet.",
		Model:       model,
	}
	if err := database.DB.Create(agent).Error; err != nil {
		panic(err)
	}
	return agent
}

func seedJudgeAgent(ownerID uint, model string) *models.Agent {
	agent := &models.Agent{
		Name:        "stern-critic",
		Type:        models.AgentTypeJudge,
		OwnerID:     ownerID,
		Personality: "A stern critic.",
		Model:       model,
	}
	if err := database.DB.Create(agent).Error; err != nil {
		panic(err)
	}
	return agent
}

func seedContest() (*models.Contest, []models.Submission) {
	contest := &models.Contest{Title: "Autumn Cup", Description: "Stories of change."}
	if err := database.DB.Create(contest).Error; err != nil {
		panic(err)
	}
	subs := []models.Submission{
		{ContestID: contest.ID, AuthorID: 1, Title: "Falling Leaves", Content: "a"},
		{ContestID: contest.ID, AuthorID: 2, Title: "Harvest Moon", Content: "b"},
	}
	if err := database.DB.Create(&subs).Error; err != nil {
		panic(err)
	}
	return contest, subs
}

func TestExecuteWriterSuccessChargesActualCost(t *testing.T) {
	setupTestDB()
	user := seedUser("writer-user", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedWriterAgent(user.ID, "stub-model")

	stub := &stubProvider{
		name:    "stub",
		content: "Title: Ash and Ember\nText: The fire remembered everything.",
		usage:   llm.Usage{PromptTokens: 100, CompletionTokens: 200},
	}
	engine := newTestEngine(stub)

	result, err := engine.ExecuteWriter(context.Background(), WriterRequest{
		User:     user,
		Agent:    agent,
		Guidance: "Write about fire.",
	})
	assert.NoError(t, err)
	assert.True(t, result.Output.ParsingSuccess)
	assert.Equal(t, "Ash and Ember", result.Output.Title)

	// 100/1000*0.01 + 200/1000*0.03 = $0.007 -> 7 credits.
	assert.Equal(t, int64(7), result.CreditsCharged)

	balance, _ := GetBalance(user.ID)
	assert.Equal(t, int64(993), balance)

	var exec models.AgentExecution
	assert.NoError(t, database.DB.First(&exec, "id = ?", result.ExecutionID).Error)
	assert.Equal(t, models.ExecutionStatusCompleted, exec.Status)
	assert.Equal(t, int64(7), exec.CreditsCharged)
	assert.Equal(t, 100, exec.PromptTokens)
	assert.Equal(t, 200, exec.CompletionTokens)
	assert.NotNil(t, exec.CompletedAt)

	var entry models.CreditLedgerEntry
	assert.NoError(t, database.DB.First(&entry, "reference_id = ?", exec.ID).Error)
	assert.Equal(t, models.LedgerTypeConsumption, entry.Type)
	assert.Equal(t, int64(-7), entry.Amount)

	assert.Contains(t, stub.lastPrompt, "A laconic poet.")
	assert.Contains(t, stub.lastPrompt, "Write about fire.")
}

func TestExecuteWriterUnknownModelLeavesNoRecord(t *testing.T) {
	setupTestDB()
	user := seedUser("no-model", 1000)
	agent := seedWriterAgent(user.ID, "unpriced-model")

	engine := newTestEngine(&stubProvider{name: "stub"})

	_, err := engine.ExecuteWriter(context.Background(), WriterRequest{User: user, Agent: agent})
	assert.ErrorIs(t, err, ErrUnknownModel)

	var count int64
	database.DB.Model(&models.AgentExecution{}).Count(&count)
	assert.Equal(t, int64(0), count)

	balance, _ := GetBalance(user.ID)
	assert.Equal(t, int64(1000), balance)
}

func TestExecuteWriterInsufficientCreditsFailsBeforeCall(t *testing.T) {
	setupTestDB()
	user := seedUser("broke", 1)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedWriterAgent(user.ID, "stub-model")

	stub := &stubProvider{name: "stub", content: "irrelevant"}
	engine := newTestEngine(stub)

	_, err := engine.ExecuteWriter(context.Background(), WriterRequest{User: user, Agent: agent})
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	// No provider call, no charge, but an audit row marked failed.
	assert.Equal(t, 0, stub.calls)

	balance, _ := GetBalance(user.ID)
	assert.Equal(t, int64(1), balance)

	var exec models.AgentExecution
	assert.NoError(t, database.DB.First(&exec).Error)
	assert.Equal(t, models.ExecutionStatusFailed, exec.Status)
	assert.Equal(t, int64(0), exec.CreditsCharged)
	assert.NotEmpty(t, exec.ErrorLog)
}

func TestExecuteWriterProviderErrorNoCharge(t *testing.T) {
	setupTestDB()
	user := seedUser("unlucky", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedWriterAgent(user.ID, "stub-model")

	stub := &stubProvider{
		name: "stub",
		err:  fmt.Errorf("stub complete: %w: boom", llm.ErrProviderUnavailable),
	}
	engine := newTestEngine(stub)

	_, err := engine.ExecuteWriter(context.Background(), WriterRequest{User: user, Agent: agent})
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)

	balance, _ := GetBalance(user.ID)
	assert.Equal(t, int64(1000), balance)

	var exec models.AgentExecution
	assert.NoError(t, database.DB.First(&exec).Error)
	assert.Equal(t, models.ExecutionStatusFailed, exec.Status)

	var count int64
	database.DB.Model(&models.CreditLedgerEntry{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestExecuteWriterMissingProviderFails(t *testing.T) {
	setupTestDB()
	user := seedUser("orphan", 1000)
	seedPricing("stub-model", "ghost-provider", 0.01, 0.03)
	agent := seedWriterAgent(user.ID, "stub-model")

	engine := newTestEngine(nil)

	_, err := engine.ExecuteWriter(context.Background(), WriterRequest{User: user, Agent: agent})
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)

	var exec models.AgentExecution
	assert.NoError(t, database.DB.First(&exec).Error)
	assert.Equal(t, models.ExecutionStatusFailed, exec.Status)
}

func TestExecuteWriterOverdraftStillCharges(t *testing.T) {
	setupTestDB()
	user := seedUser("overdrawn", 1)
	// Prices low enough that the 4096-token estimate passes a 1-credit
	// balance, but the reported usage is enormous.
	seedPricing("stub-model", "stub", 0.00001, 0.00001)
	agent := seedWriterAgent(user.ID, "stub-model")

	stub := &stubProvider{
		name:    "stub",
		content: "Title: Flood\nText: Water everywhere.",
		usage:   llm.Usage{PromptTokens: 100, CompletionTokens: 500_000_000},
	}
	engine := newTestEngine(stub)

	result, err := engine.ExecuteWriter(context.Background(), WriterRequest{User: user, Agent: agent})
	assert.NoError(t, err)
	// 500M out tokens * $0.00001/1K = $5.00 -> 5000 credits.
	assert.Equal(t, int64(5000), result.CreditsCharged)

	balance, _ := GetBalance(user.ID)
	assert.Equal(t, int64(1-5000), balance)

	var exec models.AgentExecution
	assert.NoError(t, database.DB.First(&exec, "id = ?", result.ExecutionID).Error)
	assert.Equal(t, models.ExecutionStatusCompleted, exec.Status)
}

func TestExecuteWriterWrongAgentType(t *testing.T) {
	setupTestDB()
	user := seedUser("mismatch", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	judge := seedJudgeAgent(user.ID, "stub-model")

	engine := newTestEngine(&stubProvider{name: "stub"})

	_, err := engine.ExecuteWriter(context.Background(), WriterRequest{User: user, Agent: judge})
	assert.ErrorIs(t, err, ErrWrongAgentType)

	var count int64
	database.DB.Model(&models.AgentExecution{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestExecuteJudgeSuccess(t *testing.T) {
	setupTestDB()
	user := seedUser("judge-user", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedJudgeAgent(user.ID, "stub-model")
	contest, subs := seedContest()

	stub := &stubProvider{
		name:    "stub",
		content: "1. Harvest Moon - luminous\n2. Falling Leaves - quiet",
		usage:   llm.Usage{PromptTokens: 300, CompletionTokens: 50},
	}
	engine := newTestEngine(stub)

	result, err := engine.ExecuteJudge(context.Background(), JudgeRequest{
		User:      user,
		Agent:     agent,
		ContestID: contest.ID,
	})
	assert.NoError(t, err)
	assert.True(t, result.Output.ParsingSuccess)
	assert.Len(t, result.Output.Votes, 2)
	assert.Equal(t, subs[1].ID, result.Output.Votes[0].SubmissionID)
	assert.Equal(t, subs[0].ID, result.Output.Votes[1].SubmissionID)

	assert.Contains(t, stub.lastPrompt, "Autumn Cup")
	assert.Contains(t, stub.lastPrompt, "Falling Leaves")

	var exec models.AgentExecution
	assert.NoError(t, database.DB.First(&exec, "id = ?", result.ExecutionID).Error)
	assert.Equal(t, models.ExecutionStatusCompleted, exec.Status)
	assert.Equal(t, &contest.ID, exec.ContestID)
}

func TestExecuteJudgeUnparseableResponseStillCharges(t *testing.T) {
	setupTestDB()
	user := seedUser("charged-anyway", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedJudgeAgent(user.ID, "stub-model")
	contest, _ := seedContest()

	stub := &stubProvider{
		name:    "stub",
		content: "I refuse to rank these works.",
		usage:   llm.Usage{PromptTokens: 300, CompletionTokens: 10},
	}
	engine := newTestEngine(stub)

	result, err := engine.ExecuteJudge(context.Background(), JudgeRequest{
		User:      user,
		Agent:     agent,
		ContestID: contest.ID,
	})
	assert.NoError(t, err)
	assert.False(t, result.Output.ParsingSuccess)
	assert.Empty(t, result.Output.Votes)
	assert.Greater(t, result.CreditsCharged, int64(0))

	balance, _ := GetBalance(user.ID)
	assert.Equal(t, int64(1000)-result.CreditsCharged, balance)
}

func TestExecuteJudgeNoSubmissions(t *testing.T) {
	setupTestDB()
	user := seedUser("empty-contest", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedJudgeAgent(user.ID, "stub-model")

	contest := &models.Contest{Title: "Empty Cup"}
	database.DB.Create(contest)

	engine := newTestEngine(&stubProvider{name: "stub"})

	_, err := engine.ExecuteJudge(context.Background(), JudgeRequest{
		User:      user,
		Agent:     agent,
		ContestID: contest.ID,
	})
	assert.ErrorIs(t, err, ErrNoSubmissions)
}

func TestExecuteJudgeContestNotFound(t *testing.T) {
	setupTestDB()
	user := seedUser("lost", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedJudgeAgent(user.ID, "stub-model")

	engine := newTestEngine(&stubProvider{name: "stub"})

	_, err := engine.ExecuteJudge(context.Background(), JudgeRequest{
		User:      user,
		Agent:     agent,
		ContestID: 9999,
	})
	assert.ErrorIs(t, err, ErrContestNotFound)
}

func TestEstimateCost(t *testing.T) {
	setupTestDB()
	seedPricing("stub-model", "stub", 0.01, 0.03)
	engine := newTestEngine(nil)

	// 4000 chars -> 1000 prompt tokens. Writer budget 4096 completion.
	// $0.01 + 4096/1000*0.03 = $0.13288 -> ceil -> 133 credits.
	credits, err := engine.EstimateCost(models.AgentTypeWriter, "stub-model", 4000)
	assert.NoError(t, err)
	assert.Equal(t, int64(133), credits)

	// Judge budget is smaller.
	judgeCredits, err := engine.EstimateCost(models.AgentTypeJudge, "stub-model", 4000)
	assert.NoError(t, err)
	assert.Less(t, judgeCredits, credits)

	_, err = engine.EstimateCost(models.AgentTypeWriter, "missing", 100)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestExecuteWriterDebugLogRecorded(t *testing.T) {
	setupTestDB()
	user := seedUser("traced", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedWriterAgent(user.ID, "stub-model")

	stub := &stubProvider{
		name:    "stub",
		content: "Title: Traced\nText: Every step recorded.",
		usage:   llm.Usage{PromptTokens: 10, CompletionTokens: 10},
	}
	engine := newTestEngine(stub)
	engine.Debug = NewDebugLogger(true)

	result, err := engine.ExecuteWriter(context.Background(), WriterRequest{User: user, Agent: agent})
	assert.NoError(t, err)

	var entry models.DebugLogEntry
	assert.NoError(t, database.DB.First(&entry, "execution_id = ?", result.ExecutionID).Error)
	assert.Equal(t, models.AgentTypeWriter, entry.Operation)
	assert.Contains(t, entry.Prompt, "A laconic poet.")
	assert.Equal(t, stub.content, entry.RawResponse)
	assert.Equal(t, result.CreditsCharged, entry.CreditsCharged)
}

func TestExecuteWriterCancelledContext(t *testing.T) {
	setupTestDB()
	user := seedUser("cancelled", 1000)
	seedPricing("stub-model", "stub", 0.01, 0.03)
	agent := seedWriterAgent(user.ID, "stub-model")

	stub := &ctxAwareStub{}
	registry := llm.NewRegistry()
	registry.Register(stub)
	engine := &ExecutionEngine{
		Providers: registry,
		Pricing:   testPricingCfg,
		Timeout:   time.Second,
		Debug:     NewDebugLogger(false),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ExecuteWriter(ctx, WriterRequest{User: user, Agent: agent})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var exec models.AgentExecution
	assert.NoError(t, database.DB.First(&exec).Error)
	assert.Equal(t, models.ExecutionStatusFailed, exec.Status)

	balance, _ := GetBalance(user.ID)
	assert.Equal(t, int64(1000), balance)
}

type ctxAwareStub struct{}

func (s *ctxAwareStub) Name() string { return "stub" }

func (s *ctxAwareStub) Complete(ctx context.Context, _ *llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &llm.Response{Content: "ok"}, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/altovacio/duelo-de-plumas-sub002/config"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/llm"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var (
	ErrWrongAgentType = errors.New("agent type does not match the requested operation")
	ErrNoSubmissions  = errors.New("contest has no submissions to judge")
)

// Completion budgets per operation. The precheck estimates against the
// full budget so an execution that maxes out its completion window is
// still covered by the earlier balance check in the common case.
const (
	writerMaxTokens = 4096
	judgeMaxTokens  = 2048
)

// ExecutionEngine orchestrates one agent execution end to end:
// precheck, provider call, parsing, cost finalization and the ledger
// commit. The execution row is the audit trail; it is written outside
// the financial transaction and always reaches exactly one terminal
// status.
type ExecutionEngine struct {
	Providers *llm.Registry
	Pricing   PricingConfig
	Timeout   time.Duration
	Debug     *DebugLogger
}

// NewExecutionEngine wires an engine from application config.
func NewExecutionEngine(cfg *config.Config, providers *llm.Registry) *ExecutionEngine {
	return &ExecutionEngine{
		Providers: providers,
		Pricing: PricingConfig{
			CreditsPerDollar:  cfg.CreditsPerDollar,
			MinimumCreditCost: cfg.MinimumCreditCost,
		},
		Timeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		Debug:   NewDebugLogger(cfg.DebugLogEnabled),
	}
}

// WriterRequest asks a writer agent to generate a text.
type WriterRequest struct {
	User     *models.User
	Agent    *models.Agent
	Title    string // optional; also used as the parser's fallback title
	Guidance string
}

// WriterResult is the outcome of a completed writer execution.
type WriterResult struct {
	ExecutionID    string        `json:"execution_id"`
	Output         *WriterOutput `json:"output"`
	CreditsCharged int64         `json:"credits_charged"`
}

// JudgeRequest asks a judge agent to rank a contest's submissions.
type JudgeRequest struct {
	User      *models.User
	Agent     *models.Agent
	ContestID uint
}

// JudgeResult is the outcome of a completed judge execution.
type JudgeResult struct {
	ExecutionID    string       `json:"execution_id"`
	Output         *JudgeOutput `json:"output"`
	CreditsCharged int64        `json:"credits_charged"`
}

// EstimateCost returns the credit estimate for an execution with the
// given context size (in characters), without calling any provider.
func (e *ExecutionEngine) EstimateCost(agentType models.AgentType, model string, contextSize int) (int64, error) {
	completionBudget := writerMaxTokens
	if agentType == models.AgentTypeJudge {
		completionBudget = judgeMaxTokens
	}

	if contextSize < 0 {
		contextSize = 0
	}
	promptTokens := (contextSize + 3) / 4

	est, err := EstimateCredits(model, promptTokens, completionBudget, e.Pricing)
	if err != nil {
		return 0, err
	}
	return est.Credits, nil
}

// ExecuteWriter runs one writer agent execution.
func (e *ExecutionEngine) ExecuteWriter(ctx context.Context, req WriterRequest) (*WriterResult, error) {
	if req.Agent.Type != models.AgentTypeWriter {
		return nil, ErrWrongAgentType
	}

	// UnknownModel is rejected before any record, call or charge.
	pricing, err := GetModelPricing(req.Agent.Model)
	if err != nil {
		return nil, err
	}

	prompt := BuildWriterPrompt(req.Agent.Personality, req.Title, req.Guidance)

	exec, err := e.createExecution(req.User, req.Agent, nil)
	if err != nil {
		return nil, err
	}

	resp, duration, err := e.callProvider(ctx, exec, pricing, prompt, writerMaxTokens)
	if err != nil {
		return nil, err
	}

	// Parsing failure is non-fatal: the call happened and must be
	// charged, the fallback chain guarantees usable output.
	output := ParseWriterResponse(resp.Content, req.Title)

	cost := ComputeCost(pricing, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, e.Pricing)
	if err := e.commit(exec, req.User, cost, resp.Usage, output); err != nil {
		return nil, err
	}

	e.recordDebug(exec, req.User, req.Agent, prompt, resp, cost, duration, output, models.JSON{
		"title":    req.Title,
		"guidance": req.Guidance,
	})

	return &WriterResult{
		ExecutionID:    exec.ID,
		Output:         output,
		CreditsCharged: cost.Credits,
	}, nil
}

// ExecuteJudge runs one judge agent execution against a contest.
func (e *ExecutionEngine) ExecuteJudge(ctx context.Context, req JudgeRequest) (*JudgeResult, error) {
	if req.Agent.Type != models.AgentTypeJudge {
		return nil, ErrWrongAgentType
	}

	pricing, err := GetModelPricing(req.Agent.Model)
	if err != nil {
		return nil, err
	}

	contest, submissions, err := GetContestWithSubmissions(req.ContestID)
	if err != nil {
		return nil, err
	}
	if len(submissions) == 0 {
		return nil, ErrNoSubmissions
	}

	prompt := BuildJudgePrompt(req.Agent.Personality, contest, submissions)

	exec, err := e.createExecution(req.User, req.Agent, &req.ContestID)
	if err != nil {
		return nil, err
	}

	resp, duration, err := e.callProvider(ctx, exec, pricing, prompt, judgeMaxTokens)
	if err != nil {
		return nil, err
	}

	// A judge response that cannot be fully and unambiguously mapped
	// yields an empty vote set; the incurred cost is still charged.
	output := ParseJudgeResponse(resp.Content, submissions)

	cost := ComputeCost(pricing, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, e.Pricing)
	if err := e.commit(exec, req.User, cost, resp.Usage, output); err != nil {
		return nil, err
	}

	e.recordDebug(exec, req.User, req.Agent, prompt, resp, cost, duration, output, models.JSON{
		"contest_id":  req.ContestID,
		"submissions": len(submissions),
	})

	return &JudgeResult{
		ExecutionID:    exec.ID,
		Output:         output,
		CreditsCharged: cost.Credits,
	}, nil
}

// createExecution writes the pending audit row. If this write fails the
// execution is refused: without an audit record nothing may run.
func (e *ExecutionEngine) createExecution(user *models.User, agent *models.Agent, contestID *uint) (*models.AgentExecution, error) {
	exec := &models.AgentExecution{
		ID:        uuid.New().String(),
		AgentID:   agent.ID,
		UserID:    user.ID,
		Type:      agent.Type,
		ContestID: contestID,
		Model:     agent.Model,
		Status:    models.ExecutionStatusPending,
	}
	if err := database.DB.Create(exec).Error; err != nil {
		return nil, err
	}
	return exec, nil
}

// callProvider performs the balance precheck and the LLM call. Any
// error on this path marks the execution failed without a charge.
func (e *ExecutionEngine) callProvider(ctx context.Context, exec *models.AgentExecution, pricing *models.ModelPricing, prompt string, maxTokens int) (*llm.Response, time.Duration, error) {
	est := ComputeCost(pricing, llm.EstimateTokens(prompt), maxTokens, e.Pricing)
	if err := PrecheckBalance(exec.UserID, est.Credits); err != nil {
		e.failExecution(exec, err)
		return nil, 0, err
	}

	e.setStatus(exec, models.ExecutionStatusRunning)

	provider, err := e.Providers.Get(pricing.Provider)
	if err != nil {
		e.failExecution(exec, err)
		return nil, 0, err
	}

	// The call runs outside any balance lock; holding it for the
	// duration of network I/O would serialize all of a user's traffic.
	callCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := provider.Complete(callCtx, &llm.Request{
		Model:     pricing.ModelID,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		// Cancellation and provider failure end the same way: the
		// execution is terminal and the ledger is never touched.
		e.failExecution(exec, err)
		return nil, 0, err
	}

	return resp, duration, nil
}

// commit finalizes cost from actual usage, debits the ledger and marks
// the execution completed. The debit may overdraw: the provider cost is
// already incurred, so it is charged even when the estimate undershot.
func (e *ExecutionEngine) commit(exec *models.AgentExecution, user *models.User, cost *CostBreakdown, usage llm.Usage, result interface{}) error {
	entry, err := DebitCredits(LedgerOp{
		UserID:        user.ID,
		Amount:        cost.Credits,
		Type:          models.LedgerTypeConsumption,
		Reason:        fmt.Sprintf("%s execution %s (model %s)", exec.Type, exec.ID, exec.Model),
		Operator:      user.Username,
		OperatorID:    user.ID,
		ReferenceType: "execution",
		ReferenceID:   exec.ID,
		AllowNegative: true,
	})
	if err != nil {
		// The financial transaction rolled back; the audit record
		// still becomes terminal through its own write path.
		e.failExecution(exec, err)
		return err
	}

	if entry.BalanceAfter < 0 {
		zap.L().Warn("execution cost overdrew balance",
			zap.String("execution_id", exec.ID),
			zap.Uint("user_id", user.ID),
			zap.Int64("balance_after", entry.BalanceAfter))
	}

	now := time.Now()
	exec.Status = models.ExecutionStatusCompleted
	exec.CompletedAt = &now
	exec.CreditsCharged = cost.Credits
	exec.PromptTokens = usage.PromptTokens
	exec.CompletionTokens = usage.CompletionTokens
	if data, err := json.Marshal(result); err == nil {
		exec.Result = datatypes.JSON(data)
	}

	if err := database.DB.Save(exec).Error; err != nil {
		// The charge stands; only the terminal update failed.
		zap.L().Error("failed to persist completed execution",
			zap.String("execution_id", exec.ID), zap.Error(err))
	}
	return nil
}

func (e *ExecutionEngine) setStatus(exec *models.AgentExecution, status models.ExecutionStatus) {
	exec.Status = status
	if err := database.DB.Save(exec).Error; err != nil {
		zap.L().Error("failed to update execution status",
			zap.String("execution_id", exec.ID), zap.Error(err))
	}
}

func (e *ExecutionEngine) failExecution(exec *models.AgentExecution, cause error) {
	now := time.Now()
	exec.Status = models.ExecutionStatusFailed
	exec.CompletedAt = &now
	exec.ErrorLog = cause.Error()
	if err := database.DB.Save(exec).Error; err != nil {
		zap.L().Error("failed to persist failed execution",
			zap.String("execution_id", exec.ID), zap.Error(err))
	}
}

func (e *ExecutionEngine) recordDebug(exec *models.AgentExecution, user *models.User, agent *models.Agent, prompt string, resp *llm.Response, cost *CostBreakdown, duration time.Duration, parsed interface{}, strategyInput models.JSON) {
	if !e.Debug.Enabled() {
		return
	}

	entry := &models.DebugLogEntry{
		Operation:        agent.Type,
		UserID:           user.ID,
		AgentID:          agent.ID,
		ContestID:        exec.ContestID,
		ExecutionID:      exec.ID,
		Prompt:           prompt,
		RawResponse:      resp.Content,
		DurationMs:       duration.Milliseconds(),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		MonetaryCost:     cost.MonetaryCost,
		CreditsCharged:   cost.Credits,
	}
	if data, err := json.Marshal(strategyInput); err == nil {
		entry.StrategyInput = datatypes.JSON(data)
	}
	if data, err := json.Marshal(parsed); err == nil {
		entry.ParsedOutput = datatypes.JSON(data)
	}

	e.Debug.Record(entry)
}

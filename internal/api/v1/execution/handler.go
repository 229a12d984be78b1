package execution

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/llm"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

// Handler holds the execution engine for this route group.
type Handler struct {
	Engine *services.ExecutionEngine
}

func currentUser(c *gin.Context) models.User {
	val, _ := c.Get("user")
	return val.(models.User)
}

// loadAgentForUser resolves the agent and enforces access: the caller
// must own it or it must be public.
func loadAgentForUser(c *gin.Context, agentID uint, u *models.User) (*models.Agent, bool) {
	agent, err := services.GetAgentByID(agentID)
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		} else {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load agent"))
		}
		return nil, false
	}
	if agent.OwnerID != u.ID && !agent.IsPublic && u.Role != "admin" {
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Agent is private"))
		return nil, false
	}
	return agent, true
}

// ExecuteWriter runs a writer agent and returns its parsed output.
func (h *Handler) ExecuteWriter(c *gin.Context) {
	var input WriterExecutionInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u := currentUser(c)
	agent, ok := loadAgentForUser(c, input.AgentID, &u)
	if !ok {
		return
	}

	result, err := h.Engine.ExecuteWriter(c.Request.Context(), services.WriterRequest{
		User:     &u,
		Agent:    agent,
		Title:    input.Title,
		Guidance: input.Guidance,
	})
	if err != nil {
		respondExecutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Writer execution completed", result))
}

// ExecuteJudge runs a judge agent against a contest.
func (h *Handler) ExecuteJudge(c *gin.Context) {
	var input JudgeExecutionInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u := currentUser(c)
	agent, ok := loadAgentForUser(c, input.AgentID, &u)
	if !ok {
		return
	}

	result, err := h.Engine.ExecuteJudge(c.Request.Context(), services.JudgeRequest{
		User:      &u,
		Agent:     agent,
		ContestID: input.ContestID,
	})
	if err != nil {
		respondExecutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Judge execution completed", result))
}

// Estimate returns the credit estimate for an execution without
// calling any provider or charging anything.
func (h *Handler) Estimate(c *gin.Context) {
	var input EstimateInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u := currentUser(c)
	agent, ok := loadAgentForUser(c, input.AgentID, &u)
	if !ok {
		return
	}

	credits, err := h.Engine.EstimateCost(agent.Type, agent.Model, input.ContextSize)
	if err != nil {
		if errors.Is(err, services.ErrUnknownModel) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to estimate cost"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Cost estimated", EstimateResponse{
		AgentID:          agent.ID,
		Model:            agent.Model,
		EstimatedCredits: credits,
	}))
}

// List returns the caller's execution history.
func (h *Handler) List(c *gin.Context) {
	u := currentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := services.ExecutionFilter{
		UserID: &u.ID,
		Page:   page,
		Limit:  limit,
	}
	if s := c.Query("status"); s != "" {
		status := models.ExecutionStatus(s)
		filter.Status = &status
	}
	if t := c.Query("type"); t != "" {
		agentType := models.AgentType(t)
		filter.Type = &agentType
	}

	executions, total, err := services.FindExecutions(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list executions"))
		return
	}

	items := make([]ExecutionResponse, len(executions))
	for i := range executions {
		items[i] = toExecutionResponse(&executions[i])
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Executions retrieved", utils.PagedData{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// Get returns one execution row owned by the caller.
func (h *Handler) Get(c *gin.Context) {
	u := currentUser(c)

	exec, err := services.GetExecutionByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrExecutionNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load execution"))
		return
	}
	if exec.UserID != u.ID && u.Role != "admin" {
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Execution belongs to another user"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Execution retrieved", toExecutionResponse(exec)))
}

func respondExecutionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownModel):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.Is(err, services.ErrWrongAgentType):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.Is(err, services.ErrNoSubmissions):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.Is(err, services.ErrContestNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
	case errors.Is(err, services.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, utils.NewErrorResponse(http.StatusPaymentRequired, err.Error()))
	case errors.Is(err, llm.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, "LLM provider call failed"))
	default:
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Execution failed"))
	}
}

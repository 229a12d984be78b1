package agent

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

func currentUser(c *gin.Context) models.User {
	val, _ := c.Get("user")
	return val.(models.User)
}

// Create registers a new agent owned by the caller.
func Create(c *gin.Context) {
	var input CreateAgentInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u := currentUser(c)
	agent := &models.Agent{
		Name:        input.Name,
		Type:        models.AgentType(input.Type),
		OwnerID:     u.ID,
		Personality: input.Personality,
		Model:       input.Model,
		IsPublic:    input.IsPublic,
	}

	if err := services.CreateAgent(agent); err != nil {
		if errors.Is(err, services.ErrInvalidAgent) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create agent"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Agent created", toAgentResponse(agent)))
}

// Get returns one agent if the caller owns it or it is public.
func Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid agent ID"))
		return
	}

	agent, err := services.GetAgentByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load agent"))
		return
	}

	u := currentUser(c)
	if agent.OwnerID != u.ID && !agent.IsPublic && u.Role != "admin" {
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Agent is private"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Agent retrieved", toAgentResponse(agent)))
}

// List returns the caller's agents plus public ones.
func List(c *gin.Context) {
	u := currentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := services.AgentFilter{
		OwnerID:    &u.ID,
		PublicOnly: true,
		Page:       page,
		Limit:      limit,
	}
	if t := c.Query("type"); t != "" {
		agentType := models.AgentType(t)
		filter.Type = &agentType
	}

	agents, total, err := services.FindAgents(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list agents"))
		return
	}

	items := make([]AgentResponse, len(agents))
	for i := range agents {
		items[i] = toAgentResponse(&agents[i])
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Agents retrieved", utils.PagedData{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// Update edits an agent the caller owns.
func Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid agent ID"))
		return
	}

	var input UpdateAgentInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Personality != nil {
		updates["personality"] = *input.Personality
	}
	if input.Model != nil {
		updates["model"] = *input.Model
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	u := currentUser(c)
	agent, err := services.UpdateAgent(uint(id), &u, updates)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAgentNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrAgentForbidden):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update agent"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Agent updated", toAgentResponse(agent)))
}

// Delete removes an agent. Blocked while executions still reference it.
func Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid agent ID"))
		return
	}

	u := currentUser(c)
	if err := services.DeleteAgent(uint(id), &u); err != nil {
		switch {
		case errors.Is(err, services.ErrAgentNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrAgentForbidden):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, services.ErrAgentBusy):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to delete agent"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Agent deleted", nil))
}

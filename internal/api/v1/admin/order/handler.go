package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

type CreateOrderInput struct {
	UserID    uint    `json:"user_id" binding:"required"`
	Credits   int64   `json:"credits" binding:"required,min=1"`
	AmountUSD float64 `json:"amount_usd" binding:"min=0"`
	Manual    bool    `json:"manual"`
	Remark    string  `json:"remark"`
}

func adminUser(c *gin.Context) models.User {
	val, _ := c.Get("user")
	u, _ := val.(models.User)
	return u
}

// Create opens a pending credit order for a user.
func Create(c *gin.Context) {
	var input CreateOrderInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	var order *models.CreditOrder
	var err error
	if input.Manual {
		order, err = services.CreateManualOrder(input.UserID, input.Credits, input.Remark)
	} else {
		order, err = services.CreateOrder(input.UserID, input.Credits, input.AmountUSD)
	}
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrderInput) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create order"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Order created", order))
}

// Complete marks an order paid and credits the buyer. A second call on
// the same order is rejected.
func Complete(c *gin.Context) {
	admin := adminUser(c)

	order, err := services.CompleteOrder(c.Param("id"), admin.Username, admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrOrderNotPending):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to complete order"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Order completed", order))
}

// Cancel voids a pending order.
func Cancel(c *gin.Context) {
	admin := adminUser(c)

	order, err := services.CancelOrder(c.Param("id"), admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrOrderNotPending):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to cancel order"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Order cancelled", order))
}

// List returns orders filtered by user or status.
func List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := services.OrderFilter{Page: page, Limit: limit}
	if userIDStr, exists := c.GetQuery("user_id"); exists {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user_id"))
			return
		}
		uid := uint(userID)
		filter.UserID = &uid
	}
	if status, exists := c.GetQuery("status"); exists {
		filter.Status = &status
	}

	orders, total, err := services.FindOrders(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Orders retrieved", utils.PagedData{
		Items: orders,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

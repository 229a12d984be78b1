package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

// CurrentUser returns the authenticated user's profile and balance.
func CurrentUser(c *gin.Context) {
	val, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Not authenticated"))
		return
	}
	u := val.(models.User)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User retrieved", UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
	}))
}

// Balance returns the live balance, bypassing the cached user object.
func Balance(c *gin.Context) {
	val, _ := c.Get("user")
	u := val.(models.User)

	balance, err := services.GetBalance(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to read balance"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance retrieved", gin.H{"balance": balance}))
}

// LedgerHistory returns the authenticated user's credit history.
func LedgerHistory(c *gin.Context) {
	val, _ := c.Get("user")
	u := val.(models.User)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	entries, total, err := services.FindLedgerEntries(services.LedgerFilter{
		UserID: &u.ID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list ledger entries"))
		return
	}

	items := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = LedgerEntryResponse{
			ID:            e.ID,
			CreatedAt:     e.CreatedAt,
			Type:          string(e.Type),
			Amount:        e.Amount,
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			Reason:        e.Reason,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
		}
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Ledger entries retrieved", utils.PagedData{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

package ledger

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

func parseLedgerFilter(c *gin.Context) (services.LedgerFilter, error) {
	filter := services.LedgerFilter{Page: 1, Limit: 20}

	if userIDStr, exists := c.GetQuery("user_id"); exists {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			return filter, fmt.Errorf("invalid user_id")
		}
		uid := uint(userID)
		filter.UserID = &uid
	}
	if typeStr, exists := c.GetQuery("type"); exists {
		t := models.LedgerEntryType(typeStr)
		filter.Type = &t
	}
	if startTimeStr, exists := c.GetQuery("start_time"); exists {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			return filter, fmt.Errorf("invalid start_time format")
		}
		filter.StartTime = &startTime
	}
	if endTimeStr, exists := c.GetQuery("end_time"); exists {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			return filter, fmt.Errorf("invalid end_time format")
		}
		filter.EndTime = &endTime
	}

	return filter, nil
}

// List returns a paginated, filtered view of the full credit ledger.
func List(c *gin.Context) {
	filter, err := parseLedgerFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid pagination parameters"))
		return
	}
	filter.Page = page
	filter.Limit = limit

	entries, total, err := services.FindLedgerEntries(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch ledger entries"))
		return
	}

	items := make([]LedgerListItem, len(entries))
	for i, e := range entries {
		items[i] = LedgerListItem{
			ID:            e.ID,
			CreatedAt:     e.CreatedAt,
			UserID:        e.UserID,
			Amount:        e.Amount,
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			Type:          e.Type,
			Reason:        e.Reason,
			Operator:      e.Operator,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
			Hash:          e.Hash,
		}
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Ledger entries retrieved successfully", utils.PagedData{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// Export streams the filtered ledger as CSV.
func Export(c *gin.Context) {
	filter, err := parseLedgerFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	// Hard cap for safety.
	filter.Page = 1
	filter.Limit = 10000

	entries, _, err := services.FindLedgerEntries(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch ledger entries"))
		return
	}

	csvData, err := services.GenerateLedgerCSV(entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate CSV"))
		return
	}

	filename := fmt.Sprintf("ledger_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", csvData)
}

// Adjust applies a manual admin balance change through the ledger.
func Adjust(c *gin.Context) {
	var input AdjustInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	val, _ := c.Get("user")
	admin, _ := val.(models.User)

	op := services.LedgerOp{
		UserID:        input.UserID,
		Type:          models.LedgerTypeAdminAdjustment,
		Reason:        input.Reason,
		Operator:      admin.Username,
		OperatorID:    admin.ID,
		ReferenceType: "admin",
	}

	var entry *models.CreditLedgerEntry
	var err error
	if input.Amount >= 0 {
		op.Amount = input.Amount
		entry, err = services.CreditCredits(op)
	} else {
		op.Amount = -input.Amount
		entry, err = services.DebitCredits(op)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrInsufficientCredits):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to adjust balance"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance adjusted", entry))
}

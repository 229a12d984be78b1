package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	userdto "github.com/altovacio/duelo-de-plumas-sub002/internal/api/v1/user"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

type UpdateUserInput struct {
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// List returns all users, paginated.
func List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := services.FindUsers(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list users"))
		return
	}

	items := make([]userdto.UserResponse, len(users))
	for i, u := range users {
		items[i] = userdto.UserResponse{
			ID:        u.ID,
			Username:  u.Username,
			Role:      u.Role,
			Balance:   u.Balance,
			CreatedAt: u.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved", utils.PagedData{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// Get returns one user.
func Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	u, err := services.FindUserByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load user"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User retrieved", userdto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
	}))
}

// Update edits a user's password or role. Balance is not editable
// here; admins adjust balances through the ledger endpoint.
func Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user ID"))
		return
	}

	var input UpdateUserInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	updates := map[string]interface{}{}
	if input.Password != nil {
		updates["password"] = *input.Password
	}
	if input.Role != nil {
		if *input.Role != "user" && *input.Role != "admin" {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Role must be 'user' or 'admin'"))
			return
		}
		updates["role"] = *input.Role
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	val, _ := c.Get("user")
	admin, _ := val.(models.User)

	u, err := services.UpdateUser(uint(id), updates, admin.Username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
		case errors.Is(err, services.ErrOptimisticLock):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update user"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User updated", userdto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Balance:  u.Balance,
	}))
}

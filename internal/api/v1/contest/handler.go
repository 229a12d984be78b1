package contest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/services"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/utils"
)

type CreateContestInput struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
}

type CreateSubmissionInput struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required"`
}

// Create opens a new contest.
func Create(c *gin.Context) {
	var input CreateContestInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	contest := &models.Contest{
		Title:       input.Title,
		Description: input.Description,
	}
	if err := services.CreateContest(contest); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create contest"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Contest created", contest))
}

// List returns a paginated contest list.
func List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	contests, total, err := services.FindContests(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to list contests"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Contests retrieved", utils.PagedData{
		Items: contests,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}

// Get returns one contest with its submissions.
func Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid contest ID"))
		return
	}

	contest, submissions, err := services.GetContestWithSubmissions(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrContestNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load contest"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Contest retrieved", gin.H{
		"contest":     contest,
		"submissions": submissions,
	}))
}

// Submit adds a text to a contest on behalf of the caller.
func Submit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid contest ID"))
		return
	}

	var input CreateSubmissionInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	val, _ := c.Get("user")
	u := val.(models.User)

	submission := &models.Submission{
		ContestID: uint(id),
		AuthorID:  u.ID,
		Title:     input.Title,
		Content:   input.Content,
	}
	if err := services.CreateSubmission(submission); err != nil {
		if errors.Is(err, services.ErrContestNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to create submission"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Submission created", submission))
}

package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var ErrContestNotFound = errors.New("contest not found")

// GetContestWithSubmissions loads the judge context for a contest.
// Contest lifecycle is owned elsewhere; this is a read-only collaborator
// fetch.
func GetContestWithSubmissions(contestID uint) (*models.Contest, []models.Submission, error) {
	var contest models.Contest
	if err := database.DB.First(&contest, contestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrContestNotFound
		}
		return nil, nil, err
	}

	var submissions []models.Submission
	if err := database.DB.Where("contest_id = ?", contestID).
		Order("id asc").Find(&submissions).Error; err != nil {
		return nil, nil, err
	}

	return &contest, submissions, nil
}

// CreateContest persists a new contest.
func CreateContest(contest *models.Contest) error {
	return database.DB.Create(contest).Error
}

// CreateSubmission adds a text to a contest.
func CreateSubmission(submission *models.Submission) error {
	var contest models.Contest
	if err := database.DB.First(&contest, submission.ContestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContestNotFound
		}
		return err
	}
	return database.DB.Create(submission).Error
}

// FindContests retrieves a paginated contest list.
func FindContests(page, limit int) ([]models.Contest, int64, error) {
	var contests []models.Contest
	var total int64

	if err := database.DB.Model(&models.Contest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := database.DB.Order("created_at desc").Limit(limit).Offset(offset).Find(&contests).Error; err != nil {
		return nil, 0, err
	}

	return contests, total, nil
}

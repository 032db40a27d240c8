package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
)

// goalService handles savings goals.
type goalService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db, now: time.Now}
}

// CreateGoal creates a goal with no progress. The target date must lie in
// the future.
func (s *goalService) CreateGoal(userID string, input GoalInput) (*models.Goal, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal title is required")
	}
	if err := positiveAmount("target amount", input.TargetAmount); err != nil {
		return nil, err
	}
	if !input.TargetDate.After(s.now()) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target date must be in the future")
	}

	goal := &models.Goal{
		UserID:        userID,
		Title:         title,
		Description:   input.Description,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: decimal.Zero,
		TargetDate:    input.TargetDate.UTC(),
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetUserGoals lists goals by nearest target date.
func (s *goalService) GetUserGoals(userID string) ([]models.Goal, error) {
	goals := []models.Goal{}
	if err := s.db.Where("user_id = ?", userID).Order("target_date ASC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// GetGoalByID retrieves a goal owned by the user.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal patches the descriptive fields and target of a goal.
func (s *goalService) UpdateGoal(userID, goalID string, fields GoalUpdateFields) (*models.Goal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal title cannot be empty")
		}
		updates["title"] = title
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.TargetAmount != nil {
		if err := positiveAmount("target amount", *fields.TargetAmount); err != nil {
			return nil, err
		}
		updates["target_amount"] = *fields.TargetAmount
	}
	if fields.TargetDate != nil {
		updates["target_date"] = fields.TargetDate.UTC()
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetGoalByID(userID, goalID)
}

// DeleteGoal unlinks the goal's transactions and removes it.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		owned, err := ownsRow(tx, &models.Goal{}, userID, goalID)
		if err != nil {
			return err
		}
		if !owned {
			return apperrors.ErrGoalNotFound
		}

		err = tx.Model(&models.Transaction{}).
			Where("user_id = ? AND goal_id = ?", userID, goalID).
			Update("goal_id", nil).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.Goal{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetGoalProgress projects the goal's progress at the current instant.
func (s *goalService) GetGoalProgress(userID, goalID string) (*GoalProgress, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	progress := ComputeGoalProgress(goal, s.now())
	return &progress, nil
}

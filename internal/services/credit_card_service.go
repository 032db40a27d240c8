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

// creditCardService handles credit card business logic.
type creditCardService struct {
	db *gorm.DB
}

// NewCreditCardService creates a new CreditCardServicer.
func NewCreditCardService(db *gorm.DB) CreditCardServicer {
	return &creditCardService{db: db}
}

// CreditCardStats is the current-month usage of one card.
type CreditCardStats struct {
	CreditCardID         string          `json:"credit_card_id"`
	Limit                decimal.Decimal `json:"limit"`
	TotalSpent           decimal.Decimal `json:"total_spent"`
	AvailableLimit       decimal.Decimal `json:"available_limit"`
	LimitUsagePercentage float64         `json:"limit_usage_percentage"`
	TransactionsCount    int             `json:"transactions_count"`
}

// CreateCreditCard creates a new credit card
func (s *creditCardService) CreateCreditCard(userID string, input CreditCardInput) (*models.CreditCard, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit card name is required")
	}
	if err := positiveAmount("limit", input.Limit); err != nil {
		return nil, err
	}
	if !validDay(input.ClosingDay) || !validDay(input.DueDay) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "closing and due days must be between 1 and 31")
	}

	card := &models.CreditCard{
		UserID:     userID,
		Name:       name,
		Limit:      input.Limit,
		ClosingDay: input.ClosingDay,
		DueDay:     input.DueDay,
	}
	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// GetUserCreditCards lists a user's cards, newest first.
func (s *creditCardService) GetUserCreditCards(userID string) ([]models.CreditCard, error) {
	cards := []models.CreditCard{}
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cards, nil
}

// GetCreditCardByID retrieves a card owned by the user.
func (s *creditCardService) GetCreditCardByID(userID, cardID string) (*models.CreditCard, error) {
	var card models.CreditCard
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCreditCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCreditCard applies a partial update to a card.
func (s *creditCardService) UpdateCreditCard(userID, cardID string, fields CreditCardUpdateFields) (*models.CreditCard, error) {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit card name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.Limit != nil {
		if err := positiveAmount("limit", *fields.Limit); err != nil {
			return nil, err
		}
		updates["credit_limit"] = *fields.Limit
	}
	if fields.ClosingDay != nil {
		if !validDay(*fields.ClosingDay) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "closing day must be between 1 and 31")
		}
		updates["closing_day"] = *fields.ClosingDay
	}
	if fields.DueDay != nil {
		if !validDay(*fields.DueDay) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 31")
		}
		updates["due_day"] = *fields.DueDay
	}

	if len(updates) > 0 {
		if err := s.db.Model(card).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetCreditCardByID(userID, cardID)
}

// DeleteCreditCard removes a card no transaction references.
func (s *creditCardService) DeleteCreditCard(userID, cardID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		owned, err := ownsRow(tx, &models.CreditCard{}, userID, cardID)
		if err != nil {
			return err
		}
		if !owned {
			return apperrors.ErrCreditCardNotFound
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).Where("credit_card_id = ?", cardID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrCreditCardInUse
		}

		if err := tx.Where("id = ? AND user_id = ?", cardID, userID).Delete(&models.CreditCard{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetCreditCardStats reports the card's spend in the current calendar month.
// Every expense on the card counts, paid or not.
func (s *creditCardService) GetCreditCardStats(userID, cardID string) (*CreditCardStats, error) {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	var amounts []decimal.Decimal
	start, end := monthWindow(time.Now().UTC())
	err = s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND credit_card_id = ? AND type = ? AND date >= ? AND date < ?",
			userID, cardID, models.TransactionTypeExpense, start, end).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := decimal.Sum(decimal.Zero, amounts...)
	return &CreditCardStats{
		CreditCardID:         card.ID,
		Limit:                card.Limit,
		TotalSpent:           spent,
		AvailableLimit:       card.Limit.Sub(spent),
		LimitUsagePercentage: percentage(spent, card.Limit),
		TransactionsCount:    len(amounts),
	}, nil
}

func validDay(day int) bool {
	return day >= 1 && day <= 31
}

// Package seed loads demo data for local development.
package seed

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "juntos/internal/errors"
	"juntos/internal/logger"
	"juntos/internal/models"
	"juntos/internal/services"
)

// Demo login credentials.
const (
	DemoEmail    = "admin@juntos.com"
	DemoPassword = "123456"
)

// ErrAlreadySeeded is returned when the demo user already exists.
var ErrAlreadySeeded = errors.New("demo data already present")

var demoCategories = []services.CategoryInput{
	{Name: "Alimentação", Type: models.CategoryTypeExpense, Color: "#FF6B6B", Icon: "restaurant"},
	{Name: "Transporte", Type: models.CategoryTypeExpense, Color: "#4ECDC4", Icon: "directions_car"},
	{Name: "Salário", Type: models.CategoryTypeIncome, Color: "#45B7D1", Icon: "attach_money"},
	{Name: "Freelance", Type: models.CategoryTypeIncome, Color: "#96CEB4", Icon: "laptop_mac"},
}

// Result lists what Run created.
type Result struct {
	User       *models.User
	Categories []models.Category
	Account    *models.Account
	CreditCard *models.CreditCard
}

// Run creates the demo user with a few categories, a checking account and
// a credit card. It goes through the services so every record obeys the
// same rules as API writes.
func Run(db *gorm.DB) (*Result, error) {
	log := logger.Get()

	user, err := services.NewUserService(db).CreateUser(DemoEmail, DemoPassword, "Administrador")
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, ErrAlreadySeeded
		}
		return nil, fmt.Errorf("create demo user: %w", err)
	}
	log.Infow("seeded user", "email", user.Email)

	result := &Result{User: user}

	categoryService := services.NewCategoryService(db)
	for _, input := range demoCategories {
		category, err := categoryService.CreateCategory(user.ID, input)
		if err != nil {
			return nil, fmt.Errorf("create category %s: %w", input.Name, err)
		}
		result.Categories = append(result.Categories, *category)
	}
	log.Infow("seeded categories", "count", len(result.Categories))

	result.Account, err = services.NewAccountService(db).CreateAccount(user.ID, services.AccountInput{
		Name:           "Conta Corrente",
		Type:           models.AccountTypeChecking,
		InitialBalance: decimal.RequireFromString("1500.00"),
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	log.Infow("seeded account", "name", result.Account.Name)

	result.CreditCard, err = services.NewCreditCardService(db).CreateCreditCard(user.ID, services.CreditCardInput{
		Name:       "Cartão Principal",
		Limit:      decimal.RequireFromString("3000.00"),
		ClosingDay: 5,
		DueDay:     10,
	})
	if err != nil {
		return nil, fmt.Errorf("create credit card: %w", err)
	}
	log.Infow("seeded credit card", "name", result.CreditCard.Name)

	return result, nil
}

package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CategoryStats counts a user's categories by type and status.
type CategoryStats struct {
	Total    int64 `json:"total"`
	Income   int64 `json:"income"`
	Expense  int64 `json:"expense"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type defaultCategory struct {
	name  string
	kind  models.CategoryType
	color string
	icon  string
}

// defaultCategories is the starter set offered to new users.
var defaultCategories = []defaultCategory{
	{"Salário", models.CategoryTypeIncome, "#10B981", "briefcase"},
	{"Freelance", models.CategoryTypeIncome, "#3B82F6", "laptop"},
	{"Investimentos", models.CategoryTypeIncome, "#8B5CF6", "trending-up"},
	{"Vendas", models.CategoryTypeIncome, "#F59E0B", "shopping-bag"},
	{"Outros", models.CategoryTypeIncome, "#6B7280", "plus-circle"},
	{"Alimentação", models.CategoryTypeExpense, "#EF4444", "utensils"},
	{"Transporte", models.CategoryTypeExpense, "#F97316", "car"},
	{"Moradia", models.CategoryTypeExpense, "#84CC16", "home"},
	{"Saúde", models.CategoryTypeExpense, "#06B6D4", "heart"},
	{"Educação", models.CategoryTypeExpense, "#6366F1", "book"},
	{"Lazer", models.CategoryTypeExpense, "#EC4899", "film"},
	{"Compras", models.CategoryTypeExpense, "#A855F7", "shopping-cart"},
	{"Serviços", models.CategoryTypeExpense, "#64748B", "tool"},
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID string, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !validCategoryType(input.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category type")
	}

	taken, err := s.nameTaken(userID, name, input.Type, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		UserID:      userID,
		Name:        name,
		Type:        input.Type,
		Description: input.Description,
		Icon:        input.Icon,
		Color:       input.Color,
		IsActive:    true,
	}

	if err := s.db.Create(category).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves the categories of a user ordered by name.
func (s *categoryService) GetUserCategories(userID string, filter CategoryFilter) ([]models.Category, error) {
	query := s.db.Where("user_id = ?", userID)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	categories := []models.Category{}
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates a category
func (s *categoryService) UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	name := category.Name
	if fields.Name != nil {
		name = strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		updates["name"] = name
	}
	kind := category.Type
	if fields.Type != nil {
		if !validCategoryType(*fields.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category type")
		}
		kind = *fields.Type
		updates["type"] = kind
	}
	if name != category.Name || kind != category.Type {
		taken, err := s.nameTaken(userID, name, kind, category.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrDuplicateCategory
		}
	}

	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if apperrors.IsUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateCategory
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetCategoryByID(userID, categoryID)
}

// DeleteCategory removes a category no transaction uses.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		owned, err := ownsRow(tx, &models.Category{}, userID, categoryID)
		if err != nil {
			return err
		}
		if !owned {
			return apperrors.ErrCategoryNotFound
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrCategoryInUse
		}

		if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).Delete(&models.Category{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateDefaultCategories seeds the starter categories. Names the user
// already has for the same type are skipped, so the call is repeatable.
func (s *categoryService) CreateDefaultCategories(userID string) ([]models.Category, error) {
	created := []models.Category{}
	for _, d := range defaultCategories {
		taken, err := s.nameTaken(userID, d.name, d.kind, "")
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		category := models.Category{
			UserID:   userID,
			Name:     d.name,
			Type:     d.kind,
			Color:    d.color,
			Icon:     d.icon,
			IsActive: true,
		}
		if err := s.db.Create(&category).Error; err != nil {
			if apperrors.IsUniqueViolation(err) {
				continue
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created = append(created, category)
	}
	return created, nil
}

// GetCategoryStats counts categories by type and active flag.
func (s *categoryService) GetCategoryStats(userID string) (*CategoryStats, error) {
	var categories []models.Category
	if err := s.db.Select("type", "is_active").Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats := &CategoryStats{Total: int64(len(categories))}
	for i := range categories {
		if categories[i].Type == models.CategoryTypeIncome {
			stats.Income++
		} else {
			stats.Expense++
		}
		if categories[i].IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

func (s *categoryService) nameTaken(userID, name string, kind models.CategoryType, excludeID string) (bool, error) {
	query := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ? AND type = ?", userID, name, kind)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func validCategoryType(t models.CategoryType) bool {
	return t == models.CategoryTypeIncome || t == models.CategoryTypeExpense
}

package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category
type Category struct {
	Base
	UserID      string       `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name_type" json:"user_id"`
	Name        string       `gorm:"not null;uniqueIndex:idx_categories_user_name_type" json:"name"`
	Type        CategoryType `gorm:"not null;uniqueIndex:idx_categories_user_name_type" json:"type"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
	IsActive    bool         `gorm:"not null;default:true" json:"is_active"`
}

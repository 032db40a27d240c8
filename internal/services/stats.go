package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"juntos/internal/models"
)

const topCategoryCount = 5

// CategoryTotal is one row of a per-category breakdown.
type CategoryTotal struct {
	CategoryID string              `json:"category_id"`
	Name       string              `json:"name"`
	Type       models.CategoryType `json:"type"`
	Color      string              `json:"color"`
	Icon       string              `json:"icon"`
	Total      decimal.Decimal     `json:"total"`
	Count      int                 `json:"count"`
	Percentage float64             `json:"percentage"`
}

// monthWindow returns [first instant of t's month, first instant of the next).
func monthWindow(t time.Time) (time.Time, time.Time) {
	return monthRange(t.Year(), t.Month())
}

func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func sumByType(txns []models.Transaction, txType models.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for i := range txns {
		if txns[i].Type == txType {
			total = total.Add(txns[i].Amount)
		}
	}
	return total
}

// rankCategories groups txns by category, optionally restricted to one type,
// and returns the largest totals first. Percentage is each total's share of
// the grouped sum. Transactions must have Category preloaded for names.
func rankCategories(txns []models.Transaction, txType *models.TransactionType, limit int) []CategoryTotal {
	byID := make(map[string]*CategoryTotal)
	order := make([]string, 0)
	grand := decimal.Zero

	for i := range txns {
		t := &txns[i]
		if txType != nil && t.Type != *txType {
			continue
		}
		row, ok := byID[t.CategoryID]
		if !ok {
			row = &CategoryTotal{CategoryID: t.CategoryID, Total: decimal.Zero}
			if t.Category != nil {
				row.Name = t.Category.Name
				row.Type = t.Category.Type
				row.Color = t.Category.Color
				row.Icon = t.Category.Icon
			}
			byID[t.CategoryID] = row
			order = append(order, t.CategoryID)
		}
		row.Total = row.Total.Add(t.Amount)
		row.Count++
		grand = grand.Add(t.Amount)
	}

	result := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		row := byID[id]
		row.Percentage = percentage(row.Total, grand)
		result = append(result, *row)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total.GreaterThan(result[j].Total)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

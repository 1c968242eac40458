package service

import (
	"sort"

	"moni/models"
)

// CategoryStat 单个分类的收支汇总
type CategoryStat struct {
	Category string  `json:"category"`
	Expense  float64 `json:"expense"`
	Income   float64 `json:"income"`
}

// DailyExpense 单日支出
type DailyExpense struct {
	Date    string  `json:"date"`
	Expense float64 `json:"expense"`
}

// SumByType 按类型汇总金额，空集合返回 0
func SumByType(txs []models.Transaction, txType string) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Type == txType {
			total += tx.Amount
		}
	}
	return total
}

// SumForCategory 按分类和类型汇总金额，空集合返回 0
func SumForCategory(txs []models.Transaction, categoryID uint, txType string) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Type == txType && tx.CategoryID != nil && *tx.CategoryID == categoryID {
			total += tx.Amount
		}
	}
	return total
}

// GroupByCategory 按给定分类集合逐一计算收入/支出汇总
// includeZero 为 false 时跳过当期没有任何收支的分类（周报用），
// 为 true 时保留零活动分类（月报/总览用）。
func GroupByCategory(txs []models.Transaction, categories []models.Category, includeZero bool) []CategoryStat {
	stats := make([]CategoryStat, 0, len(categories))
	for _, cat := range categories {
		expense := SumForCategory(txs, cat.ID, models.TypeExpense)
		income := SumForCategory(txs, cat.ID, models.TypeIncome)
		if !includeZero && expense == 0 && income == 0 {
			continue
		}
		stats = append(stats, CategoryStat{
			Category: cat.Name,
			Expense:  expense,
			Income:   income,
		})
	}
	return stats
}

// GroupByDay 按天汇总支出，跳过无支出的日期（稀疏序列），按日期升序返回
func GroupByDay(txs []models.Transaction) []DailyExpense {
	byDay := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != models.TypeExpense {
			continue
		}
		day := tx.TransactionDate.Format("2006-01-02")
		byDay[day] += tx.Amount
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	result := make([]DailyExpense, 0, len(days))
	for _, day := range days {
		result = append(result, DailyExpense{Date: day, Expense: byDay[day]})
	}
	return result
}

// TopNByExpense 按支出降序取前 n 个分类，支出相同保持原有顺序
func TopNByExpense(stats []CategoryStat, n int) []CategoryStat {
	sorted := make([]CategoryStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Expense > sorted[j].Expense
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

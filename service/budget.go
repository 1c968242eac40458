package service

import (
	"fmt"
	"time"

	"moni/database"
	"moni/models"
)

// MonthWindow 返回包含 date 的月份窗口 [start, end)
// 十二月跨年显式处理
func MonthWindow(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	var end time.Time
	if start.Month() == time.December {
		end = time.Date(start.Year()+1, time.January, 1, 0, 0, 0, 0, start.Location())
	} else {
		end = time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, start.Location())
	}
	return start, end
}

// BudgetWarning 预算预警检查
// 须在收支记录持久化之后调用：重新统计当月该分类的支出总额（包含刚写入的
// 那条记录），达到预警阈值则返回提示文案。没有匹配限额、限额非正等情况一律
// 静默返回空串，预警只是附加提示，从不阻断写入，也不产生错误响应。
//
// 注意：持久化与重新汇总并非原子操作，同一用户同分类同月的并发写入可能互相
// 漏记对方刚写入的金额，预警属于提示性质，这里接受该竞态。
func BudgetWarning(userID uint, category *models.Category, txDate time.Time) string {
	if category == nil {
		return ""
	}

	start, end := MonthWindow(txDate)

	var limit models.BudgetLimit
	if err := database.DB.Where("user_id = ? AND category_id = ? AND month = ?",
		userID, category.ID, start).First(&limit).Error; err != nil {
		// 未设置限额
		return ""
	}

	var expense float64
	database.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND category_id = ? AND type = ?", userID, category.ID, models.TypeExpense).
		Where("transaction_date >= ? AND transaction_date < ?", start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&expense)

	// 限额非正时百分比按 0 处理，避免除零
	percent := 0.0
	if limit.AmountLimit > 0 {
		percent = expense / limit.AmountLimit * 100
	}

	if percent >= limit.WarningThreshold {
		return fmt.Sprintf("分类「%s」本月支出已达预算限额的 %.1f%%", category.Name, percent)
	}
	return ""
}

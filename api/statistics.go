package api

import (
	"fmt"
	"time"

	"moni/database"
	"moni/middleware"
	"moni/models"
	"moni/service"

	"github.com/gin-gonic/gin"
)

// StatisticsHandler 统计报表处理器
type StatisticsHandler struct{}

// NewStatisticsHandler 创建统计报表处理器
func NewStatisticsHandler() *StatisticsHandler {
	return &StatisticsHandler{}
}

// WeeklySummaryResponse 周报响应
type WeeklySummaryResponse struct {
	Week          string                 `json:"week" example:"2025-06-09 - 2025-06-15"`
	TotalIncome   float64                `json:"total_income"`
	TotalExpense  float64                `json:"total_expense"`
	TopCategories []service.CategoryStat `json:"top_categories"`
}

// ExceededLimit 超出预算的限额条目
type ExceededLimit struct {
	Category      string  `json:"category"`
	Limit         float64 `json:"limit"`
	ActualExpense float64 `json:"actual_expense"`
}

// MonthlyReportResponse 月报响应
type MonthlyReportResponse struct {
	TotalIncome         float64                `json:"total_income"`
	TotalExpense        float64                `json:"total_expense"`
	Balance             float64                `json:"balance"`
	CategorySummary     []service.CategoryStat `json:"category_summary"`
	BudgetLimitExceeded []ExceededLimit        `json:"budget_limit_exceeded"`
}

// OverviewResponse 总览响应
type OverviewResponse struct {
	TotalIncome         float64                `json:"total_income"`
	TotalExpense        float64                `json:"total_expense"`
	Balance             float64                `json:"balance"`
	CategorySummary     []service.CategoryStat `json:"category_summary"`
	BudgetLimitExceeded []ExceededLimit        `json:"budget_limit_exceeded"`
	DailyExpense        []service.DailyExpense `json:"daily_expense"`
}

// fetchTransactions 拉取用户在窗口 [start, end) 内的收支记录；start/end 为零值时拉取全部
func fetchTransactions(userID uint, start, end time.Time) ([]models.Transaction, error) {
	query := database.DB.Where("user_id = ?", userID)
	if !start.IsZero() {
		query = query.Where("transaction_date >= ? AND transaction_date < ?", start, end)
	}
	var txs []models.Transaction
	err := query.Find(&txs).Error
	return txs, err
}

// visibleCategoriesIn 在记录集中出现过、且对当前用户可见的分类
func visibleCategoriesIn(txs []models.Transaction, userID uint) []models.Category {
	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, tx := range txs {
		if tx.CategoryID != nil && !seen[*tx.CategoryID] {
			seen[*tx.CategoryID] = true
			ids = append(ids, *tx.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var cats []models.Category
	database.DB.
		Where("id IN ?", ids).
		Where("is_default = ? OR user_id = ?", true, userID).
		Order("id ASC").
		Find(&cats)
	return cats
}

// exceededLimits 统计窗口内支出已达限额（>= amount_limit）的预算条目
// 比较对象是限额本身，与预警阈值无关；仅统计分类对当前用户仍可用的限额
func exceededLimits(txs []models.Transaction, limits []models.BudgetLimit, userID uint) []ExceededLimit {
	exceeded := make([]ExceededLimit, 0)
	for _, bl := range limits {
		if bl.Category == nil || !bl.Category.UsableBy(userID) {
			continue
		}
		expense := service.SumForCategory(txs, bl.CategoryID, models.TypeExpense)
		if expense >= bl.AmountLimit {
			exceeded = append(exceeded, ExceededLimit{
				Category:      bl.Category.Name,
				Limit:         bl.AmountLimit,
				ActualExpense: expense,
			})
		}
	}
	return exceeded
}

// WeeklySummary 周报
// @Summary 周报
// @Description 统计指定日期所在周（周一至周日）的总收入、总支出，以及按支出排序的前三个有收支活动的分类。不传 date 默认当前周。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param date query string false "周内任意日期 (2025-06-11)"
// @Success 200 {object} Response{data=WeeklySummaryResponse} "获取成功"
// @Failure 400 {object} Response "日期格式错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/weekly-summary [get]
func (h *StatisticsHandler) WeeklySummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	day := today()
	if dateStr := c.Query("date"); dateStr != "" {
		var err error
		day, err = parseDateOnly(dateStr)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
	}

	// ISO 周：周一为一周的第一天
	monday := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	sunday := monday.AddDate(0, 0, 6)

	txs, err := fetchTransactions(userID, monday, monday.AddDate(0, 0, 7))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	cats := visibleCategoriesIn(txs, userID)
	// 周报只列有收支活动的分类，取支出前三
	stats := service.GroupByCategory(txs, cats, false)
	top := service.TopNByExpense(stats, 3)

	Success(c, WeeklySummaryResponse{
		Week:          fmt.Sprintf("%s - %s", monday.Format("2006-01-02"), sunday.Format("2006-01-02")),
		TotalIncome:   service.SumByType(txs, models.TypeIncome),
		TotalExpense:  service.SumByType(txs, models.TypeExpense),
		TopCategories: top,
	})
}

// MonthlyReport 月报
// @Summary 月报
// @Description 统计指定月份的总收入、总支出、结余，本人全部分类的收支汇总（含零活动分类），以及支出已达限额的预算清单。不传 month 默认当前月。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份 (2025-03)"
// @Success 200 {object} Response{data=MonthlyReportResponse} "获取成功"
// @Failure 400 {object} Response "月份格式错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/monthly-report [get]
func (h *StatisticsHandler) MonthlyReport(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	ref := time.Now()
	if monthStr := c.Query("month"); monthStr != "" {
		t, err := time.ParseInLocation("2006-01", monthStr, time.Local)
		if err != nil {
			BadRequest(c, "月份格式错误，应为: 2006-01")
			return
		}
		ref = t
	}
	start, end := service.MonthWindow(ref)

	txs, err := fetchTransactions(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var limits []models.BudgetLimit
	database.DB.Preload("Category").
		Where("user_id = ? AND month = ?", userID, start).
		Find(&limits)

	// 月报固定列出本人创建的全部分类，包含零活动分类
	var ownCats []models.Category
	database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&ownCats)

	income := service.SumByType(txs, models.TypeIncome)
	expense := service.SumByType(txs, models.TypeExpense)

	Success(c, MonthlyReportResponse{
		TotalIncome:         income,
		TotalExpense:        expense,
		Balance:             income - expense,
		CategorySummary:     service.GroupByCategory(txs, ownCats, true),
		BudgetLimitExceeded: exceededLimits(txs, limits, userID),
	})
}

// Overview 财务总览
// @Summary 财务总览
// @Description 统计全部时间（或指定月份）的总收入、总支出、结余，出现过收支的可见分类汇总，支出已达限额的预算清单，以及按日的支出序列（无支出的日期不出现）。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份 (2025-03)，不传为全部时间"
// @Success 200 {object} Response{data=OverviewResponse} "获取成功"
// @Failure 400 {object} Response "月份格式错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/overview [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var start, end time.Time
	limitQuery := database.DB.Preload("Category").Where("user_id = ?", userID)
	if monthStr := c.Query("month"); monthStr != "" {
		t, err := time.ParseInLocation("2006-01", monthStr, time.Local)
		if err != nil {
			BadRequest(c, "月份格式错误，应为: 2006-01")
			return
		}
		start, end = service.MonthWindow(t)
		limitQuery = limitQuery.Where("month = ?", start)
	}

	txs, err := fetchTransactions(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var limits []models.BudgetLimit
	limitQuery.Find(&limits)

	cats := visibleCategoriesIn(txs, userID)

	income := service.SumByType(txs, models.TypeIncome)
	expense := service.SumByType(txs, models.TypeExpense)

	Success(c, OverviewResponse{
		TotalIncome:         income,
		TotalExpense:        expense,
		Balance:             income - expense,
		CategorySummary:     service.GroupByCategory(txs, cats, true),
		BudgetLimitExceeded: exceededLimits(txs, limits, userID),
		DailyExpense:        service.GroupByDay(txs),
	})
}

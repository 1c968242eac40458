package api

import (
	"strconv"
	"time"

	"moni/database"
	"moni/middleware"
	"moni/models"
	"moni/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 收支记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建收支记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建收支记录请求
type CreateTransactionRequest struct {
	Amount          float64 `json:"amount" binding:"gte=0" example:"99.99"`
	Type            string  `json:"type" binding:"required,oneof=income expense" example:"expense"`
	CategoryID      *uint   `json:"category_id" example:"1"`
	Note            string  `json:"note" binding:"omitempty,max=255" example:"午餐"`
	TransactionDate string  `json:"transaction_date" example:"2025-06-11"` // 缺省为当天
}

// UpdateTransactionRequest 更新收支记录请求（字段均可选）
type UpdateTransactionRequest struct {
	Amount          *float64 `json:"amount" binding:"omitempty,gte=0" example:"99.99"`
	Type            string   `json:"type" binding:"omitempty,oneof=income expense" example:"expense"`
	CategoryID      *uint    `json:"category_id" example:"1"` // 传 0 清除分类
	Note            *string  `json:"note" binding:"omitempty,max=255" example:"午餐"`
	TransactionDate string   `json:"transaction_date" example:"2025-06-11"`
}

// TransactionListRequest 收支记录列表请求
type TransactionListRequest struct {
	Page       int     `form:"page" example:"1"`
	PageSize   int     `form:"page_size" example:"10"`
	CategoryID uint    `form:"category_id" example:"1"`
	Type       string  `form:"type" example:"expense"`
	MinAmount  float64 `form:"min_amount" example:"10"`
	MaxAmount  float64 `form:"max_amount" example:"1000"`
	StartDate  string  `form:"start_date" example:"2025-06-01"`
	EndDate    string  `form:"end_date" example:"2025-06-30"`
}

// TransactionResult 写入结果：记录本身 + 可选的预算预警
// 预警作为显式返回值随响应一起返回，不在处理器上暂存状态
type TransactionResult struct {
	Transaction models.Transaction `json:"transaction"`
	Warning     string             `json:"budget_warning,omitempty"`
}

// resolveCategory 加载分类并校验当前用户是否可用
// 返回 (分类, 错误消息)；错误消息非空时调用方应直接返回 400
func resolveCategory(categoryID uint, userID uint) (*models.Category, string) {
	var cat models.Category
	if err := database.DB.First(&cat, categoryID).Error; err != nil {
		return nil, "分类不存在"
	}
	if !cat.UsableBy(userID) {
		return nil, "你没有权限使用该分类"
	}
	return &cat, ""
}

// parseDateOnly 解析日期参数并归一化到本地零点
func parseDateOnly(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

// today 当天零点
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// Create 创建收支记录
// @Summary 创建收支记录
// @Description 创建一条收支记录。支出且带分类时会触发预算预警检查，预警信息随响应的 budget_warning 字段返回（仅提示，不阻断写入）。
// @Tags 收支记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "收支记录信息"
// @Success 200 {object} Response{data=TransactionResult} "创建成功"
// @Failure 400 {object} Response "参数错误或无权使用该分类"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 校验分类归属
	var cat *models.Category
	if req.CategoryID != nil {
		var msg string
		cat, msg = resolveCategory(*req.CategoryID, userID)
		if msg != "" {
			BadRequest(c, msg)
			return
		}
	}

	// 解析记账日期，缺省为当天
	txDate := today()
	if req.TransactionDate != "" {
		var err error
		txDate, err = parseDateOnly(req.TransactionDate)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
	}

	tx := models.Transaction{
		UserID:          userID,
		Amount:          req.Amount,
		Type:            req.Type,
		CategoryID:      req.CategoryID,
		Note:            req.Note,
		TransactionDate: txDate,
		IsActive:        true,
	}

	if err := database.DB.Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建收支记录失败"))
		return
	}

	// 预算预警：仅支出且带分类时触发，且在持久化之后重新汇总
	warning := ""
	if tx.Type == models.TypeExpense && cat != nil {
		warning = service.BudgetWarning(userID, cat, tx.TransactionDate)
	}

	tx.Category = cat
	SuccessWithMessage(c, "创建成功", TransactionResult{Transaction: tx, Warning: warning})
}

// List 获取收支记录列表
// @Summary 获取收支记录列表
// @Description 获取当前用户的收支记录，支持分页和按分类/类型/金额区间/日期区间筛选
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category_id query int false "分类ID"
// @Param type query string false "类型 income/expense"
// @Param min_amount query number false "最小金额"
// @Param max_amount query number false "最大金额"
// @Param start_date query string false "开始日期 (2025-06-01)"
// @Param end_date query string false "结束日期 (2025-06-30)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.MinAmount > 0 {
		query = query.Where("amount >= ?", req.MinAmount)
	}
	if req.MaxAmount > 0 {
		query = query.Where("amount <= ?", req.MaxAmount)
	}
	if req.StartDate != "" {
		if start, err := parseDateOnly(req.StartDate); err == nil {
			query = query.Where("transaction_date >= ?", start)
		}
	}
	if req.EndDate != "" {
		if end, err := parseDateOnly(req.EndDate); err == nil {
			// 窗口统一为左闭右开
			query = query.Where("transaction_date < ?", end.AddDate(0, 0, 1))
		}
	}

	var total int64
	query.Count(&total)

	var txs []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Category").
		Order("transaction_date DESC, id DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&txs).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     txs,
	})
}

// Get 获取单条收支记录
// @Summary 获取单条收支记录
// @Description 根据ID获取收支记录详情，仅限本人的记录
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, tx)
}

// Update 更新收支记录
// @Summary 更新收支记录
// @Description 更新指定的收支记录，仅限本人。category_id 传 0 可清除分类。更新后按最终状态重新执行预算预警检查。
// @Tags 收支记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Param request body UpdateTransactionRequest true "收支记录信息"
// @Success 200 {object} Response{data=TransactionResult} "更新成功"
// @Failure 400 {object} Response "参数错误或无权使用该分类"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			// 0 表示显式清除分类
			updates["category_id"] = nil
		} else {
			if _, msg := resolveCategory(*req.CategoryID, userID); msg != "" {
				BadRequest(c, msg)
				return
			}
			updates["category_id"] = *req.CategoryID
		}
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.TransactionDate != "" {
		txDate, err := parseDateOnly(req.TransactionDate)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		updates["transaction_date"] = txDate
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&tx).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	// 重新获取更新后的记录，按最终状态判定预警
	database.DB.Preload("Category").First(&tx, tx.ID)

	warning := ""
	if tx.Type == models.TypeExpense && tx.Category != nil {
		warning = service.BudgetWarning(userID, tx.Category, tx.TransactionDate)
	}

	SuccessWithMessage(c, "更新成功", TransactionResult{Transaction: tx, Warning: warning})
}

// Delete 删除收支记录
// @Summary 删除收支记录
// @Description 删除指定的收支记录，仅限本人
// @Tags 收支记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

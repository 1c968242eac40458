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

// BudgetLimitHandler 预算限额处理器
type BudgetLimitHandler struct{}

// NewBudgetLimitHandler 创建预算限额处理器
func NewBudgetLimitHandler() *BudgetLimitHandler {
	return &BudgetLimitHandler{}
}

// CreateBudgetLimitRequest 创建预算限额请求
type CreateBudgetLimitRequest struct {
	CategoryID       uint    `json:"category_id" binding:"required" example:"1"`
	AmountLimit      float64 `json:"amount_limit" binding:"required,gt=0" example:"1000"`
	WarningThreshold float64 `json:"warning_threshold" binding:"omitempty,gte=0" example:"80"` // 缺省 100
	Month            string  `json:"month" example:"2025-03"`                                  // 2025-03 或 2025-03-15，缺省当月
	Note             string  `json:"note" binding:"omitempty,max=255"`
}

// UpdateBudgetLimitRequest 更新预算限额请求
type UpdateBudgetLimitRequest struct {
	AmountLimit      *float64 `json:"amount_limit" binding:"omitempty,gt=0"`
	WarningThreshold *float64 `json:"warning_threshold" binding:"omitempty,gte=0"`
	Note             *string  `json:"note" binding:"omitempty,max=255"`
}

// parseMonth 解析月份参数，归一化到当月第一天
// 支持 2025-03 与 2025-03-15 两种写法，解析失败时回落到当前月份
func parseMonth(s string) time.Time {
	if s != "" {
		if len(s) == 7 {
			if t, err := time.ParseInLocation("2006-01", s, time.Local); err == nil {
				return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
			}
		} else {
			if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
				return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
			}
		}
	}
	start, _ := service.MonthWindow(time.Now())
	return start
}

// Create 创建预算限额
// @Summary 创建预算限额
// @Description 为某个分类设置某月的预算限额。同一用户、同一分类、同一月份至多一条，重复创建会被拒绝且不覆盖原有限额。
// @Tags 预算限额
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetLimitRequest true "限额信息"
// @Success 200 {object} Response{data=models.BudgetLimit} "创建成功"
// @Failure 400 {object} Response "参数错误、无权使用该分类或当月限额已存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget-limits [post]
func (h *BudgetLimitHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat, msg := resolveCategory(req.CategoryID, userID)
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	month := parseMonth(req.Month)

	// 预检查给出友好提示；数据库复合唯一索引兜底，并发下不会产生重复
	var existing models.BudgetLimit
	if err := database.DB.Where("user_id = ? AND category_id = ? AND month = ?",
		userID, req.CategoryID, month).First(&existing).Error; err == nil {
		BadRequest(c, "该分类在当月已有预算限额，请修改原有限额")
		return
	}

	threshold := req.WarningThreshold
	if threshold <= 0 {
		threshold = 100
	}

	limit := models.BudgetLimit{
		UserID:           userID,
		CategoryID:       req.CategoryID,
		AmountLimit:      req.AmountLimit,
		WarningThreshold: threshold,
		Month:            month,
		Note:             req.Note,
		IsActive:         true,
	}

	if err := database.DB.Create(&limit).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算限额失败"))
		return
	}

	limit.Category = cat
	SuccessWithMessage(c, "创建成功", limit)
}

// List 获取预算限额列表
// @Summary 获取预算限额列表
// @Description 获取当前用户的预算限额，可按月份筛选
// @Tags 预算限额
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份 (2025-03)"
// @Success 200 {object} Response{data=[]models.BudgetLimit} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budget-limits [get]
func (h *BudgetLimitHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if monthStr := c.Query("month"); monthStr != "" {
		query = query.Where("month = ?", parseMonth(monthStr))
	}

	var limits []models.BudgetLimit
	if err := query.Preload("Category").
		Order("month DESC, id ASC").
		Find(&limits).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, limits)
}

// Get 获取单条预算限额
// @Summary 获取单条预算限额
// @Description 根据ID获取预算限额详情，仅限本人
// @Tags 预算限额
// @Produce json
// @Security BearerAuth
// @Param id path int true "限额ID"
// @Success 200 {object} Response{data=models.BudgetLimit} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "限额不存在"
// @Router /api/v1/budget-limits/{id} [get]
func (h *BudgetLimitHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var limit models.BudgetLimit
	if err := database.DB.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).First(&limit).Error; err != nil {
		NotFound(c, "限额不存在")
		return
	}

	Success(c, limit)
}

// Update 更新预算限额
// @Summary 更新预算限额
// @Description 更新限额金额、预警阈值或备注，仅限本人。分类和月份不可修改，如需调整请删除后重建。
// @Tags 预算限额
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "限额ID"
// @Param request body UpdateBudgetLimitRequest true "限额信息"
// @Success 200 {object} Response{data=models.BudgetLimit} "更新成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "限额不存在"
// @Router /api/v1/budget-limits/{id} [put]
func (h *BudgetLimitHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var limit models.BudgetLimit
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&limit).Error; err != nil {
		NotFound(c, "限额不存在")
		return
	}

	var req UpdateBudgetLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.AmountLimit != nil {
		updates["amount_limit"] = *req.AmountLimit
	}
	if req.WarningThreshold != nil {
		updates["warning_threshold"] = *req.WarningThreshold
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&limit).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.Preload("Category").First(&limit, limit.ID)
	SuccessWithMessage(c, "更新成功", limit)
}

// Delete 删除预算限额
// @Summary 删除预算限额
// @Description 删除指定的预算限额，仅限本人
// @Tags 预算限额
// @Produce json
// @Security BearerAuth
// @Param id path int true "限额ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "限额不存在"
// @Router /api/v1/budget-limits/{id} [delete]
func (h *BudgetLimitHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var limit models.BudgetLimit
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&limit).Error; err != nil {
		NotFound(c, "限额不存在")
		return
	}

	if err := database.DB.Delete(&limit).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

package api

import (
	"strconv"
	"time"

	"moni/database"
	"moni/middleware"
	"moni/models"

	"github.com/gin-gonic/gin"
)

// ReminderHandler 提醒事项处理器
type ReminderHandler struct{}

// NewReminderHandler 创建提醒事项处理器
func NewReminderHandler() *ReminderHandler {
	return &ReminderHandler{}
}

// CreateReminderRequest 创建提醒请求
type CreateReminderRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	RemindAt    string `json:"remind_at" example:"2025-07-01"` // 可选
}

// UpdateReminderRequest 更新提醒请求
type UpdateReminderRequest struct {
	Title       string  `json:"title" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	RemindAt    string  `json:"remind_at"`
}

// Create 创建提醒事项
// @Summary 创建提醒事项
// @Tags 提醒事项
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReminderRequest true "提醒信息"
// @Success 200 {object} Response{data=models.Reminder} "创建成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var remindAt *time.Time
	if req.RemindAt != "" {
		t, err := parseDateOnly(req.RemindAt)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		remindAt = &t
	}

	reminder := models.Reminder{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		RemindAt:    remindAt,
		IsActive:    true,
	}

	if err := database.DB.Create(&reminder).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", reminder)
}

// List 获取提醒事项列表
// @Summary 获取提醒事项列表
// @Description 获取当前用户的提醒事项，按提醒日期升序
// @Tags 提醒事项
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Reminder}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/reminders [get]
func (h *ReminderHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := database.DB.Model(&models.Reminder{}).Where("user_id = ?", userID)

	var total int64
	query.Count(&total)

	var reminders []models.Reminder
	if err := query.Order("remind_at ASC, id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&reminders).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     reminders,
	})
}

// Get 获取单条提醒事项
// @Summary 获取单条提醒事项
// @Tags 提醒事项
// @Produce json
// @Security BearerAuth
// @Param id path int true "提醒ID"
// @Success 200 {object} Response{data=models.Reminder} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/reminders/{id} [get]
func (h *ReminderHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var reminder models.Reminder
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, reminder)
}

// Update 更新提醒事项
// @Summary 更新提醒事项
// @Tags 提醒事项
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提醒ID"
// @Param request body UpdateReminderRequest true "提醒信息"
// @Success 200 {object} Response{data=models.Reminder} "更新成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/reminders/{id} [put]
func (h *ReminderHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var reminder models.Reminder
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.RemindAt != "" {
		t, err := parseDateOnly(req.RemindAt)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		updates["remind_at"] = t
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&reminder).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&reminder, reminder.ID)
	SuccessWithMessage(c, "更新成功", reminder)
}

// Delete 删除提醒事项
// @Summary 删除提醒事项
// @Tags 提醒事项
// @Produce json
// @Security BearerAuth
// @Param id path int true "提醒ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/reminders/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var reminder models.Reminder
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&reminder).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

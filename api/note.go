package api

import (
	"strconv"

	"moni/database"
	"moni/middleware"
	"moni/models"

	"github.com/gin-gonic/gin"
)

// NoteHandler 随手记处理器
type NoteHandler struct{}

// NewNoteHandler 创建随手记处理器
func NewNoteHandler() *NoteHandler {
	return &NoteHandler{}
}

// CreateNoteRequest 创建随手记请求
type CreateNoteRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=100"`
	Content  string `json:"content" binding:"required"`
	IsPinned bool   `json:"is_pinned"`
}

// UpdateNoteRequest 更新随手记请求
type UpdateNoteRequest struct {
	Title    string  `json:"title" binding:"omitempty,min=1,max=100"`
	Content  *string `json:"content"`
	IsPinned *bool   `json:"is_pinned"`
}

// Create 创建随手记
// @Summary 创建随手记
// @Tags 随手记
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateNoteRequest true "随手记信息"
// @Success 200 {object} Response{data=models.Note} "创建成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	note := models.Note{
		UserID:   userID,
		Title:    req.Title,
		Content:  req.Content,
		IsPinned: req.IsPinned,
		IsActive: true,
	}

	if err := database.DB.Create(&note).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", note)
}

// List 获取随手记列表
// @Summary 获取随手记列表
// @Description 获取当前用户的随手记，置顶优先，按更新时间倒序
// @Tags 随手记
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Note}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
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

	query := database.DB.Model(&models.Note{}).Where("user_id = ?", userID)

	var total int64
	query.Count(&total)

	var notes []models.Note
	if err := query.Order("is_pinned DESC, updated_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&notes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		List:     notes,
	})
}

// Get 获取单条随手记
// @Summary 获取单条随手记
// @Tags 随手记
// @Produce json
// @Security BearerAuth
// @Param id path int true "随手记ID"
// @Success 200 {object} Response{data=models.Note} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var note models.Note
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&note).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, note)
}

// Update 更新随手记
// @Summary 更新随手记
// @Tags 随手记
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "随手记ID"
// @Param request body UpdateNoteRequest true "随手记信息"
// @Success 200 {object} Response{data=models.Note} "更新成功"
// @Failure 400 {object} Response "参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var note models.Note
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&note).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.IsPinned != nil {
		updates["is_pinned"] = *req.IsPinned
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&note).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&note, note.ID)
	SuccessWithMessage(c, "更新成功", note)
}

// Delete 删除随手记
// @Summary 删除随手记
// @Tags 随手记
// @Produce json
// @Security BearerAuth
// @Param id path int true "随手记ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var note models.Note
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&note).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&note).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

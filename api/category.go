package api

import (
	"strconv"
	"strings"

	"moni/database"
	"moni/middleware"
	"moni/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 分类处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100" example:"餐饮"`
	Description string `json:"description" example:"一日三餐"`
	IsDefault   bool   `json:"is_default" example:"false"` // 仅管理员可创建默认分类
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// List 获取分类列表
// @Summary 获取分类列表
// @Description 获取当前用户可见的分类：系统默认分类 + 本人创建的分类
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var list []models.Category
	if err := database.DB.
		Where("(is_default = ? OR user_id = ?) AND is_active = ?", true, userID, true).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, list)
}

// Create 创建分类
// @Summary 创建分类
// @Description 创建个人分类。管理员传 is_default=true 时创建对所有用户可见的默认分类，普通用户该参数被忽略。同一用户下分类名称不可重复。
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "参数错误或名称已存在"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "分类名称不能为空")
		return
	}

	// 仅管理员可创建默认分类
	isDefault := false
	if req.IsDefault {
		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil && user.IsAdmin {
			isDefault = true
		}
	}

	cat := models.Category{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   isDefault,
		IsActive:    true,
	}
	if !isDefault {
		cat.UserID = &userID
	}

	// 同一属主下名称唯一
	var existing models.Category
	dupQuery := database.DB.Where("name = ?", req.Name)
	if isDefault {
		dupQuery = dupQuery.Where("is_default = ?", true)
	} else {
		dupQuery = dupQuery.Where("user_id = ?", userID)
	}
	if err := dupQuery.First(&existing).Error; err == nil {
		BadRequest(c, "分类名称已存在")
		return
	}

	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建分类失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", cat)
}

// Get 获取单个分类
// @Summary 获取单个分类
// @Description 获取分类详情，仅限可见分类
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response{data=models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.
		Where("id = ? AND (is_default = ? OR user_id = ?)", id, true, userID).
		First(&cat).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	Success(c, cat)
}

// Update 更新分类
// @Summary 更新分类
// @Description 更新本人创建的分类；默认分类仅管理员可更新
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body UpdateCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "参数错误或名称已存在"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	cat, ok := h.findEditable(c, uint(id), userID)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			BadRequest(c, "分类名称不能为空")
			return
		}
		if name != cat.Name {
			var existing models.Category
			dupQuery := database.DB.Where("name = ? AND id != ?", name, cat.ID)
			if cat.IsDefault {
				dupQuery = dupQuery.Where("is_default = ?", true)
			} else {
				dupQuery = dupQuery.Where("user_id = ?", userID)
			}
			if err := dupQuery.First(&existing).Error; err == nil {
				BadRequest(c, "分类名称已存在")
				return
			}
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.Model(cat).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(cat, cat.ID)
	SuccessWithMessage(c, "更新成功", cat)
}

// Delete 删除分类
// @Summary 删除分类
// @Description 删除本人创建的分类；默认分类仅管理员可删除
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	cat, ok := h.findEditable(c, uint(id), userID)
	if !ok {
		return
	}

	if err := database.DB.Delete(cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// findEditable 加载分类并校验修改权限：本人分类可改，默认分类仅管理员可改
// 校验失败时已写入响应，调用方直接返回即可
func (h *CategoryHandler) findEditable(c *gin.Context, id, userID uint) (*models.Category, bool) {
	var cat models.Category
	if err := database.DB.
		Where("id = ? AND (is_default = ? OR user_id = ?)", id, true, userID).
		First(&cat).Error; err != nil {
		NotFound(c, "分类不存在")
		return nil, false
	}

	if cat.IsDefault {
		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil || !user.IsAdmin {
			BadRequest(c, "默认分类仅管理员可修改")
			return nil, false
		}
	}
	return &cat, true
}

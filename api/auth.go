package api

import (
	"net/http"

	"moni/config"
	"moni/database"
	"moni/middleware"
	"moni/models"
	"moni/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"testuser"`
	Password string `json:"password" binding:"required,min=6,max=50" example:"password123"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
}

// LoginRequest 登录请求（支持用户名或邮箱）
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"testuser"` // 可为用户名或邮箱
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	DateOfBirth string  `json:"date_of_birth" example:"1999-01-01"`
	Gender      string  `json:"gender" binding:"omitempty,oneof=male female other"`
	Phone       *string `json:"phone" binding:"omitempty,max=15"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	Bio         *string `json:"bio"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50"`
}

// SendOTPRequest 发送验证码请求
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
}

// VerifyOTPRequest 校验验证码请求
type VerifyOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	OTP     string `json:"otp" binding:"required"`
	OTPType string `json:"otp_type" binding:"required,oneof=register forgot_password"`
}

// ResetPasswordRequest 通过验证码重置密码请求
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号，用户名和邮箱均不可重复
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=models.User} "注册成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 检查用户名是否已存在
	var existingUser models.User
	if err := database.DB.Where("username = ?", req.Username).First(&existingUser).Error; err == nil {
		BadRequest(c, "用户名已存在")
		return
	}
	// 检查邮箱是否已被使用
	if err := database.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		BadRequest(c, "该邮箱已被注册")
		return
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	user := models.User{
		Username: req.Username,
		Password: string(hashedPassword),
		Email:    req.Email,
		IsActive: true,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建用户失败"))
		return
	}

	SuccessWithMessage(c, "注册成功", user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户登录获取 JWT token
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "用户名或密码错误"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 查找用户（支持用户名或邮箱）
	var user models.User
	if err := database.DB.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error; err != nil {
		Unauthorized(c, "用户名或密码错误")
		return
	}

	if !user.IsActive {
		Error(c, http.StatusForbidden, "账号已停用，请联系管理员")
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "用户名或密码错误")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}

	SuccessWithMessage(c, "登录成功", LoginResponse{
		Token:    token,
		UserInfo: user,
	})
}

// GetProfile 获取个人资料
// @Summary 获取个人资料
// @Description 获取当前登录用户的资料
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	Success(c, user)
}

// UpdateProfile 更新个人资料
// @Summary 更新个人资料
// @Description 更新当前登录用户的资料（出生日期、性别、电话、地址、简介）
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "资料信息"
// @Success 200 {object} Response{data=models.User} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.DateOfBirth != "" {
		dob, err := parseDateOnly(req.DateOfBirth)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		updates["date_of_birth"] = dob
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&user, user.ID)
	SuccessWithMessage(c, "更新成功", user)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Description 校验旧密码后修改为新密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "密码信息"
// @Success 200 {object} Response "修改成功"
// @Failure 400 {object} Response "旧密码错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		BadRequest(c, "旧密码错误")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	if err := database.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "修改密码失败"))
		return
	}

	SuccessWithMessage(c, "密码修改成功", nil)
}

// SendRegisterOTP 发送注册验证码
// @Summary 发送注册验证码
// @Description 向待注册邮箱发送验证码，邮箱已被注册时拒绝
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "邮箱"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "邮箱已被注册"
// @Router /api/v1/auth/send-register-otp [post]
func (h *AuthHandler) SendRegisterOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var existing models.User
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		BadRequest(c, "该邮箱已被注册")
		return
	}

	if err := h.emailService.CreateAndSendOTP(req.Email, models.OTPTypeRegister); err != nil {
		InternalError(c, SafeErrorMessage(err, "验证码发送失败"))
		return
	}

	SuccessWithMessage(c, "验证码已发送至邮箱", nil)
}

// SendForgotPasswordOTP 发送找回密码验证码
// @Summary 发送找回密码验证码
// @Description 向已注册邮箱发送找回密码验证码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "邮箱"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "未找到账号"
// @Router /api/v1/auth/send-forgot-otp [post]
func (h *AuthHandler) SendForgotPasswordOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		BadRequest(c, "未找到使用该邮箱的账号")
		return
	}

	if err := h.emailService.CreateAndSendOTP(req.Email, models.OTPTypeForgotPassword); err != nil {
		InternalError(c, SafeErrorMessage(err, "验证码发送失败"))
		return
	}

	SuccessWithMessage(c, "验证码已发送至邮箱", nil)
}

// findValidOTP 查找最新一条未使用且匹配的验证码
// 返回 (验证码, 错误消息)；错误消息非空时调用方应直接返回 400
func findValidOTP(email, code, otpType string) (*models.EmailOTP, string) {
	var otp models.EmailOTP
	if err := database.DB.
		Where("email = ? AND code = ? AND otp_type = ? AND is_used = ?", email, code, otpType, false).
		Order("created_at DESC").
		First(&otp).Error; err != nil {
		return nil, "验证码错误"
	}
	if otp.IsExpired() {
		return nil, "验证码已过期"
	}
	return &otp, ""
}

// VerifyOTP 校验验证码
// @Summary 校验验证码
// @Description 校验邮箱验证码并标记为已使用
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "验证码信息"
// @Success 200 {object} Response "校验成功"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Router /api/v1/auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	otp, msg := findValidOTP(req.Email, req.OTP, req.OTPType)
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	database.DB.Model(otp).Update("is_used", true)
	SuccessWithMessage(c, "验证成功", nil)
}

// ResetPasswordByOTP 通过验证码重置密码
// @Summary 通过验证码重置密码
// @Description 校验找回密码验证码后重置为新密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置信息"
// @Success 200 {object} Response "重置成功"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPasswordByOTP(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	otp, msg := findValidOTP(req.Email, req.OTP, models.OTPTypeForgotPassword)
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		BadRequest(c, "未找到使用该邮箱的账号")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	database.DB.Model(otp).Update("is_used", true)
	if err := database.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "重置密码失败"))
		return
	}

	SuccessWithMessage(c, "密码重置成功", nil)
}

package router

import (
	"net/http"
	"time"

	"moni/api"
	"moni/config"
	_ "moni/docs"
	"moni/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			// 登录接口限流，防止暴力破解
			auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)
			auth.POST("/register", authHandler.Register)

			// 邮箱验证码
			auth.POST("/send-register-otp", middleware.LoginRateLimit(5, time.Minute), authHandler.SendRegisterOTP)
			auth.POST("/verify-otp", authHandler.VerifyOTP)

			// 忘记密码
			auth.POST("/send-forgot-otp", middleware.LoginRateLimit(5, time.Minute), authHandler.SendForgotPasswordOTP)
			auth.POST("/reset-password", authHandler.ResetPasswordByOTP)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PATCH("/auth/profile", authHandler.UpdateProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 分类相关
			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.POST("", categoryHandler.Create)
				categories.GET("", categoryHandler.List)
				categories.GET("/:id", categoryHandler.Get)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			// 收支记录相关
			transactionHandler := api.NewTransactionHandler()
			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.PATCH("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			// 预算限额相关
			budgetLimitHandler := api.NewBudgetLimitHandler()
			budgetLimits := authorized.Group("/budget-limits")
			{
				budgetLimits.POST("", budgetLimitHandler.Create)
				budgetLimits.GET("", budgetLimitHandler.List)
				budgetLimits.GET("/:id", budgetLimitHandler.Get)
				budgetLimits.PUT("/:id", budgetLimitHandler.Update)
				budgetLimits.DELETE("/:id", budgetLimitHandler.Delete)
			}

			// 随手记相关
			noteHandler := api.NewNoteHandler()
			notes := authorized.Group("/notes")
			{
				notes.POST("", noteHandler.Create)
				notes.GET("", noteHandler.List)
				notes.GET("/:id", noteHandler.Get)
				notes.PUT("/:id", noteHandler.Update)
				notes.DELETE("/:id", noteHandler.Delete)
			}

			// 提醒事项相关
			reminderHandler := api.NewReminderHandler()
			reminders := authorized.Group("/reminders")
			{
				reminders.POST("", reminderHandler.Create)
				reminders.GET("", reminderHandler.List)
				reminders.GET("/:id", reminderHandler.Get)
				reminders.PUT("/:id", reminderHandler.Update)
				reminders.DELETE("/:id", reminderHandler.Delete)
			}

			// 统计报表相关
			statisticsHandler := api.NewStatisticsHandler()
			statistics := authorized.Group("/statistics")
			{
				statistics.GET("/weekly-summary", statisticsHandler.WeeklySummary)
				statistics.GET("/monthly-report", statisticsHandler.MonthlyReport)
				statistics.GET("/overview", statisticsHandler.Overview)
			}

			// 导出相关
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

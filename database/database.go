package database

import (
	"fmt"
	"log"

	"moni/config"
	"moni/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Transaction{},
		&models.BudgetLimit{},
		&models.Note{},
		&models.Reminder{},
		&models.EmailOTP{},
	); err != nil {
		return err
	}

	// 初始化系统默认分类（仅当不存在任何默认分类时）
	var defaultCount int64
	DB.Model(&models.Category{}).Where("is_default = ?", true).Count(&defaultCount)
	if defaultCount == 0 {
		names := []string{"餐饮", "交通", "购物", "娱乐", "医疗", "教育", "住房", "工资", "其他"}
		var cats []models.Category
		for _, name := range names {
			cats = append(cats, models.Category{
				Name:      name,
				IsDefault: true,
				IsActive:  true,
			})
		}
		if err := DB.Create(&cats).Error; err != nil {
			log.Printf("警告: 初始化默认分类失败: %v", err)
		}
	}

	log.Println("数据库初始化成功")
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Username    string         `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Password    string         `json:"-" gorm:"size:255;not null"`
	Email       string         `json:"email" gorm:"uniqueIndex;size:100;not null"`
	DateOfBirth *time.Time     `json:"date_of_birth,omitempty"`
	Gender      string         `json:"gender,omitempty" gorm:"size:10"` // male/female/other
	Phone       string         `json:"phone,omitempty" gorm:"size:15"`
	Address     string         `json:"address,omitempty" gorm:"size:255"`
	Bio         string         `json:"bio,omitempty" gorm:"type:text"`
	IsAdmin     bool           `json:"is_admin" gorm:"default:false;index"` // 管理员可维护默认分类
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}

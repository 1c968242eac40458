package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 收支分类
// UserID 为空表示系统默认分类，对所有用户可见；否则仅属主可用。
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"size:100;not null;uniqueIndex:idx_categories_owner_name"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	UserID      *uint          `json:"user_id" gorm:"uniqueIndex:idx_categories_owner_name;index"`
	IsDefault   bool           `json:"is_default" gorm:"default:false;index"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        *User          `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// UsableBy 判断分类是否可被指定用户使用：默认分类或属于该用户
func (c *Category) UsableBy(userID uint) bool {
	if c.IsDefault {
		return true
	}
	return c.UserID != nil && *c.UserID == userID
}

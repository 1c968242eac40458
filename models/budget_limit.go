package models

import (
	"time"

	"gorm.io/gorm"
)

// BudgetLimit 月度预算限额
// 同一用户、同一分类、同一月份至多一条限额，由复合唯一索引保证，
// 重复创建直接在数据库层失败，不存在读后写竞态。
type BudgetLimit struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	UserID           uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_budget_owner_cat_month"`
	CategoryID       uint           `json:"category_id" gorm:"not null;uniqueIndex:idx_budget_owner_cat_month"`
	AmountLimit      float64        `json:"amount_limit" gorm:"type:decimal(12,2);not null"`
	WarningThreshold float64        `json:"warning_threshold" gorm:"default:100"` // 预警阈值（百分比）
	Month            time.Time      `json:"month" gorm:"not null;uniqueIndex:idx_budget_owner_cat_month"` // 当月第一天
	Note             string         `json:"note,omitempty" gorm:"size:255"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
	User             User           `json:"-" gorm:"foreignKey:UserID"`
	Category         *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (BudgetLimit) TableName() string {
	return "budget_limits"
}

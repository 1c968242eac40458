package models

import (
	"time"

	"gorm.io/gorm"
)

// 交易类型
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction 收支记录模型
type Transaction struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	Amount          float64        `json:"amount" gorm:"type:decimal(12,2);not null"`
	Type            string         `json:"type" gorm:"size:10;not null;index"` // income / expense
	CategoryID      *uint          `json:"category_id" gorm:"index"`
	Note            string         `json:"note,omitempty" gorm:"size:255"`
	TransactionDate time.Time      `json:"transaction_date" gorm:"not null;index"` // 记账日期（按天）
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
	Category        *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

package models

import (
	"time"
)

// OrderActivity 订单动态表（追加写，不可变）
type OrderActivity struct {
	ID        uint      `gorm:"primarykey" json:"id"`                            // 主键
	OrderID   string    `gorm:"index;type:varchar(36);not null" json:"order_id"` // 订单ID
	Type      string    `gorm:"index;type:varchar(50);not null" json:"type"`     // 动态类型
	Message   string    `gorm:"type:varchar(500)" json:"message"`                // 描述
	Meta      JSON      `gorm:"type:text" json:"meta,omitempty"`                 // 附加数据
	CreatedAt time.Time `gorm:"index" json:"created_at"`                         // 创建时间
}

// TableName 指定表名
func (OrderActivity) TableName() string {
	return "order_activities"
}

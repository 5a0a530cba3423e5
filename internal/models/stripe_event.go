package models

import (
	"time"
)

// StripeEvent Stripe webhook 事件审计表（先落库后分发）
type StripeEvent struct {
	ID          uint       `gorm:"primarykey" json:"id"`                                // 主键
	EventID     string     `gorm:"uniqueIndex;type:varchar(100);not null" json:"event_id"` // Stripe 事件ID
	Type        string     `gorm:"index;type:varchar(100);not null" json:"type"`        // 事件类型
	Payload     string     `gorm:"type:text" json:"payload"`                            // 原始报文
	Handled     bool       `gorm:"index;not null;default:false" json:"handled"`         // 是否在白名单内被处理
	HandleError string     `gorm:"type:varchar(500)" json:"handle_error,omitempty"`     // 处理失败原因
	ProcessedAt *time.Time `json:"processed_at,omitempty"`                              // 处理完成时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                             // 创建时间
}

// TableName 指定表名
func (StripeEvent) TableName() string {
	return "stripe_events"
}

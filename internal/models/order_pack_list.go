package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderPackList 包裹目录表
type OrderPackList struct {
	ID        uint           `gorm:"primarykey" json:"id"`                            // 主键
	Code      string         `gorm:"uniqueIndex;type:varchar(50);not null" json:"code"` // 包裹编码
	Label     string         `gorm:"type:varchar(200);not null" json:"label"`         // 展示名称
	Weight    Weight         `gorm:"type:decimal(10,3);not null;default:0" json:"weight"` // 重量（kg）
	LengthCM  int            `json:"length_cm,omitempty"`                             // 长（cm）
	WidthCM   int            `json:"width_cm,omitempty"`                              // 宽（cm）
	HeightCM  int            `json:"height_cm,omitempty"`                             // 高（cm）
	Active    bool           `gorm:"index;not null;default:true" json:"active"`       // 是否启用
	SortOrder int            `gorm:"index;not null;default:0" json:"sort_order"`      // 排序
	CreatedAt time.Time      `json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (OrderPackList) TableName() string {
	return "order_pack_lists"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// FeatureRequest 功能需求记录表
type FeatureRequest struct {
	ID        uint           `gorm:"primarykey" json:"id"`                        // 主键
	Title     string         `gorm:"type:varchar(200);not null" json:"title"`     // 标题
	Detail    string         `gorm:"type:text" json:"detail,omitempty"`           // 详情
	Status    string         `gorm:"index;type:varchar(50);not null;default:open" json:"status"` // 状态（open/planned/done/rejected）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                  // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (FeatureRequest) TableName() string {
	return "feature_requests"
}

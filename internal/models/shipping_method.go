package models

import (
	"time"
)

// ShippingMethod 运输方式本地快照表（承运商目录定期落库，供离线兜底）
type ShippingMethod struct {
	ID          uint        `gorm:"primarykey" json:"id"`                              // 主键
	ExternalID  int64       `gorm:"uniqueIndex;not null" json:"external_id"`           // 承运商侧ID
	Name        string      `gorm:"type:varchar(200);not null" json:"name"`            // 名称
	Carrier     string      `gorm:"type:varchar(100)" json:"carrier,omitempty"`        // 承运商
	MinWeightKG Weight      `gorm:"type:decimal(10,3);not null;default:0" json:"min_weight_kg"` // 最小重量
	MaxWeightKG Weight      `gorm:"type:decimal(10,3);not null;default:0" json:"max_weight_kg"` // 最大重量
	Countries   StringArray `gorm:"type:text" json:"countries"`                        // 可达国家（alpha-2）
	CreatedAt   time.Time   `json:"created_at"`                                        // 创建时间
	UpdatedAt   time.Time   `json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户表
type Customer struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Name             string         `gorm:"type:varchar(200)" json:"name"`                             // 姓名
	Email            string         `gorm:"uniqueIndex;type:varchar(200);not null" json:"email"`       // 邮箱
	Phone            string         `gorm:"type:varchar(50)" json:"phone,omitempty"`                   // 电话
	StripeCustomerID string         `gorm:"index;type:varchar(100)" json:"stripe_customer_id,omitempty"` // Stripe 客户ID
	AddressLine1     string         `gorm:"type:varchar(255)" json:"address_line1,omitempty"`          // 地址行1
	AddressLine2     string         `gorm:"type:varchar(255)" json:"address_line2,omitempty"`          // 地址行2
	City             string         `gorm:"type:varchar(100)" json:"city,omitempty"`                   // 城市
	PostalCode       string         `gorm:"type:varchar(30)" json:"postal_code,omitempty"`             // 邮编
	Country          string         `gorm:"type:varchar(100)" json:"country,omitempty"`                // 国家
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`                          // 备注
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Orders []Order `gorm:"foreignKey:CustomerID" json:"orders,omitempty"` // 历史订单
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}

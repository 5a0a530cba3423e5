package models

import (
	"time"

	"github.com/orderdesk-next/internal/constants"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID         string `gorm:"type:varchar(36);primarykey" json:"id"` // UUID 主键
	CustomerID *uint  `gorm:"index" json:"customer_id,omitempty"`    // 客户ID

	// 收件人信息
	Name  string `gorm:"type:varchar(200)" json:"name"`      // 收件人姓名
	Email string `gorm:"index;type:varchar(200)" json:"email"` // 收件人邮箱
	Phone string `gorm:"type:varchar(50)" json:"phone"`      // 收件人电话

	// 收货地址
	AddressLine1 string `gorm:"type:varchar(255)" json:"address_line1"`         // 地址行1
	AddressLine2 string `gorm:"type:varchar(255)" json:"address_line2,omitempty"` // 地址行2
	City         string `gorm:"type:varchar(100)" json:"city"`                  // 城市
	PostalCode   string `gorm:"type:varchar(30)" json:"postal_code"`            // 邮编
	Country      string `gorm:"type:varchar(100);index" json:"country"`         // 国家（展示值，发货前归一化为 alpha-2）

	// 状态标记
	Paid     bool `gorm:"index;not null;default:false" json:"paid"`       // 是否已支付
	OkToShip bool `gorm:"index;not null;default:false" json:"ok_to_ship"` // 是否允许发货

	// 包裹快照（下单时从目录复制）
	PackID     *uint  `gorm:"index" json:"pack_id,omitempty"`              // 包裹目录ID
	PackCode   string `gorm:"type:varchar(50)" json:"pack_code,omitempty"` // 包裹编码
	PackLabel  string `gorm:"type:varchar(200)" json:"pack_label,omitempty"` // 包裹名称
	PackWeight Weight `gorm:"type:decimal(10,3);not null;default:0" json:"pack_weight"` // 包裹重量（kg）

	// 支付侧关联（Stripe）
	StripeCustomerID  string `gorm:"index;type:varchar(100)" json:"stripe_customer_id,omitempty"`  // Stripe 客户ID
	StripeInvoiceID   string `gorm:"index;type:varchar(100)" json:"stripe_invoice_id,omitempty"`   // Stripe 发票ID
	CheckoutSessionID string `gorm:"index;type:varchar(100)" json:"checkout_session_id,omitempty"` // Checkout 会话ID

	// 物流状态（承运商）
	ShippingID               string     `gorm:"index;type:varchar(100)" json:"shipping_id,omitempty"`       // 承运商包裹ID
	ShippingMethodID         *int64     `json:"shipping_method_id,omitempty"`                               // 运输方式ID
	ShippingMethodName       string     `gorm:"type:varchar(200)" json:"shipping_method_name,omitempty"`    // 运输方式名称
	TrackingNumber           string     `gorm:"index;type:varchar(100)" json:"tracking_number,omitempty"`   // 运单号
	TrackingLink             string     `gorm:"type:varchar(500)" json:"tracking_link,omitempty"`           // 物流跟踪链接
	LabelURL                 string     `gorm:"type:varchar(500)" json:"label_url,omitempty"`               // 面单下载地址
	DeliveryStatus           *string    `gorm:"index;type:varchar(100)" json:"delivery_status,omitempty"`   // 物流状态（空表示尚未查询）
	DeliveryStatusCheckedAt  *time.Time `json:"delivery_status_checked_at,omitempty"`                       // 最近一次轮询时间

	// 退货面单
	SendcloudReturnID       string     `gorm:"type:varchar(100)" json:"sendcloud_return_id,omitempty"`       // 退货包裹ID
	SendcloudReturnTracking string     `gorm:"type:varchar(100)" json:"sendcloud_return_tracking,omitempty"` // 退货运单号
	SendcloudReturnLabelURL string     `gorm:"type:varchar(500)" json:"sendcloud_return_label_url,omitempty"` // 退货面单地址
	SendcloudReturnReason   string     `gorm:"type:varchar(50)" json:"sendcloud_return_reason,omitempty"`    // 退货原因
	ReturnInitiatedAt       *time.Time `json:"return_initiated_at,omitempty"`                                // 退货发起时间

	Notes string `gorm:"type:text" json:"notes,omitempty"` // 备注

	PaidAt    *time.Time     `gorm:"index" json:"paid_at"`    // 支付时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间

	// 关联
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`  // 客户
	Activities []OrderActivity `gorm:"foreignKey:OrderID" json:"activities,omitempty"` // 订单动态
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// HasTracking 是否已有运单号
func (o *Order) HasTracking() bool {
	return o.TrackingNumber != ""
}

// IsDelivered 物流状态是否为已送达
func (o *Order) IsDelivered() bool {
	return o.DeliveryStatus != nil && *o.DeliveryStatus == constants.DeliveryStatusDelivered
}

// HasReturn 是否已发起退货
func (o *Order) HasReturn() bool {
	return o.SendcloudReturnID != ""
}

package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page           int
	PageSize       int
	CustomerID     uint
	Search         string // 姓名/邮箱/运单号模糊匹配
	Country        string
	Paid           *bool
	OkToShip       *bool
	HasTracking    *bool
	DeliveryStatus string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	Search   string // 姓名/邮箱模糊匹配
}

// FeatureRequestListFilter 查询功能需求列表的过滤条件
type FeatureRequestListFilter struct {
	Page     int
	PageSize int
	Status   string
}

// StripeEventListFilter 查询 webhook 事件列表的过滤条件
type StripeEventListFilter struct {
	Page     int
	PageSize int
	Type     string
	Handled  *bool
}

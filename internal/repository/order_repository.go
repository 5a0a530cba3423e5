package repository

import (
	"errors"

	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByInvoiceID(invoiceID string) (*models.Order, error)
	GetByCheckoutSessionID(sessionID string) (*models.Order, error)
	GetLatestUnpaidByStripeCustomer(stripeCustomerID string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	ListForTrackingRefresh(limit int) ([]models.Order, error)
	Update(id string, updates map[string]interface{}) error
	DeleteBatch(ids []string) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	return translateError(r.db.Create(order).Error)
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Customer").Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &order, nil
}

// GetByInvoiceID 根据 Stripe 发票 ID 获取订单
func (r *GormOrderRepository) GetByInvoiceID(invoiceID string) (*models.Order, error) {
	if invoiceID == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Where("stripe_invoice_id = ?", invoiceID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &order, nil
}

// GetByCheckoutSessionID 根据 Checkout 会话 ID 获取订单（webhook 幂等）
func (r *GormOrderRepository) GetByCheckoutSessionID(sessionID string) (*models.Order, error) {
	if sessionID == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Where("checkout_session_id = ?", sessionID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &order, nil
}

// GetLatestUnpaidByStripeCustomer 获取客户最近一笔未支付订单（发票匹配失败时的回退）
func (r *GormOrderRepository) GetLatestUnpaidByStripeCustomer(stripeCustomerID string) (*models.Order, error) {
	if stripeCustomerID == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.
		Where("stripe_customer_id = ? AND paid = ?", stripeCustomerID, false).
		Order("created_at desc").
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &order, nil
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{})

	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR tracking_number LIKE ?", like, like, like)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.Paid != nil {
		query = query.Where("paid = ?", *filter.Paid)
	}
	if filter.OkToShip != nil {
		query = query.Where("ok_to_ship = ?", *filter.OkToShip)
	}
	if filter.HasTracking != nil {
		if *filter.HasTracking {
			query = query.Where("tracking_number <> ''")
		} else {
			query = query.Where("tracking_number = ''")
		}
	}
	if filter.DeliveryStatus != "" {
		query = query.Where("delivery_status = ?", filter.DeliveryStatus)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return orders, total, nil
}

// ListForTrackingRefresh 取待轮询订单：有运单号且未送达
func (r *GormOrderRepository) ListForTrackingRefresh(limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.
		Where("tracking_number <> ''").
		Where("delivery_status IS NULL OR delivery_status <> ?", constants.DeliveryStatusDelivered).
		Order("delivery_status_checked_at asc NULLS FIRST")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, translateError(err)
	}
	return orders, nil
}

// Update 按字段更新订单
func (r *GormOrderRepository) Update(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translateError(r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error)
}

// DeleteBatch 批量删除订单（软删除），返回影响行数
func (r *GormOrderRepository) DeleteBatch(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.Order{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

package repository

import (
	"github.com/orderdesk-next/internal/models"

	"gorm.io/gorm"
)

// OrderActivityRepository 订单动态数据访问接口
type OrderActivityRepository interface {
	Append(activity *models.OrderActivity) error
	ListByOrder(orderID string, limit int) ([]models.OrderActivity, error)
}

// GormOrderActivityRepository GORM 实现
type GormOrderActivityRepository struct {
	db *gorm.DB
}

// NewOrderActivityRepository 创建订单动态仓库
func NewOrderActivityRepository(db *gorm.DB) *GormOrderActivityRepository {
	return &GormOrderActivityRepository{db: db}
}

// Append 追加一条订单动态
func (r *GormOrderActivityRepository) Append(activity *models.OrderActivity) error {
	return translateError(r.db.Create(activity).Error)
}

// ListByOrder 按订单查询动态（倒序）
func (r *GormOrderActivityRepository) ListByOrder(orderID string, limit int) ([]models.OrderActivity, error) {
	var activities []models.OrderActivity
	query := r.db.Where("order_id = ?", orderID).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, translateError(err)
	}
	return activities, nil
}

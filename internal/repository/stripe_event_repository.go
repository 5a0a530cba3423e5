package repository

import (
	"errors"
	"time"

	"github.com/orderdesk-next/internal/models"

	"gorm.io/gorm"
)

// StripeEventRepository webhook 事件审计数据访问接口
type StripeEventRepository interface {
	Record(event *models.StripeEvent) error
	GetByEventID(eventID string) (*models.StripeEvent, error)
	MarkProcessed(eventID string, handled bool, handleError string) error
	List(filter StripeEventListFilter) ([]models.StripeEvent, int64, error)
}

// GormStripeEventRepository GORM 实现
type GormStripeEventRepository struct {
	db *gorm.DB
}

// NewStripeEventRepository 创建 webhook 事件仓库
func NewStripeEventRepository(db *gorm.DB) *GormStripeEventRepository {
	return &GormStripeEventRepository{db: db}
}

// Record 落库事件（分发前调用）
func (r *GormStripeEventRepository) Record(event *models.StripeEvent) error {
	return translateError(r.db.Create(event).Error)
}

// GetByEventID 根据 Stripe 事件 ID 查询（重复投递判断）
func (r *GormStripeEventRepository) GetByEventID(eventID string) (*models.StripeEvent, error) {
	if eventID == "" {
		return nil, nil
	}
	var event models.StripeEvent
	if err := r.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &event, nil
}

// MarkProcessed 标记事件处理结果
func (r *GormStripeEventRepository) MarkProcessed(eventID string, handled bool, handleError string) error {
	now := time.Now()
	return translateError(r.db.Model(&models.StripeEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"handled":      handled,
			"handle_error": handleError,
			"processed_at": &now,
		}).Error)
}

// List 事件列表
func (r *GormStripeEventRepository) List(filter StripeEventListFilter) ([]models.StripeEvent, int64, error) {
	var events []models.StripeEvent
	query := r.db.Model(&models.StripeEvent{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Handled != nil {
		query = query.Where("handled = ?", *filter.Handled)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&events).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return events, total, nil
}

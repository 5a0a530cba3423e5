package repository

import (
	"github.com/orderdesk-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShippingMethodRepository 运输方式快照数据访问接口
type ShippingMethodRepository interface {
	ReplaceAll(methods []models.ShippingMethod) error
	List() ([]models.ShippingMethod, error)
}

// GormShippingMethodRepository GORM 实现
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewShippingMethodRepository 创建运输方式仓库
func NewShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// ReplaceAll 按承运商侧 ID upsert 整份目录快照
func (r *GormShippingMethodRepository) ReplaceAll(methods []models.ShippingMethod) error {
	if len(methods) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		UpdateAll: true,
	}).Create(&methods).Error
	return translateError(err)
}

// List 运输方式快照列表
func (r *GormShippingMethodRepository) List() ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	if err := r.db.Order("external_id asc").Find(&methods).Error; err != nil {
		return nil, translateError(err)
	}
	return methods, nil
}

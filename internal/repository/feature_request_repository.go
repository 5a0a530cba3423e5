package repository

import (
	"errors"

	"github.com/orderdesk-next/internal/models"

	"gorm.io/gorm"
)

// FeatureRequestRepository 功能需求数据访问接口
type FeatureRequestRepository interface {
	Create(request *models.FeatureRequest) error
	GetByID(id uint) (*models.FeatureRequest, error)
	List(filter FeatureRequestListFilter) ([]models.FeatureRequest, int64, error)
	Update(id uint, updates map[string]interface{}) error
	Delete(id uint) error
}

// GormFeatureRequestRepository GORM 实现
type GormFeatureRequestRepository struct {
	db *gorm.DB
}

// NewFeatureRequestRepository 创建功能需求仓库
func NewFeatureRequestRepository(db *gorm.DB) *GormFeatureRequestRepository {
	return &GormFeatureRequestRepository{db: db}
}

// Create 创建功能需求
func (r *GormFeatureRequestRepository) Create(request *models.FeatureRequest) error {
	return translateError(r.db.Create(request).Error)
}

// GetByID 根据 ID 获取功能需求
func (r *GormFeatureRequestRepository) GetByID(id uint) (*models.FeatureRequest, error) {
	var request models.FeatureRequest
	if err := r.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &request, nil
}

// List 功能需求列表
func (r *GormFeatureRequestRepository) List(filter FeatureRequestListFilter) ([]models.FeatureRequest, int64, error) {
	var requests []models.FeatureRequest
	query := r.db.Model(&models.FeatureRequest{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&requests).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return requests, total, nil
}

// Update 按字段更新功能需求
func (r *GormFeatureRequestRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translateError(r.db.Model(&models.FeatureRequest{}).Where("id = ?", id).Updates(updates).Error)
}

// Delete 删除功能需求（软删除）
func (r *GormFeatureRequestRepository) Delete(id uint) error {
	return translateError(r.db.Delete(&models.FeatureRequest{}, id).Error)
}

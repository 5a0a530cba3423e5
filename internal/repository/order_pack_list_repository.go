package repository

import (
	"errors"

	"github.com/orderdesk-next/internal/models"

	"gorm.io/gorm"
)

// OrderPackListRepository 包裹目录数据访问接口
type OrderPackListRepository interface {
	Create(pack *models.OrderPackList) error
	GetByID(id uint) (*models.OrderPackList, error)
	GetByCode(code string) (*models.OrderPackList, error)
	List(onlyActive bool) ([]models.OrderPackList, error)
	Update(id uint, updates map[string]interface{}) error
	Delete(id uint) error
}

// GormOrderPackListRepository GORM 实现
type GormOrderPackListRepository struct {
	db *gorm.DB
}

// NewOrderPackListRepository 创建包裹目录仓库
func NewOrderPackListRepository(db *gorm.DB) *GormOrderPackListRepository {
	return &GormOrderPackListRepository{db: db}
}

// Create 创建包裹
func (r *GormOrderPackListRepository) Create(pack *models.OrderPackList) error {
	return translateError(r.db.Create(pack).Error)
}

// GetByID 根据 ID 获取包裹
func (r *GormOrderPackListRepository) GetByID(id uint) (*models.OrderPackList, error) {
	var pack models.OrderPackList
	if err := r.db.First(&pack, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &pack, nil
}

// GetByCode 根据编码获取包裹
func (r *GormOrderPackListRepository) GetByCode(code string) (*models.OrderPackList, error) {
	if code == "" {
		return nil, nil
	}
	var pack models.OrderPackList
	if err := r.db.Where("code = ?", code).First(&pack).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &pack, nil
}

// List 包裹列表
func (r *GormOrderPackListRepository) List(onlyActive bool) ([]models.OrderPackList, error) {
	var packs []models.OrderPackList
	query := r.db.Model(&models.OrderPackList{})
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("sort_order asc, id asc").Find(&packs).Error; err != nil {
		return nil, translateError(err)
	}
	return packs, nil
}

// Update 按字段更新包裹
func (r *GormOrderPackListRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translateError(r.db.Model(&models.OrderPackList{}).Where("id = ?", id).Updates(updates).Error)
}

// Delete 删除包裹（软删除）
func (r *GormOrderPackListRepository) Delete(id uint) error {
	return translateError(r.db.Delete(&models.OrderPackList{}, id).Error)
}

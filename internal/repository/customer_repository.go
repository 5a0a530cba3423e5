package repository

import (
	"errors"

	"github.com/orderdesk-next/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByEmail(email string) (*models.Customer, error)
	GetByStripeID(stripeCustomerID string) (*models.Customer, error)
	List(filter CustomerListFilter) ([]models.Customer, int64, error)
	Update(id uint, updates map[string]interface{}) error
	Save(customer *models.Customer) error
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return translateError(r.db.Create(customer).Error)
}

// GetByID 根据 ID 获取客户
func (r *GormCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &customer, nil
}

// GetByEmail 根据邮箱获取客户
func (r *GormCustomerRepository) GetByEmail(email string) (*models.Customer, error) {
	if email == "" {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Where("email = ?", email).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &customer, nil
}

// GetByStripeID 根据 Stripe 客户 ID 获取客户
func (r *GormCustomerRepository) GetByStripeID(stripeCustomerID string) (*models.Customer, error) {
	if stripeCustomerID == "" {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Where("stripe_customer_id = ?", stripeCustomerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &customer, nil
}

// List 客户列表
func (r *GormCustomerRepository) List(filter CustomerListFilter) ([]models.Customer, int64, error) {
	var customers []models.Customer
	query := r.db.Model(&models.Customer{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&customers).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return customers, total, nil
}

// Update 按字段更新客户
func (r *GormCustomerRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translateError(r.db.Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error)
}

// Save 保存整条客户记录
func (r *GormCustomerRepository) Save(customer *models.Customer) error {
	return translateError(r.db.Save(customer).Error)
}

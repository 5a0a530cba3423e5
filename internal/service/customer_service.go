package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orderdesk-next/internal/crm/hubspot"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"
)

// CRMClient CRM 查询端口。
type CRMClient interface {
	SearchContactByEmail(ctx context.Context, email string) (*hubspot.Contact, error)
	GetOwnerByID(ctx context.Context, ownerID string) (*hubspot.Owner, error)
}

// HubSpotCRM 基于 HubSpot API 的实现
type HubSpotCRM struct {
	cfg *hubspot.Config
}

// NewHubSpotCRM 创建 CRM 客户端
func NewHubSpotCRM(cfg *hubspot.Config) *HubSpotCRM {
	return &HubSpotCRM{cfg: cfg}
}

func (c *HubSpotCRM) SearchContactByEmail(ctx context.Context, email string) (*hubspot.Contact, error) {
	return hubspot.SearchContactByEmail(ctx, c.cfg, email)
}

func (c *HubSpotCRM) GetOwnerByID(ctx context.Context, ownerID string) (*hubspot.Owner, error) {
	return hubspot.GetOwnerByID(ctx, c.cfg, ownerID)
}

// CustomerService 客户管理，详情视图可选 CRM 补充。
type CustomerService struct {
	customers repository.CustomerRepository
	crm       CRMClient // nil 表示未启用
}

// NewCustomerService 创建客户服务
func NewCustomerService(customers repository.CustomerRepository, crm CRMClient) *CustomerService {
	return &CustomerService{customers: customers, crm: crm}
}

// CRMInfo 客户详情里的 CRM 补充信息。
type CRMInfo struct {
	ContactID  string `json:"contact_id"`
	OwnerID    string `json:"owner_id,omitempty"`
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
}

// CustomerDetail 客户详情视图。CRM 为可选补充，查询失败不影响主数据。
type CustomerDetail struct {
	models.Customer
	CRM *CRMInfo `json:"crm,omitempty"`
}

// CustomerInput 创建/更新客户输入。
type CustomerInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

// List 客户列表。
func (s *CustomerService) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customers.List(filter)
}

// Get 客户详情，启用 CRM 时附带联系人与负责人信息。
func (s *CustomerService) Get(ctx context.Context, id uint) (*CustomerDetail, error) {
	customer, err := s.customers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
	}

	detail := &CustomerDetail{Customer: *customer}
	detail.CRM = s.lookupCRM(ctx, customer.Email)
	return detail, nil
}

// lookupCRM CRM 查询软失败：任何错误只记日志。
func (s *CustomerService) lookupCRM(ctx context.Context, email string) *CRMInfo {
	if s.crm == nil || strings.TrimSpace(email) == "" {
		return nil
	}

	contact, err := s.crm.SearchContactByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, hubspot.ErrNotFound) {
			logger.Warnw("crm_contact_lookup_failed", "email", email, "error", err)
		}
		return nil
	}

	info := &CRMInfo{ContactID: contact.ID, OwnerID: contact.OwnerID}
	if contact.OwnerID != "" {
		owner, err := s.crm.GetOwnerByID(ctx, contact.OwnerID)
		if err != nil {
			logger.Warnw("crm_owner_lookup_failed", "owner_id", contact.OwnerID, "error", err)
			return info
		}
		info.OwnerName = strings.TrimSpace(owner.FirstName + " " + owner.LastName)
		info.OwnerEmail = owner.Email
	}
	return info
}

// Create 创建客户。
func (s *CustomerService) Create(input CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, NewValidationError("email")
	}
	existing, err := s.customers.GetByEmail(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewValidationError("email")
	}

	customer := &models.Customer{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: strings.TrimSpace(input.AddressLine2),
		City:         strings.TrimSpace(input.City),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		Country:      strings.TrimSpace(input.Country),
		Notes:        input.Notes,
	}
	if err := s.customers.Create(customer); err != nil {
		return nil, err
	}
	logger.Infow("customer_created", "customer_id", customer.ID, "email", customer.Email)
	return customer, nil
}

// Update 更新客户。
func (s *CustomerService) Update(id uint, input CustomerInput) (*models.Customer, error) {
	customer, err := s.customers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: %d", ErrCustomerNotFound, id)
	}

	updates := map[string]interface{}{
		"name":          strings.TrimSpace(input.Name),
		"phone":         strings.TrimSpace(input.Phone),
		"address_line1": strings.TrimSpace(input.AddressLine1),
		"address_line2": strings.TrimSpace(input.AddressLine2),
		"city":          strings.TrimSpace(input.City),
		"postal_code":   strings.TrimSpace(input.PostalCode),
		"country":       strings.TrimSpace(input.Country),
		"notes":         input.Notes,
	}
	if email := strings.TrimSpace(input.Email); email != "" && email != customer.Email {
		other, err := s.customers.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, NewValidationError("email")
		}
		updates["email"] = email
	}

	if err := s.customers.Update(id, updates); err != nil {
		return nil, err
	}
	return s.customers.GetByID(id)
}

package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"

	"github.com/google/uuid"
)

// OrderService 订单管理。
type OrderService struct {
	orders     repository.OrderRepository
	packs      repository.OrderPackListRepository
	activities repository.OrderActivityRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orders repository.OrderRepository, packs repository.OrderPackListRepository, activities repository.OrderActivityRepository) *OrderService {
	return &OrderService{orders: orders, packs: packs, activities: activities}
}

// OrderView 带操作指引的订单视图。
type OrderView struct {
	models.Order
	Instruction string `json:"instruction"`
}

// CreateOrderInput 手工建单输入。
type CreateOrderInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	CustomerID   *uint  `json:"customer_id"`
	PackID       *uint  `json:"pack_id"`
	Notes        string `json:"notes"`
	Paid         bool   `json:"paid"`
	OkToShip     bool   `json:"ok_to_ship"`
}

// orderUpdatableFields 允许字段级更新的列
var orderUpdatableFields = map[string]bool{
	"name":          true,
	"email":         true,
	"phone":         true,
	"address_line1": true,
	"address_line2": true,
	"city":          true,
	"postal_code":   true,
	"country":       true,
	"notes":         true,
	"customer_id":   true,
	"pack_id":       true,
}

// List 订单列表，每条附带操作指引。
func (s *OrderService) List(filter repository.OrderListFilter) ([]OrderView, int64, error) {
	orders, total, err := s.orders.List(filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, OrderView{
			Order:       orders[i],
			Instruction: OrderInstruction(&orders[i]),
		})
	}
	return views, total, nil
}

// Get 订单详情。
func (s *OrderService) Get(id string) (*OrderView, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return &OrderView{Order: *order, Instruction: OrderInstruction(order)}, nil
}

// Create 手工创建订单，包裹信息从目录快照。
func (s *OrderService) Create(input CreateOrderInput) (*OrderView, error) {
	missing := make([]string, 0)
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(input.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, NewValidationError(missing...)
	}

	order := &models.Order{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: strings.TrimSpace(input.AddressLine2),
		City:         strings.TrimSpace(input.City),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		Country:      strings.TrimSpace(input.Country),
		CustomerID:   input.CustomerID,
		Notes:        input.Notes,
		Paid:         input.Paid,
		OkToShip:     input.OkToShip,
	}
	if input.Paid {
		now := time.Now()
		order.PaidAt = &now
	}

	if input.PackID != nil {
		pack, err := s.packs.GetByID(*input.PackID)
		if err != nil {
			return nil, err
		}
		if pack == nil {
			return nil, fmt.Errorf("%w: %d", ErrPackNotFound, *input.PackID)
		}
		order.PackID = &pack.ID
		order.PackCode = pack.Code
		order.PackLabel = pack.Label
		order.PackWeight = pack.Weight
	}

	if err := s.orders.Create(order); err != nil {
		return nil, err
	}

	s.appendActivity(order.ID, constants.ActivityOrderCreated, "order created manually", nil)
	logger.Infow("order_created", "order_id", order.ID)
	return &OrderView{Order: *order, Instruction: OrderInstruction(order)}, nil
}

// UpdateFields 字段级更新，仅允许白名单内的列。
// 包裹变更时重新快照目录数据。
func (s *OrderService) UpdateFields(id string, updates map[string]interface{}) (*OrderView, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	filtered := make(map[string]interface{}, len(updates))
	rejected := make([]string, 0)
	for key, value := range updates {
		if !orderUpdatableFields[key] {
			rejected = append(rejected, key)
			continue
		}
		filtered[key] = value
	}
	if len(rejected) > 0 {
		return nil, NewValidationError(rejected...)
	}

	if rawPackID, ok := filtered["pack_id"]; ok {
		packID, ok := toUint(rawPackID)
		if !ok {
			return nil, NewValidationError("pack_id")
		}
		pack, err := s.packs.GetByID(packID)
		if err != nil {
			return nil, err
		}
		if pack == nil {
			return nil, fmt.Errorf("%w: %d", ErrPackNotFound, packID)
		}
		filtered["pack_id"] = pack.ID
		filtered["pack_code"] = pack.Code
		filtered["pack_label"] = pack.Label
		filtered["pack_weight"] = pack.Weight
	}

	if err := s.orders.Update(id, filtered); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// SetPaid 切换支付标记。
func (s *OrderService) SetPaid(id string, paid bool) error {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	updates := map[string]interface{}{"paid": paid}
	if paid {
		now := time.Now()
		updates["paid_at"] = &now
	} else {
		updates["paid_at"] = nil
	}
	return s.orders.Update(id, updates)
}

// SetOkToShip 切换发货放行标记。
func (s *OrderService) SetOkToShip(id string, okToShip bool) error {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return s.orders.Update(id, map[string]interface{}{"ok_to_ship": okToShip})
}

// BulkDelete 批量删除订单，返回删除数量。
func (s *OrderService) BulkDelete(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, NewValidationError("ids")
	}
	affected, err := s.orders.DeleteBatch(ids)
	if err != nil {
		return 0, err
	}
	logger.Infow("orders_bulk_deleted", "requested", len(ids), "deleted", affected)
	return affected, nil
}

// Activities 订单动态列表。
func (s *OrderService) Activities(id string, limit int) ([]models.OrderActivity, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return s.activities.ListByOrder(id, limit)
}

func (s *OrderService) appendActivity(orderID, activityType, message string, meta models.JSON) {
	if err := s.activities.Append(&models.OrderActivity{
		OrderID: orderID,
		Type:    activityType,
		Message: message,
		Meta:    meta,
	}); err != nil {
		logger.Warnw("order_activity_append_failed",
			"order_id", orderID,
			"type", activityType,
			"error", err,
		)
	}
}

func toUint(value interface{}) (uint, bool) {
	switch typed := value.(type) {
	case uint:
		return typed, true
	case int:
		if typed < 0 {
			return 0, false
		}
		return uint(typed), true
	case int64:
		if typed < 0 {
			return 0, false
		}
		return uint(typed), true
	case float64:
		if typed < 0 {
			return 0, false
		}
		return uint(typed), true
	default:
		return 0, false
	}
}

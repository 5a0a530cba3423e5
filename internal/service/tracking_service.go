package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"
)

// TrackingService 物流状态轮询。
type TrackingService struct {
	orders     repository.OrderRepository
	activities repository.OrderActivityRepository
	carrier    Carrier
}

// NewTrackingService 创建物流状态服务
func NewTrackingService(orders repository.OrderRepository, activities repository.OrderActivityRepository, carrier Carrier) *TrackingService {
	return &TrackingService{orders: orders, activities: activities, carrier: carrier}
}

// RefreshResult 单个订单的轮询结果。
type RefreshResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RefreshStatus 刷新单个订单的物流状态。
// 承运商 404 不改动状态，但仍然记录本次查询时间，避免失踪运单反复占用轮询窗口。
func (s *TrackingService) RefreshStatus(ctx context.Context, orderID string) (string, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if !order.HasTracking() {
		return "", fmt.Errorf("%w: %s", ErrTrackingNotApplicable, orderID)
	}

	now := time.Now()
	result, err := s.carrier.GetParcelByTracking(ctx, order.TrackingNumber)
	if err != nil {
		if errors.Is(err, sendcloud.ErrNotFound) {
			logger.Warnw("tracking_not_found_at_carrier",
				"order_id", order.ID,
				"tracking_number", order.TrackingNumber,
			)
			if updateErr := s.orders.Update(order.ID, map[string]interface{}{
				"delivery_status_checked_at": &now,
			}); updateErr != nil {
				return "", updateErr
			}
			current := ""
			if order.DeliveryStatus != nil {
				current = *order.DeliveryStatus
			}
			return current, nil
		}
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	previous := ""
	if order.DeliveryStatus != nil {
		previous = *order.DeliveryStatus
	}
	if err := s.orders.Update(order.ID, map[string]interface{}{
		"delivery_status":            result.Status,
		"delivery_status_checked_at": &now,
	}); err != nil {
		return "", err
	}

	// 状态未变化不记动态，每日轮询只在有变化时留痕
	if result.Status != previous {
		s.appendActivity(order.ID, constants.ActivityStatusRefreshed,
			fmt.Sprintf("delivery status changed to %s", result.Status),
			models.JSON{
				"tracking_number": order.TrackingNumber,
				"status":          result.Status,
				"previous":        previous,
			})
	}

	logger.Infow("tracking_status_refreshed",
		"order_id", order.ID,
		"tracking_number", order.TrackingNumber,
		"status", result.Status,
	)
	return result.Status, nil
}

// RefreshBatch 批量刷新：只取有运单号且未送达的订单，顺序轮询。
// limit 非法或超限时回落到默认上限。
func (s *TrackingService) RefreshBatch(ctx context.Context, limit int) ([]RefreshResult, error) {
	if limit <= 0 || limit > constants.DefaultTrackingBatchLimit {
		limit = constants.DefaultTrackingBatchLimit
	}
	orders, err := s.orders.ListForTrackingRefresh(limit)
	if err != nil {
		return nil, err
	}

	results := make([]RefreshResult, 0, len(orders))
	for _, order := range orders {
		status, err := s.RefreshStatus(ctx, order.ID)
		entry := RefreshResult{OrderID: order.ID, Status: status}
		if err != nil {
			entry.Error = err.Error()
			logger.Warnw("tracking_refresh_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
		results = append(results, entry)
	}

	logger.Infow("tracking_batch_refreshed", "count", len(results))
	return results, nil
}

func (s *TrackingService) appendActivity(orderID, activityType, message string, meta models.JSON) {
	if s.activities == nil {
		return
	}
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

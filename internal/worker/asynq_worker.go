package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/provider"
	"github.com/orderdesk-next/internal/queue"
	"github.com/orderdesk-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskTrackingRefreshBatch, c.handleTrackingRefreshBatch)
	mux.HandleFunc(queue.TaskTrackingRefreshOrder, c.handleTrackingRefreshOrder)
}

// handleTrackingRefreshBatch 批量刷新任务。
// 队列可用时按订单拆成单任务投递，重试与并发交给 asynq；否则就地顺序刷新。
func (c *Consumer) handleTrackingRefreshBatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_tracking_refresh_batch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TrackingRefreshBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_tracking_refresh_batch_unmarshal_failed", "error", err)
		return err
	}
	if c.TrackingService == nil {
		logger.Warnw("worker_tracking_refresh_batch_skip_service_nil")
		return nil
	}
	limit := payload.Limit
	if limit <= 0 || limit > constants.DefaultTrackingBatchLimit {
		limit = constants.DefaultTrackingBatchLimit
	}
	if c.QueueClient.Enabled() && c.OrderRepo != nil {
		orders, err := c.OrderRepo.ListForTrackingRefresh(limit)
		if err != nil {
			logger.Warnw("worker_tracking_refresh_batch_list_failed", "error", err)
			return err
		}
		enqueued := 0
		for _, order := range orders {
			if err := c.QueueClient.EnqueueTrackingRefreshOrder(queue.TrackingRefreshOrderPayload{OrderID: order.ID}); err != nil {
				logger.Warnw("worker_tracking_refresh_order_enqueue_failed", "order_id", order.ID, "error", err)
				continue
			}
			enqueued++
		}
		logger.Infow("worker_tracking_refresh_batch_fanout",
			"candidates", len(orders),
			"enqueued", enqueued,
		)
		return nil
	}
	results, err := c.TrackingService.RefreshBatch(ctx, limit)
	if err != nil {
		logger.Warnw("worker_tracking_refresh_batch_failed", "error", err)
		return err
	}
	failed := 0
	for _, result := range results {
		if result.Error != "" {
			failed++
		}
	}
	logger.Infow("worker_tracking_refresh_batch_done",
		"total", len(results),
		"failed", failed,
	)
	return nil
}

func (c *Consumer) handleTrackingRefreshOrder(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_tracking_refresh_order_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TrackingRefreshOrderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_tracking_refresh_order_unmarshal_failed", "error", err)
		return err
	}
	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		logger.Debugw("worker_tracking_refresh_order_skip_invalid_payload")
		return nil
	}
	if c.TrackingService == nil {
		logger.Warnw("worker_tracking_refresh_order_skip_service_nil", "order_id", orderID)
		return nil
	}
	_, err := c.TrackingService.RefreshStatus(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_tracking_refresh_order_skip_not_found", "order_id", orderID)
			return nil
		case errors.Is(err, service.ErrTrackingNotApplicable):
			logger.Debugw("worker_tracking_refresh_order_skip_no_tracking", "order_id", orderID)
			return nil
		default:
			logger.Warnw("worker_tracking_refresh_order_failed", "order_id", orderID, "error", err)
			return err
		}
	}
	return nil
}

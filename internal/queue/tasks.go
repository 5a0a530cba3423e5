package queue

import (
	"encoding/json"

	"github.com/orderdesk-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskTrackingRefreshBatch 批量刷新在途订单物流状态
	TaskTrackingRefreshBatch = constants.TaskTrackingRefreshBatch
	// TaskTrackingRefreshOrder 刷新单个订单物流状态
	TaskTrackingRefreshOrder = constants.TaskTrackingRefreshOrder
)

// TrackingRefreshBatchPayload 批量刷新任务载荷
type TrackingRefreshBatchPayload struct {
	Limit int `json:"limit"`
}

// TrackingRefreshOrderPayload 单订单刷新任务载荷
type TrackingRefreshOrderPayload struct {
	OrderID string `json:"order_id"`
}

// NewTrackingRefreshBatchTask 创建批量刷新任务
func NewTrackingRefreshBatchTask(payload TrackingRefreshBatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrackingRefreshBatch, body), nil
}

// NewTrackingRefreshOrderTask 创建单订单刷新任务
func NewTrackingRefreshOrderTask(payload TrackingRefreshOrderPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrackingRefreshOrder, body), nil
}

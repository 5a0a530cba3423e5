package worker

import (
	"context"
	"testing"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/provider"
	"github.com/orderdesk-next/internal/queue"
	"github.com/orderdesk-next/internal/repository"
	"github.com/orderdesk-next/internal/service"

	"gorm.io/gorm"
)

// stubOrderRepo 内存订单仓库，只覆盖消费者用到的路径
type stubOrderRepo struct {
	orders map[string]*models.Order
}

func newStubOrderRepo(orders ...*models.Order) *stubOrderRepo {
	m := &stubOrderRepo{orders: map[string]*models.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *stubOrderRepo) Create(order *models.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *stubOrderRepo) GetByID(id string) (*models.Order, error) {
	return m.orders[id], nil
}

func (m *stubOrderRepo) GetByInvoiceID(invoiceID string) (*models.Order, error) {
	return nil, nil
}

func (m *stubOrderRepo) GetByCheckoutSessionID(sessionID string) (*models.Order, error) {
	return nil, nil
}

func (m *stubOrderRepo) GetLatestUnpaidByStripeCustomer(stripeCustomerID string) (*models.Order, error) {
	return nil, nil
}

func (m *stubOrderRepo) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (m *stubOrderRepo) ListForTrackingRefresh(limit int) ([]models.Order, error) {
	result := make([]models.Order, 0)
	for _, o := range m.orders {
		if !o.HasTracking() || o.IsDelivered() {
			continue
		}
		result = append(result, *o)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *stubOrderRepo) Update(id string, updates map[string]interface{}) error {
	order, ok := m.orders[id]
	if !ok {
		return nil
	}
	if s, ok := updates["delivery_status"].(string); ok {
		order.DeliveryStatus = &s
	}
	return nil
}

func (m *stubOrderRepo) DeleteBatch(ids []string) (int64, error) {
	return 0, nil
}

func (m *stubOrderRepo) WithTx(tx *gorm.DB) *repository.GormOrderRepository {
	return nil
}

type stubActivityRepo struct {
	appended []*models.OrderActivity
}

func (m *stubActivityRepo) Append(activity *models.OrderActivity) error {
	m.appended = append(m.appended, activity)
	return nil
}

func (m *stubActivityRepo) ListByOrder(orderID string, limit int) ([]models.OrderActivity, error) {
	return nil, nil
}

type stubCarrier struct {
	status string
	calls  []string
}

func (f *stubCarrier) CreateParcel(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error) {
	return nil, nil
}

func (f *stubCarrier) CreateReturn(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error) {
	return nil, nil
}

func (f *stubCarrier) GetParcelByTracking(ctx context.Context, trackingNumber string) (*sendcloud.TrackingResult, error) {
	f.calls = append(f.calls, trackingNumber)
	return &sendcloud.TrackingResult{Status: f.status}, nil
}

func (f *stubCarrier) ListShippingMethods(ctx context.Context) ([]sendcloud.ShippingMethodInfo, error) {
	return nil, nil
}

func newTestConsumer(orders *stubOrderRepo, carrier *stubCarrier) *Consumer {
	return NewConsumer(&provider.Container{
		OrderRepo:       orders,
		TrackingService: service.NewTrackingService(orders, &stubActivityRepo{}, carrier),
	})
}

func TestHandleTrackingRefreshOrderTask(t *testing.T) {
	order := &models.Order{ID: "ord-1", TrackingNumber: "SC123"}
	orders := newStubOrderRepo(order)
	carrier := &stubCarrier{status: "En route"}
	consumer := newTestConsumer(orders, carrier)

	task, err := queue.NewTrackingRefreshOrderTask(queue.TrackingRefreshOrderPayload{OrderID: "ord-1"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := consumer.handleTrackingRefreshOrder(context.Background(), task); err != nil {
		t.Fatalf("handleTrackingRefreshOrder: %v", err)
	}
	if order.DeliveryStatus == nil || *order.DeliveryStatus != "En route" {
		t.Errorf("delivery status not refreshed: %v", order.DeliveryStatus)
	}
}

func TestHandleTrackingRefreshOrderTaskSkipsMissingOrder(t *testing.T) {
	consumer := newTestConsumer(newStubOrderRepo(), &stubCarrier{})

	task, err := queue.NewTrackingRefreshOrderTask(queue.TrackingRefreshOrderPayload{OrderID: "missing"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	// 订单已删除属正常流转，不触发 asynq 重试
	if err := consumer.handleTrackingRefreshOrder(context.Background(), task); err != nil {
		t.Errorf("missing order must not be retried: %v", err)
	}
}

func TestHandleTrackingRefreshBatchTaskInline(t *testing.T) {
	// 队列客户端未配置时批量任务就地执行
	pending := &models.Order{ID: "ord-1", TrackingNumber: "SC1"}
	deliveredStatus := "Delivered"
	delivered := &models.Order{ID: "ord-2", TrackingNumber: "SC2", DeliveryStatus: &deliveredStatus}
	orders := newStubOrderRepo(pending, delivered)
	carrier := &stubCarrier{status: "Sorted"}
	consumer := newTestConsumer(orders, carrier)

	task, err := queue.NewTrackingRefreshBatchTask(queue.TrackingRefreshBatchPayload{Limit: 10})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := consumer.handleTrackingRefreshBatch(context.Background(), task); err != nil {
		t.Fatalf("handleTrackingRefreshBatch: %v", err)
	}
	if len(carrier.calls) != 1 || carrier.calls[0] != "SC1" {
		t.Errorf("carrier calls = %v, want only the pending order", carrier.calls)
	}
	if pending.DeliveryStatus == nil || *pending.DeliveryStatus != "Sorted" {
		t.Errorf("pending order not refreshed: %v", pending.DeliveryStatus)
	}
}

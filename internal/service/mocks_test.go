package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"

	"gorm.io/gorm"
)

// mockOrderRepo 内存订单仓库
type mockOrderRepo struct {
	orders    map[string]*models.Order
	updateErr error
	updates   []map[string]interface{}
}

func newMockOrderRepo(orders ...*models.Order) *mockOrderRepo {
	m := &mockOrderRepo{orders: map[string]*models.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrderRepo) Create(order *models.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(id string) (*models.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) GetByInvoiceID(invoiceID string) (*models.Order, error) {
	for _, o := range m.orders {
		if o.StripeInvoiceID == invoiceID && invoiceID != "" {
			return o, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) GetByCheckoutSessionID(sessionID string) (*models.Order, error) {
	for _, o := range m.orders {
		if o.CheckoutSessionID == sessionID && sessionID != "" {
			return o, nil
		}
	}
	return nil, nil
}

func (m *mockOrderRepo) GetLatestUnpaidByStripeCustomer(stripeCustomerID string) (*models.Order, error) {
	var latest *models.Order
	for _, o := range m.orders {
		if o.StripeCustomerID != stripeCustomerID || o.Paid {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	return latest, nil
}

func (m *mockOrderRepo) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	ids := make([]string, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.orders[id])
	}
	return result, int64(len(result)), nil
}

func (m *mockOrderRepo) ListForTrackingRefresh(limit int) ([]models.Order, error) {
	ids := make([]string, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]models.Order, 0)
	for _, id := range ids {
		o := m.orders[id]
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

func (m *mockOrderRepo) Update(id string, updates map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updates)
	order, ok := m.orders[id]
	if !ok {
		return nil
	}
	applyOrderUpdates(order, updates)
	return nil
}

func (m *mockOrderRepo) DeleteBatch(ids []string) (int64, error) {
	var affected int64
	for _, id := range ids {
		if _, ok := m.orders[id]; ok {
			delete(m.orders, id)
			affected++
		}
	}
	return affected, nil
}

func (m *mockOrderRepo) WithTx(tx *gorm.DB) *repository.GormOrderRepository {
	return nil
}

func applyOrderUpdates(order *models.Order, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "tracking_number":
			order.TrackingNumber, _ = value.(string)
		case "tracking_link":
			order.TrackingLink, _ = value.(string)
		case "label_url":
			order.LabelURL, _ = value.(string)
		case "shipping_id":
			order.ShippingID, _ = value.(string)
		case "delivery_status":
			if s, ok := value.(string); ok {
				order.DeliveryStatus = &s
			}
		case "paid":
			order.Paid, _ = value.(bool)
		case "sendcloud_return_id":
			order.SendcloudReturnID, _ = value.(string)
		case "sendcloud_return_tracking":
			order.SendcloudReturnTracking, _ = value.(string)
		case "sendcloud_return_label_url":
			order.SendcloudReturnLabelURL, _ = value.(string)
		case "sendcloud_return_reason":
			order.SendcloudReturnReason, _ = value.(string)
		}
	}
}

// mockActivityRepo 内存订单动态仓库
type mockActivityRepo struct {
	appended []*models.OrderActivity
}

func (m *mockActivityRepo) Append(activity *models.OrderActivity) error {
	m.appended = append(m.appended, activity)
	return nil
}

func (m *mockActivityRepo) ListByOrder(orderID string, limit int) ([]models.OrderActivity, error) {
	result := make([]models.OrderActivity, 0)
	for _, a := range m.appended {
		if a.OrderID == orderID {
			result = append(result, *a)
		}
	}
	return result, nil
}

// mockCustomerRepo 内存客户仓库
type mockCustomerRepo struct {
	customers map[uint]*models.Customer
	nextID    uint
}

func newMockCustomerRepo(customers ...*models.Customer) *mockCustomerRepo {
	m := &mockCustomerRepo{customers: map[uint]*models.Customer{}, nextID: 1}
	for _, c := range customers {
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
		m.customers[c.ID] = c
	}
	return m
}

func (m *mockCustomerRepo) Create(customer *models.Customer) error {
	if customer.ID == 0 {
		customer.ID = m.nextID
		m.nextID++
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepo) GetByID(id uint) (*models.Customer, error) {
	return m.customers[id], nil
}

func (m *mockCustomerRepo) GetByEmail(email string) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.Email == email && email != "" {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepo) GetByStripeID(stripeCustomerID string) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.StripeCustomerID == stripeCustomerID && stripeCustomerID != "" {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepo) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	result := make([]models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockCustomerRepo) Update(id uint, updates map[string]interface{}) error {
	return nil
}

func (m *mockCustomerRepo) Save(customer *models.Customer) error {
	m.customers[customer.ID] = customer
	return nil
}

// mockPackRepo 内存包裹目录仓库
type mockPackRepo struct {
	packs map[uint]*models.OrderPackList
}

func newMockPackRepo(packs ...*models.OrderPackList) *mockPackRepo {
	m := &mockPackRepo{packs: map[uint]*models.OrderPackList{}}
	for _, p := range packs {
		m.packs[p.ID] = p
	}
	return m
}

func (m *mockPackRepo) Create(pack *models.OrderPackList) error {
	m.packs[pack.ID] = pack
	return nil
}

func (m *mockPackRepo) GetByID(id uint) (*models.OrderPackList, error) {
	return m.packs[id], nil
}

func (m *mockPackRepo) GetByCode(code string) (*models.OrderPackList, error) {
	for _, p := range m.packs {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPackRepo) List(onlyActive bool) ([]models.OrderPackList, error) {
	result := make([]models.OrderPackList, 0, len(m.packs))
	for _, p := range m.packs {
		if onlyActive && !p.Active {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPackRepo) Update(id uint, updates map[string]interface{}) error {
	return nil
}

func (m *mockPackRepo) Delete(id uint) error {
	delete(m.packs, id)
	return nil
}

// mockStripeEventRepo 内存事件审计仓库
type mockStripeEventRepo struct {
	events    map[string]*models.StripeEvent
	order     []string
	recordErr error
	lookupErr error
}

func newMockStripeEventRepo() *mockStripeEventRepo {
	return &mockStripeEventRepo{events: map[string]*models.StripeEvent{}}
}

func (m *mockStripeEventRepo) Record(event *models.StripeEvent) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.events[event.EventID] = event
	m.order = append(m.order, event.EventID)
	return nil
}

func (m *mockStripeEventRepo) GetByEventID(eventID string) (*models.StripeEvent, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.events[eventID], nil
}

func (m *mockStripeEventRepo) MarkProcessed(eventID string, handled bool, handleError string) error {
	event, ok := m.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not recorded", eventID)
	}
	event.Handled = handled
	event.HandleError = handleError
	return nil
}

func (m *mockStripeEventRepo) List(filter repository.StripeEventListFilter) ([]models.StripeEvent, int64, error) {
	result := make([]models.StripeEvent, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, *m.events[id])
	}
	return result, int64(len(result)), nil
}

// fakeCarrier 可编程承运商
type fakeCarrier struct {
	createResult *sendcloud.ParcelResult
	createErr    error
	createCalls  []sendcloud.ParcelInput

	trackingResult *sendcloud.TrackingResult
	trackingErr    error
	trackingByNum  map[string]*sendcloud.TrackingResult
	trackingCalls  []string

	methods    []sendcloud.ShippingMethodInfo
	methodsErr error
	listCalls  int
}

func (f *fakeCarrier) CreateParcel(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error) {
	f.createCalls = append(f.createCalls, input)
	return f.createResult, f.createErr
}

func (f *fakeCarrier) CreateReturn(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error) {
	input.IsReturn = true
	f.createCalls = append(f.createCalls, input)
	return f.createResult, f.createErr
}

func (f *fakeCarrier) GetParcelByTracking(ctx context.Context, trackingNumber string) (*sendcloud.TrackingResult, error) {
	f.trackingCalls = append(f.trackingCalls, trackingNumber)
	if f.trackingByNum != nil {
		if result, ok := f.trackingByNum[trackingNumber]; ok {
			return result, nil
		}
		return nil, fmt.Errorf("%w: tracking %s", sendcloud.ErrNotFound, trackingNumber)
	}
	return f.trackingResult, f.trackingErr
}

func (f *fakeCarrier) ListShippingMethods(ctx context.Context) ([]sendcloud.ShippingMethodInfo, error) {
	f.listCalls++
	return f.methods, f.methodsErr
}

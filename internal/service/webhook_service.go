package service

import (
	"fmt"
	"time"

	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/countries"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/payment/stripe"
	"github.com/orderdesk-next/internal/repository"

	"github.com/google/uuid"
)

// WebhookService Stripe webhook 处理：先落库审计，再按白名单分发。
type WebhookService struct {
	cfg        *stripe.Config
	events     repository.StripeEventRepository
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	activities repository.OrderActivityRepository
}

// NewWebhookService 创建 webhook 服务
func NewWebhookService(
	cfg *stripe.Config,
	events repository.StripeEventRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	activities repository.OrderActivityRepository,
) *WebhookService {
	return &WebhookService{
		cfg:        cfg,
		events:     events,
		orders:     orders,
		customers:  customers,
		activities: activities,
	}
}

// WebhookOutcome 事件处理结果。
type WebhookOutcome struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Handled   bool   `json:"handled"`
	Duplicate bool   `json:"duplicate"`
}

// HandleEvent 校验签名并处理事件。
// 签名失败返回 stripe.ErrSignatureInvalid（边界层映射为 400）。
// 签名通过后不再返回错误：审计/分发失败只记录，
// 不向 Stripe 返回非 200，避免无意义的重投。
func (s *WebhookService) HandleEvent(rawBody []byte, signatureHeader string, now time.Time) (*WebhookOutcome, error) {
	event, err := stripe.VerifyAndParseEvent(s.cfg, signatureHeader, rawBody, now)
	if err != nil {
		return nil, err
	}

	outcome := &WebhookOutcome{EventID: event.ID, EventType: event.Type}

	existing, err := s.events.GetByEventID(event.ID)
	if err != nil {
		logger.Warnw("stripe_event_duplicate_check_failed", "event_id", event.ID, "error", err)
	}
	if existing != nil {
		logger.Infow("stripe_event_duplicate", "event_id", event.ID, "type", event.Type)
		outcome.Duplicate = true
		outcome.Handled = existing.Handled
		return outcome, nil
	}

	// 审计先行：无论后续分发成败，事件本体已留档。
	// 留档失败时跳过分发，事件丢给日志人工跟进
	if err := s.events.Record(&models.StripeEvent{
		EventID: event.ID,
		Type:    event.Type,
		Payload: string(rawBody),
	}); err != nil {
		logger.Errorw("stripe_event_record_failed",
			"event_id", event.ID,
			"type", event.Type,
			"error", err,
		)
		return outcome, nil
	}

	handled, dispatchErr := s.dispatch(event)
	outcome.Handled = handled

	errMsg := ""
	if dispatchErr != nil {
		errMsg = dispatchErr.Error()
		logger.Errorw("stripe_event_dispatch_failed",
			"event_id", event.ID,
			"type", event.Type,
			"error", dispatchErr,
		)
	}
	if err := s.events.MarkProcessed(event.ID, handled, errMsg); err != nil {
		logger.Warnw("stripe_event_mark_failed", "event_id", event.ID, "error", err)
	}

	logger.Infow("stripe_event_processed",
		"event_id", event.ID,
		"type", event.Type,
		"handled", handled,
	)
	return outcome, nil
}

// dispatch 白名单分发。未知类型仅留档。
func (s *WebhookService) dispatch(event *stripe.Event) (bool, error) {
	switch event.Type {
	case constants.StripeEventCustomerCreated, constants.StripeEventCustomerUpdated:
		return true, s.upsertCustomer(event.Object)
	case constants.StripeEventCheckoutSessionCompleted:
		return true, s.createOrderFromCheckout(event.Object)
	case constants.StripeEventInvoicePaid, constants.StripeEventInvoicePaymentSucceeded:
		return true, s.markOrderPaid(event.Object)
	default:
		logger.Infow("stripe_event_skipped", "event_id", event.ID, "type", event.Type)
		return false, nil
	}
}

func (s *WebhookService) upsertCustomer(objectRaw map[string]interface{}) error {
	payload, err := stripe.CustomerFromObject(objectRaw)
	if err != nil {
		return err
	}

	customer, err := s.customers.GetByStripeID(payload.ID)
	if err != nil {
		return err
	}
	if customer == nil && payload.Email != "" {
		customer, err = s.customers.GetByEmail(payload.Email)
		if err != nil {
			return err
		}
	}
	if customer == nil {
		customer = &models.Customer{}
	}

	customer.StripeCustomerID = payload.ID
	if payload.Email != "" {
		customer.Email = payload.Email
	}
	if payload.Name != "" {
		customer.Name = payload.Name
	}
	if payload.Phone != "" {
		customer.Phone = payload.Phone
	}
	if payload.AddressLine1 != "" {
		customer.AddressLine1 = payload.AddressLine1
		customer.AddressLine2 = payload.AddressLine2
		customer.City = payload.City
		customer.PostalCode = payload.PostalCode
		customer.Country = countries.ToAlpha2(payload.Country)
	}

	if customer.ID == 0 {
		return s.customers.Create(customer)
	}
	return s.customers.Save(customer)
}

func (s *WebhookService) createOrderFromCheckout(objectRaw map[string]interface{}) error {
	session, err := stripe.CheckoutSessionFromObject(objectRaw)
	if err != nil {
		return err
	}

	existing, err := s.orders.GetByCheckoutSessionID(session.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Infow("checkout_session_already_imported", "session_id", session.ID, "order_id", existing.ID)
		return nil
	}

	order := &models.Order{
		ID:                uuid.NewString(),
		Name:              session.CustomerName,
		Email:             session.CustomerEmail,
		Phone:             session.CustomerPhone,
		AddressLine1:      session.AddressLine1,
		AddressLine2:      session.AddressLine2,
		City:              session.City,
		PostalCode:        session.PostalCode,
		Country:           session.Country,
		StripeCustomerID:  session.CustomerID,
		StripeInvoiceID:   session.InvoiceID,
		CheckoutSessionID: session.ID,
	}

	if session.CustomerID != "" {
		customer, err := s.customers.GetByStripeID(session.CustomerID)
		if err != nil {
			return err
		}
		if customer != nil {
			order.CustomerID = &customer.ID
		}
	}

	if err := s.orders.Create(order); err != nil {
		return err
	}

	s.appendActivity(order.ID, constants.ActivityOrderCreated,
		fmt.Sprintf("order imported from checkout session %s", session.ID),
		models.JSON{"checkout_session_id": session.ID})
	logger.Infow("order_created_from_checkout", "order_id", order.ID, "session_id", session.ID)
	return nil
}

func (s *WebhookService) markOrderPaid(objectRaw map[string]interface{}) error {
	invoice, err := stripe.InvoiceFromObject(objectRaw)
	if err != nil {
		return err
	}

	order, err := s.orders.GetByInvoiceID(invoice.ID)
	if err != nil {
		return err
	}
	if order == nil {
		// 发票没挂上任何订单时回退到该客户最近一笔未支付订单
		order, err = s.orders.GetLatestUnpaidByStripeCustomer(invoice.CustomerID)
		if err != nil {
			return err
		}
	}
	if order == nil {
		logger.Warnw("invoice_without_matching_order",
			"invoice_id", invoice.ID,
			"stripe_customer_id", invoice.CustomerID,
		)
		return nil
	}
	if order.Paid {
		return nil
	}

	paidAt := time.Now()
	if invoice.PaidAt != nil {
		paidAt = *invoice.PaidAt
	}
	if err := s.orders.Update(order.ID, map[string]interface{}{
		"paid":              true,
		"paid_at":           &paidAt,
		"stripe_invoice_id": invoice.ID,
	}); err != nil {
		return err
	}

	s.appendActivity(order.ID, constants.ActivityOrderPaid,
		fmt.Sprintf("order marked paid via invoice %s", invoice.ID),
		models.JSON{"invoice_id": invoice.ID})
	logger.Infow("order_marked_paid", "order_id", order.ID, "invoice_id", invoice.ID)
	return nil
}

func (s *WebhookService) appendActivity(orderID, activityType, message string, meta models.JSON) {
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

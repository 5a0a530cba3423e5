package service

import (
	"context"
	"errors"
	"testing"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/models"

	"github.com/shopspring/decimal"
)

func uintPtr(v uint) *uint { return &v }

func shippableOrder() *models.Order {
	return &models.Order{
		ID:           "ord-1",
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "+33123456789",
		AddressLine1: "1 Main St",
		City:         "Paris",
		PostalCode:   "75001",
		Country:      "France",
		PackID:       uintPtr(2),
		PackWeight:   models.NewWeightFromDecimal(decimal.NewFromFloat(1.25)),
		Paid:         true,
		OkToShip:     true,
	}
}

func successfulParcel() *sendcloud.ParcelResult {
	return &sendcloud.ParcelResult{
		ParcelID:       "12345",
		TrackingNumber: "SC123",
		TrackingURL:    "https://track/SC123",
		LabelURL:       "https://label/12345",
		Status:         "Ready to send",
	}
}

func TestCreateLabel(t *testing.T) {
	order := shippableOrder()
	orders := newMockOrderRepo(order)
	activities := &mockActivityRepo{}
	carrier := &fakeCarrier{createResult: successfulParcel()}
	svc := NewLabelService(orders, activities, carrier)

	result, err := svc.CreateLabel(context.Background(), "ord-1", 8, "Unstamped letter")
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}
	if result.TrackingNumber != "SC123" || result.Warning != "" {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(carrier.createCalls) != 1 {
		t.Fatalf("carrier calls = %d", len(carrier.createCalls))
	}
	if carrier.createCalls[0].Country != "FR" {
		t.Errorf("country should be normalized, got %q", carrier.createCalls[0].Country)
	}
	if order.TrackingNumber != "SC123" {
		t.Errorf("order tracking not persisted: %q", order.TrackingNumber)
	}
	if order.DeliveryStatus == nil || *order.DeliveryStatus != constants.DeliveryStatusReadyToSend {
		t.Errorf("delivery status = %v", order.DeliveryStatus)
	}
	if len(activities.appended) != 1 || activities.appended[0].Type != constants.ActivityLabelCreated {
		t.Errorf("activity not appended: %+v", activities.appended)
	}
}

func TestCreateLabelAggregatesMissingFields(t *testing.T) {
	// 每缺一个字段都要出现在同一次返回里，且不触发承运商调用
	base := shippableOrder()
	strip := map[string]func(*models.Order){
		"name":          func(o *models.Order) { o.Name = "" },
		"email":         func(o *models.Order) { o.Email = "" },
		"phone":         func(o *models.Order) { o.Phone = "" },
		"address_line1": func(o *models.Order) { o.AddressLine1 = "" },
		"city":          func(o *models.Order) { o.City = "" },
		"postal_code":   func(o *models.Order) { o.PostalCode = "" },
		"country":       func(o *models.Order) { o.Country = "" },
		"pack":          func(o *models.Order) { o.PackID = nil },
	}

	for field, apply := range strip {
		order := *base
		apply(&order)
		orders := newMockOrderRepo(&order)
		carrier := &fakeCarrier{createResult: successfulParcel()}
		svc := NewLabelService(orders, &mockActivityRepo{}, carrier)

		_, err := svc.CreateLabel(context.Background(), "ord-1", 8, "method")
		ve, ok := AsValidationError(err)
		if !ok {
			t.Fatalf("field %s: want ValidationError, got %v", field, err)
		}
		found := false
		for _, f := range ve.Fields {
			if f == field {
				found = true
			}
		}
		if !found {
			t.Errorf("field %s missing from %v", field, ve.Fields)
		}
		if len(carrier.createCalls) != 0 {
			t.Errorf("field %s: carrier called despite validation failure", field)
		}
	}
}

func TestCreateLabelAllMissingAtOnce(t *testing.T) {
	order := &models.Order{ID: "ord-1"}
	svc := NewLabelService(newMockOrderRepo(order), &mockActivityRepo{}, &fakeCarrier{})

	_, err := svc.CreateLabel(context.Background(), "ord-1", 0, "")
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(ve.Fields) != 9 {
		t.Errorf("want 9 missing fields, got %d: %v", len(ve.Fields), ve.Fields)
	}
}

func TestCreateLabelOrderNotFound(t *testing.T) {
	svc := NewLabelService(newMockOrderRepo(), &mockActivityRepo{}, &fakeCarrier{})
	_, err := svc.CreateLabel(context.Background(), "missing", 8, "method")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestCreateLabelAlreadyExists(t *testing.T) {
	order := shippableOrder()
	order.TrackingNumber = "OLD"
	svc := NewLabelService(newMockOrderRepo(order), &mockActivityRepo{}, &fakeCarrier{})
	_, err := svc.CreateLabel(context.Background(), "ord-1", 8, "method")
	if !errors.Is(err, ErrLabelAlreadyExists) {
		t.Fatalf("want ErrLabelAlreadyExists, got %v", err)
	}
}

func TestCreateLabelCarrierFailure(t *testing.T) {
	orders := newMockOrderRepo(shippableOrder())
	carrier := &fakeCarrier{createErr: errors.New("boom")}
	svc := NewLabelService(orders, &mockActivityRepo{}, carrier)

	_, err := svc.CreateLabel(context.Background(), "ord-1", 8, "method")
	if !errors.Is(err, ErrUpstreamFailed) {
		t.Fatalf("want ErrUpstreamFailed, got %v", err)
	}
	if len(orders.updates) != 0 {
		t.Errorf("order must not be updated on carrier failure")
	}
}

func TestCreateLabelPersistFailureReturnsWarning(t *testing.T) {
	// 承运商创建成功后落库失败：成功 + Warning，绝不返回错误
	orders := newMockOrderRepo(shippableOrder())
	orders.updateErr = errors.New("db gone")
	svc := NewLabelService(orders, &mockActivityRepo{}, &fakeCarrier{createResult: successfulParcel()})

	result, err := svc.CreateLabel(context.Background(), "ord-1", 8, "method")
	if err != nil {
		t.Fatalf("CreateLabel should not fail after carrier success: %v", err)
	}
	if result.Warning == "" {
		t.Error("warning expected when persistence fails")
	}
	if result.TrackingNumber != "SC123" {
		t.Errorf("tracking = %q", result.TrackingNumber)
	}
}

func validReturnInput() ReturnLabelInput {
	return ReturnLabelInput{
		Reason:         "wrong_item",
		WeightKG:       "1.250",
		MethodID:       8,
		ToName:         "Warehouse Ops",
		ToAddressLine1: "10 Depot Rd",
		ToCity:         "Rotterdam",
		ToPostalCode:   "3011 AB",
		ToCountry:      "Netherlands",
	}
}

func TestCreateReturnLabelCustomsRequired(t *testing.T) {
	order := shippableOrder()
	order.Country = "United Kingdom" // GB 需报关
	svc := NewLabelService(newMockOrderRepo(order), &mockActivityRepo{}, &fakeCarrier{createResult: successfulParcel()})

	input := validReturnInput()
	input.Reason = "damaged"
	_, err := svc.CreateReturnLabel(context.Background(), "ord-1", input)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	found := false
	for _, f := range ve.Fields {
		if f == "customs_items" {
			found = true
		}
	}
	if !found {
		t.Errorf("customs_items missing from %v", ve.Fields)
	}
}

func TestCreateReturnLabelCustomsItemValidation(t *testing.T) {
	order := shippableOrder()
	order.Country = "CH"
	svc := NewLabelService(newMockOrderRepo(order), &mockActivityRepo{}, &fakeCarrier{createResult: successfulParcel()})

	input := validReturnInput()
	input.Reason = "damaged"
	input.CustomsItems = []ReturnCustomsItemInput{
		{Description: "", Quantity: 0, Value: "-1", WeightKG: "0", HSCode: "", OriginCountry: "FRA"},
	}
	_, err := svc.CreateReturnLabel(context.Background(), "ord-1", input)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	for _, want := range []string{
		"customs_items[0].description",
		"customs_items[0].quantity",
		"customs_items[0].value",
		"customs_items[0].weight_kg",
		"customs_items[0].hs_code",
		"customs_items[0].origin_country",
	} {
		found := false
		for _, f := range ve.Fields {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("%s missing from %v", want, ve.Fields)
		}
	}
}

func TestCreateReturnLabelNoCustomsForDomestic(t *testing.T) {
	order := shippableOrder() // France 不需报关
	orders := newMockOrderRepo(order)
	carrier := &fakeCarrier{createResult: successfulParcel()}
	svc := NewLabelService(orders, &mockActivityRepo{}, carrier)

	result, err := svc.CreateReturnLabel(context.Background(), "ord-1", validReturnInput())
	if err != nil {
		t.Fatalf("CreateReturnLabel: %v", err)
	}
	if result.TrackingNumber != "SC123" {
		t.Errorf("tracking = %q", result.TrackingNumber)
	}
	sent := carrier.createCalls[0]
	if !sent.IsReturn {
		t.Error("parcel should be flagged as return")
	}
	// 收件方是退回目的地，发件方是客户侧地址
	if sent.Name != "Warehouse Ops" || sent.City != "Rotterdam" || sent.Country != "NL" {
		t.Errorf("return destination not sent to carrier: %+v", sent)
	}
	if sent.FromName != "Jane Doe" || sent.FromCity != "Paris" || sent.FromCountry != "FR" {
		t.Errorf("sender address not sent to carrier: %+v", sent)
	}
	if order.SendcloudReturnID != "12345" || order.SendcloudReturnReason != "wrong_item" {
		t.Errorf("return fields not persisted: %+v", order)
	}
}

func TestCreateReturnLabelRequiresToAddress(t *testing.T) {
	carrier := &fakeCarrier{createResult: successfulParcel()}
	svc := NewLabelService(newMockOrderRepo(shippableOrder()), &mockActivityRepo{}, carrier)

	input := validReturnInput()
	input.ToName = ""
	input.ToAddressLine1 = ""
	input.ToCity = ""
	input.ToPostalCode = ""
	input.ToCountry = ""
	_, err := svc.CreateReturnLabel(context.Background(), "ord-1", input)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	for _, want := range []string{"to_name", "to_address_line1", "to_city", "to_postal_code", "to_country"} {
		found := false
		for _, f := range ve.Fields {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("%s missing from %v", want, ve.Fields)
		}
	}
	if len(carrier.createCalls) != 0 {
		t.Error("carrier called despite missing return destination")
	}
}

func TestCreateReturnLabelInvalidReasonAndWeight(t *testing.T) {
	svc := NewLabelService(newMockOrderRepo(shippableOrder()), &mockActivityRepo{}, &fakeCarrier{})
	input := validReturnInput()
	input.Reason = "because"
	input.WeightKG = "-2"
	_, err := svc.CreateReturnLabel(context.Background(), "ord-1", input)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("fields = %v", ve.Fields)
	}
}

func TestUpgradeLabel(t *testing.T) {
	order := shippableOrder()
	order.TrackingNumber = "OLD"
	order.ShippingID = "old-parcel"
	orders := newMockOrderRepo(order)
	activities := &mockActivityRepo{}
	svc := NewLabelService(orders, activities, &fakeCarrier{createResult: successfulParcel()})

	result, err := svc.UpgradeLabel(context.Background(), "ord-1", 9, "Tracked letter")
	if err != nil {
		t.Fatalf("UpgradeLabel: %v", err)
	}
	if result.TrackingNumber != "SC123" {
		t.Errorf("tracking = %q", result.TrackingNumber)
	}
	if order.TrackingNumber != "SC123" || order.ShippingID != "12345" {
		t.Errorf("tracking fields not replaced: %+v", order)
	}
	if len(activities.appended) != 1 || activities.appended[0].Type != constants.ActivityLabelUpgraded {
		t.Errorf("upgrade activity missing")
	}
}

func TestUpgradeLabelRequiresExistingLabel(t *testing.T) {
	svc := NewLabelService(newMockOrderRepo(shippableOrder()), &mockActivityRepo{}, &fakeCarrier{})
	_, err := svc.UpgradeLabel(context.Background(), "ord-1", 9, "method")
	if !errors.Is(err, ErrLabelMissing) {
		t.Fatalf("want ErrLabelMissing, got %v", err)
	}
}

package service

import (
	"errors"
	"testing"

	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"

	"github.com/shopspring/decimal"
)

func testPack() *models.OrderPackList {
	return &models.OrderPackList{
		ID:     2,
		Code:   "S",
		Label:  "Small box",
		Weight: models.NewWeightFromDecimal(decimal.NewFromFloat(0.5)),
		Active: true,
	}
}

func TestOrderCreateSnapshotsPack(t *testing.T) {
	orders := newMockOrderRepo()
	svc := NewOrderService(orders, newMockPackRepo(testPack()), &mockActivityRepo{})

	packID := uint(2)
	view, err := svc.Create(CreateOrderInput{
		Name:   "Jane",
		Email:  "jane@example.com",
		PackID: &packID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.ID == "" {
		t.Error("order id not generated")
	}
	if view.PackCode != "S" || view.PackLabel != "Small box" {
		t.Errorf("pack snapshot missing: %+v", view.Order)
	}
	if !view.PackWeight.IsPositive() {
		t.Error("pack weight not copied")
	}
	if view.Instruction != constants.InstructionActionRequired {
		t.Errorf("instruction = %q", view.Instruction)
	}
}

func TestOrderCreateUnknownPack(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), newMockPackRepo(), &mockActivityRepo{})
	packID := uint(99)
	_, err := svc.Create(CreateOrderInput{Name: "Jane", Email: "j@e.com", PackID: &packID})
	if !errors.Is(err, ErrPackNotFound) {
		t.Fatalf("want ErrPackNotFound, got %v", err)
	}
}

func TestOrderCreateValidation(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), newMockPackRepo(), &mockActivityRepo{})
	_, err := svc.Create(CreateOrderInput{})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("fields = %v", ve.Fields)
	}
}

func TestOrderListComputesInstruction(t *testing.T) {
	paid := &models.Order{ID: "a", Paid: true, OkToShip: true}
	shipped := &models.Order{ID: "b", TrackingNumber: "T1"}
	svc := NewOrderService(newMockOrderRepo(paid, shipped), newMockPackRepo(), &mockActivityRepo{})

	views, total, err := svc.List(repository.OrderListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d", total)
	}
	byID := map[string]string{}
	for _, v := range views {
		byID[v.ID] = v.Instruction
	}
	if byID["a"] != constants.InstructionToShip {
		t.Errorf("instruction a = %q", byID["a"])
	}
	if byID["b"] != constants.InstructionShipped {
		t.Errorf("instruction b = %q", byID["b"])
	}
}

func TestOrderUpdateFieldsRejectsUnknownColumns(t *testing.T) {
	order := &models.Order{ID: "ord-1", TrackingNumber: "T1"}
	svc := NewOrderService(newMockOrderRepo(order), newMockPackRepo(), &mockActivityRepo{})

	_, err := svc.UpdateFields("ord-1", map[string]interface{}{
		"tracking_number": "HACKED",
		"paid":            true,
	})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("fields = %v", ve.Fields)
	}
	if order.TrackingNumber != "T1" {
		t.Error("tracking must not change through field update")
	}
}

func TestOrderUpdateFieldsPackResnapshot(t *testing.T) {
	order := &models.Order{ID: "ord-1"}
	orders := newMockOrderRepo(order)
	svc := NewOrderService(orders, newMockPackRepo(testPack()), &mockActivityRepo{})

	_, err := svc.UpdateFields("ord-1", map[string]interface{}{"pack_id": 2})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if len(orders.updates) != 1 {
		t.Fatalf("updates = %d", len(orders.updates))
	}
	if orders.updates[0]["pack_code"] != "S" {
		t.Errorf("pack snapshot not refreshed: %v", orders.updates[0])
	}
}

func TestOrderSetPaid(t *testing.T) {
	order := &models.Order{ID: "ord-1"}
	orders := newMockOrderRepo(order)
	svc := NewOrderService(orders, newMockPackRepo(), &mockActivityRepo{})

	if err := svc.SetPaid("ord-1", true); err != nil {
		t.Fatalf("SetPaid: %v", err)
	}
	if orders.updates[0]["paid"] != true || orders.updates[0]["paid_at"] == nil {
		t.Errorf("updates = %v", orders.updates[0])
	}

	if err := svc.SetPaid("ord-1", false); err != nil {
		t.Fatalf("SetPaid(false): %v", err)
	}
	if orders.updates[1]["paid_at"] != nil {
		t.Error("paid_at should be cleared on unpay")
	}

	if err := svc.SetPaid("missing", true); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestOrderBulkDelete(t *testing.T) {
	orders := newMockOrderRepo(&models.Order{ID: "a"}, &models.Order{ID: "b"})
	svc := NewOrderService(orders, newMockPackRepo(), &mockActivityRepo{})

	affected, err := svc.BulkDelete([]string{"a", "b", "ghost"})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d", affected)
	}

	if _, err := svc.BulkDelete(nil); err == nil {
		t.Fatal("empty ids should fail validation")
	}
}

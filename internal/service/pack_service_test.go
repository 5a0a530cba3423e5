package service

import (
	"errors"
	"testing"
)

func TestPackCreateValidation(t *testing.T) {
	svc := NewPackService(newMockPackRepo())

	_, err := svc.Create(PackInput{WeightKG: "-1"})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Errorf("fields = %v", ve.Fields)
	}

	pack, err := svc.Create(PackInput{Code: "S", Label: "Small box", WeightKG: "0.5"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !pack.Active {
		t.Error("packs default to active")
	}
	if !pack.Weight.IsPositive() {
		t.Error("weight not parsed")
	}
}

func TestPackCreateDuplicateCode(t *testing.T) {
	svc := NewPackService(newMockPackRepo(testPack()))
	if _, err := svc.Create(PackInput{Code: "S", Label: "Another", WeightKG: "1"}); err == nil {
		t.Fatal("duplicate code should fail")
	}
}

func TestPackGetNotFound(t *testing.T) {
	svc := NewPackService(newMockPackRepo())
	if _, err := svc.Get(42); !errors.Is(err, ErrPackNotFound) {
		t.Fatalf("want ErrPackNotFound, got %v", err)
	}
	if err := svc.Delete(42); !errors.Is(err, ErrPackNotFound) {
		t.Fatalf("want ErrPackNotFound, got %v", err)
	}
}

func TestPackUpdateRejectsBadWeight(t *testing.T) {
	svc := NewPackService(newMockPackRepo(testPack()))
	if _, err := svc.Update(2, PackInput{WeightKG: "zero"}); err == nil {
		t.Fatal("invalid weight should fail")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/orderdesk-next/internal/crm/hubspot"
	"github.com/orderdesk-next/internal/models"
)

// fakeCRM 可编程 CRM
type fakeCRM struct {
	contact    *hubspot.Contact
	contactErr error
	owner      *hubspot.Owner
	ownerErr   error
}

func (f *fakeCRM) SearchContactByEmail(ctx context.Context, email string) (*hubspot.Contact, error) {
	return f.contact, f.contactErr
}

func (f *fakeCRM) GetOwnerByID(ctx context.Context, ownerID string) (*hubspot.Owner, error) {
	return f.owner, f.ownerErr
}

func TestCustomerGetWithCRM(t *testing.T) {
	customers := newMockCustomerRepo(&models.Customer{ID: 1, Email: "jane@example.com"})
	crm := &fakeCRM{
		contact: &hubspot.Contact{ID: "c1", OwnerID: "o1"},
		owner:   &hubspot.Owner{ID: "o1", FirstName: "Sam", LastName: "Lee", Email: "sam@corp.com"},
	}
	svc := NewCustomerService(customers, crm)

	detail, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.CRM == nil || detail.CRM.ContactID != "c1" {
		t.Fatalf("crm = %+v", detail.CRM)
	}
	if detail.CRM.OwnerName != "Sam Lee" || detail.CRM.OwnerEmail != "sam@corp.com" {
		t.Errorf("owner = %+v", detail.CRM)
	}
}

func TestCustomerGetCRMSoftFails(t *testing.T) {
	customers := newMockCustomerRepo(&models.Customer{ID: 1, Email: "jane@example.com"})
	crm := &fakeCRM{contactErr: fmt.Errorf("%w: contact", hubspot.ErrNotFound)}
	svc := NewCustomerService(customers, crm)

	detail, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get must not fail when CRM has no match: %v", err)
	}
	if detail.CRM != nil {
		t.Errorf("crm should be nil, got %+v", detail.CRM)
	}

	crm.contactErr = errors.New("hubspot 500")
	detail, err = svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get must not fail when CRM errors: %v", err)
	}
	if detail.CRM != nil {
		t.Errorf("crm should be nil on error, got %+v", detail.CRM)
	}
}

func TestCustomerGetWithoutCRM(t *testing.T) {
	customers := newMockCustomerRepo(&models.Customer{ID: 1, Email: "jane@example.com"})
	svc := NewCustomerService(customers, nil)

	detail, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.CRM != nil {
		t.Error("crm must be nil when disabled")
	}
}

func TestCustomerGetNotFound(t *testing.T) {
	svc := NewCustomerService(newMockCustomerRepo(), nil)
	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerCreateDuplicateEmail(t *testing.T) {
	customers := newMockCustomerRepo(&models.Customer{ID: 1, Email: "jane@example.com"})
	svc := NewCustomerService(customers, nil)

	if _, err := svc.Create(CustomerInput{Email: "jane@example.com"}); err == nil {
		t.Fatal("duplicate email should fail")
	}
	if _, err := svc.Create(CustomerInput{Name: "No Email"}); err == nil {
		t.Fatal("missing email should fail")
	}
	customer, err := svc.Create(CustomerInput{Email: "new@example.com", Name: "New"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if customer.ID == 0 {
		t.Error("id not assigned")
	}
}

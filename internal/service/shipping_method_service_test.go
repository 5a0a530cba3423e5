package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/models"
)

// fakeClock 手动拨表
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// mockSnapshotRepo 内存快照仓库
type mockSnapshotRepo struct {
	rows    []models.ShippingMethod
	listErr error
}

func (m *mockSnapshotRepo) ReplaceAll(methods []models.ShippingMethod) error {
	m.rows = methods
	return nil
}

func (m *mockSnapshotRepo) List() ([]models.ShippingMethod, error) {
	return m.rows, m.listErr
}

func TestShippingMethodListCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	carrier := &fakeCarrier{methods: []sendcloud.ShippingMethodInfo{{ID: 8, Name: "A"}}}
	svc := NewShippingMethodService(carrier, &mockSnapshotRepo{}, 5*time.Minute, clock.now)

	svc.List(context.Background())
	svc.List(context.Background())
	if carrier.listCalls != 1 {
		t.Errorf("carrier called %d times within TTL, want 1", carrier.listCalls)
	}

	clock.advance(6 * time.Minute)
	svc.List(context.Background())
	if carrier.listCalls != 2 {
		t.Errorf("carrier called %d times after TTL, want 2", carrier.listCalls)
	}
}

func TestShippingMethodListFallsBackToSnapshot(t *testing.T) {
	snapshot := &mockSnapshotRepo{rows: []models.ShippingMethod{
		{ExternalID: 8, Name: "From snapshot", Carrier: "postnl"},
	}}
	carrier := &fakeCarrier{methodsErr: errors.New("carrier down")}
	svc := NewShippingMethodService(carrier, snapshot, time.Minute, nil)

	methods := svc.List(context.Background())
	if len(methods) != 1 || methods[0].Name != "From snapshot" {
		t.Errorf("methods = %+v", methods)
	}
}

func TestShippingMethodListStaticFallback(t *testing.T) {
	carrier := &fakeCarrier{methodsErr: errors.New("carrier down")}
	svc := NewShippingMethodService(carrier, &mockSnapshotRepo{}, time.Minute, nil)

	methods := svc.List(context.Background())
	if len(methods) == 0 {
		t.Fatal("static fallback must not be empty")
	}
}

func TestShippingMethodFetchRefreshesSnapshot(t *testing.T) {
	snapshot := &mockSnapshotRepo{}
	carrier := &fakeCarrier{methods: []sendcloud.ShippingMethodInfo{
		{ID: 8, Name: "A", MinWeightKG: "0.001", MaxWeightKG: "2.000", Countries: []string{"FR"}},
	}}
	svc := NewShippingMethodService(carrier, snapshot, time.Minute, nil)

	svc.List(context.Background())
	if len(snapshot.rows) != 1 || snapshot.rows[0].ExternalID != 8 {
		t.Errorf("snapshot rows = %+v", snapshot.rows)
	}
}

func TestMatchesCountry(t *testing.T) {
	method := sendcloud.ShippingMethodInfo{Countries: []string{"FR", "BE"}}
	if !MatchesCountry(method, "fr") {
		t.Error("case-insensitive match expected")
	}
	if MatchesCountry(method, "DE") {
		t.Error("DE should not match")
	}
	if !MatchesCountry(sendcloud.ShippingMethodInfo{}, "DE") {
		t.Error("empty country list means worldwide")
	}
}

func TestListForCountry(t *testing.T) {
	carrier := &fakeCarrier{methods: []sendcloud.ShippingMethodInfo{
		{ID: 1, Countries: []string{"FR"}},
		{ID: 2, Countries: []string{"DE"}},
		{ID: 3}, // 全球
	}}
	svc := NewShippingMethodService(carrier, &mockSnapshotRepo{}, time.Minute, nil)

	methods := svc.ListForCountry(context.Background(), "FR")
	if len(methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(methods))
	}
}

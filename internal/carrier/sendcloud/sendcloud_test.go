package sendcloud

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig(baseURL string) *Config {
	return &Config{
		APIBaseURL: baseURL,
		PublicKey:  "pk_test",
		SecretKey:  "sk_test",
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); err == nil {
		t.Fatal("nil config should fail")
	}
	if err := ValidateConfig(&Config{APIBaseURL: "https://example.com", PublicKey: "pk"}); err == nil {
		t.Fatal("missing secret_key should fail")
	}
	if err := ValidateConfig(testConfig("https://example.com")); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestCreateParcel(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/parcels" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"parcel":{"id":12345,"tracking_number":"SC123","tracking_url":"https://track/SC123","status":{"id":1000,"message":"Ready to send"},"label":{"label_printer":"https://label/12345"}}}`))
	}))
	defer server.Close()

	result, err := CreateParcel(context.Background(), testConfig(server.URL), ParcelInput{
		OrderID:          "ord-1",
		Name:             "Jane Doe",
		Email:            "jane@example.com",
		AddressLine1:     "1 Main St",
		City:             "Paris",
		PostalCode:       "75001",
		Country:          "FR",
		WeightKG:         "1.250",
		ShippingMethodID: 8,
	})
	if err != nil {
		t.Fatalf("CreateParcel: %v", err)
	}
	if result.ParcelID != "12345" || result.TrackingNumber != "SC123" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.LabelURL != "https://label/12345" {
		t.Errorf("label url = %q", result.LabelURL)
	}
	if result.Status != "Ready to send" {
		t.Errorf("status = %q", result.Status)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("pk_test:sk_test"))
	if gotAuth != wantAuth {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestCreateParcelUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"shipping method not allowed"}}`))
	}))
	defer server.Close()

	_, err := CreateParcel(context.Background(), testConfig(server.URL), ParcelInput{
		Name:             "Jane Doe",
		Country:          "FR",
		ShippingMethodID: 8,
	})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("want ErrResponseInvalid, got %v", err)
	}
}

func TestGetParcelByTracking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tracking_number") != "SC123" {
			t.Errorf("tracking_number query = %q", r.URL.Query().Get("tracking_number"))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"parcels":[{"id":12345,"tracking_number":"SC123","status":{"id":11,"message":"Delivered"}}]}`))
	}))
	defer server.Close()

	result, err := GetParcelByTracking(context.Background(), testConfig(server.URL), "SC123")
	if err != nil {
		t.Fatalf("GetParcelByTracking: %v", err)
	}
	if result.Status != "Delivered" {
		t.Errorf("status = %q", result.Status)
	}
}

func TestGetParcelByTrackingNotFound(t *testing.T) {
	for _, response := range []struct {
		code int
		body string
	}{
		{http.StatusNotFound, `{"error":{"code":404,"message":"not found"}}`},
		{http.StatusOK, `{"parcels":[]}`},
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(response.code)
			_, _ = w.Write([]byte(response.body))
		}))
		_, err := GetParcelByTracking(context.Background(), testConfig(server.URL), "MISSING")
		server.Close()
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("status %d: want ErrNotFound, got %v", response.code, err)
		}
	}
}

func TestListShippingMethods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"shipping_methods":[{"id":8,"name":"Unstamped letter","carrier":"postnl","min_weight":"0.001","max_weight":"2.000","countries":[{"iso_2":"fr"},{"iso_2":"BE"}]},{"id":0,"name":"bogus"}]}`))
	}))
	defer server.Close()

	methods, err := ListShippingMethods(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("ListShippingMethods: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(methods))
	}
	m := methods[0]
	if m.ID != 8 || m.Name != "Unstamped letter" || m.Carrier != "postnl" {
		t.Errorf("unexpected method: %+v", m)
	}
	if len(m.Countries) != 2 || m.Countries[0] != "FR" || m.Countries[1] != "BE" {
		t.Errorf("countries = %v", m.Countries)
	}
}

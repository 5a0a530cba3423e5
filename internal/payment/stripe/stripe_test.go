package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func signBody(secret string, timestamp int64, body []byte) string {
	payload := fmt.Sprintf("%d.%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func signedHeader(secret string, timestamp int64, body []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signBody(secret, timestamp, body))
}

func TestVerifyAndParseEvent(t *testing.T) {
	cfg := &Config{WebhookSecret: "whsec_test", WebhookToleranceSeconds: 300}
	body := []byte(`{"id":"evt_1","type":"customer.created","data":{"object":{"id":"cus_1","email":"a@b.com","name":"A"}}}`)
	now := time.Now()

	event, err := VerifyAndParseEvent(cfg, signedHeader("whsec_test", now.Unix(), body), body, now)
	if err != nil {
		t.Fatalf("VerifyAndParseEvent: %v", err)
	}
	if event.ID != "evt_1" || event.Type != "customer.created" {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Object["id"] != "cus_1" {
		t.Errorf("object id = %v", event.Object["id"])
	}
}

func TestVerifyAndParseEventBadSignature(t *testing.T) {
	cfg := &Config{WebhookSecret: "whsec_test"}
	body := []byte(`{"id":"evt_1","type":"customer.created","data":{"object":{}}}`)
	now := time.Now()

	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), strings.Repeat("0", 64))
	if _, err := VerifyAndParseEvent(cfg, header, body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid, got %v", err)
	}
	if _, err := VerifyAndParseEvent(cfg, "", body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("missing header: want ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyAndParseEventStaleTimestamp(t *testing.T) {
	cfg := &Config{WebhookSecret: "whsec_test", WebhookToleranceSeconds: 300}
	body := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	now := time.Now()
	stale := now.Add(-10 * time.Minute).Unix()

	if _, err := VerifyAndParseEvent(cfg, signedHeader("whsec_test", stale, body), body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid for stale timestamp, got %v", err)
	}
}

func TestVerifyAndParseEventSecondSignatureMatches(t *testing.T) {
	// 密钥轮换期间 Stripe 会带多个 v1 签名，任意一个匹配即通过
	cfg := &Config{WebhookSecret: "whsec_new"}
	body := []byte(`{"id":"evt_1","type":"customer.updated","data":{"object":{}}}`)
	now := time.Now()
	header := fmt.Sprintf("t=%d,v1=%s,v1=%s",
		now.Unix(),
		signBody("whsec_old", now.Unix(), body),
		signBody("whsec_new", now.Unix(), body),
	)

	if _, err := VerifyAndParseEvent(cfg, header, body, now); err != nil {
		t.Fatalf("VerifyAndParseEvent: %v", err)
	}
}

func TestCustomerFromObject(t *testing.T) {
	customer, err := CustomerFromObject(map[string]interface{}{
		"id":    "cus_1",
		"email": "a@b.com",
		"name":  "Jane",
		"address": map[string]interface{}{
			"line1":       "1 Main St",
			"city":        "Paris",
			"postal_code": "75001",
			"country":     "FR",
		},
	})
	if err != nil {
		t.Fatalf("CustomerFromObject: %v", err)
	}
	if customer.ID != "cus_1" || customer.City != "Paris" || customer.Country != "FR" {
		t.Errorf("unexpected customer: %+v", customer)
	}

	if _, err := CustomerFromObject(map[string]interface{}{"email": "a@b.com"}); err == nil {
		t.Fatal("missing customer id should fail")
	}
}

func TestCheckoutSessionFromObject(t *testing.T) {
	session, err := CheckoutSessionFromObject(map[string]interface{}{
		"id":       "cs_1",
		"customer": "cus_1",
		"invoice":  "in_1",
		"customer_details": map[string]interface{}{
			"email": "a@b.com",
			"name":  "Jane",
		},
		"shipping_details": map[string]interface{}{
			"address": map[string]interface{}{
				"line1":       "1 Main St",
				"city":        "Paris",
				"postal_code": "75001",
				"country":     "FR",
			},
		},
	})
	if err != nil {
		t.Fatalf("CheckoutSessionFromObject: %v", err)
	}
	if session.ID != "cs_1" || session.CustomerID != "cus_1" || session.InvoiceID != "in_1" {
		t.Errorf("unexpected session: %+v", session)
	}
	if session.AddressLine1 != "1 Main St" || session.Country != "FR" {
		t.Errorf("shipping address not extracted: %+v", session)
	}
}

func TestInvoiceFromObject(t *testing.T) {
	invoice, err := InvoiceFromObject(map[string]interface{}{
		"id":       "in_1",
		"customer": "cus_1",
		"status_transitions": map[string]interface{}{
			"paid_at": float64(1700000000),
		},
	})
	if err != nil {
		t.Fatalf("InvoiceFromObject: %v", err)
	}
	if invoice.ID != "in_1" || invoice.CustomerID != "cus_1" {
		t.Errorf("unexpected invoice: %+v", invoice)
	}
	if invoice.PaidAt == nil || invoice.PaidAt.Unix() != 1700000000 {
		t.Errorf("paid_at = %v", invoice.PaidAt)
	}
}

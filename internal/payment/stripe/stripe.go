package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("stripe config invalid")
	ErrResponseInvalid  = errors.New("stripe payload invalid")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
)

const defaultWebhookToleranceS = 300

// Config webhook 校验配置。
type Config struct {
	WebhookSecret           string `json:"webhook_secret"`
	WebhookToleranceSeconds int    `json:"webhook_tolerance_seconds"`
}

// Event 校验通过后的事件。
type Event struct {
	ID     string
	Type   string
	Object map[string]interface{}
	Raw    map[string]interface{}
}

// Customer customer.* 事件对象。
type Customer struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	Country      string
}

// CheckoutSession checkout.session.completed 事件对象。
type CheckoutSession struct {
	ID            string
	CustomerID    string
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	InvoiceID     string
	AddressLine1  string
	AddressLine2  string
	City          string
	PostalCode    string
	Country       string
}

// Invoice invoice.* 事件对象。
type Invoice struct {
	ID            string
	CustomerID    string
	CustomerEmail string
	PaidAt        *time.Time
}

// VerifyAndParseEvent 校验签名并解析事件信封。
// 签名为 HMAC-SHA256(secret, "t.body")，头格式 t=<unix>,v1=<hex>[,v1=<hex>...]。
func VerifyAndParseEvent(cfg *Config, signatureHeader string, body []byte, now time.Time) (*Event, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	if now.IsZero() {
		now = time.Now()
	}
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, fmt.Errorf("%w: Stripe-Signature is required", ErrSignatureInvalid)
	}

	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}
	tolerance := cfg.WebhookToleranceSeconds
	if tolerance <= 0 {
		tolerance = defaultWebhookToleranceS
	}
	if delta := math.Abs(float64(now.Unix() - timestamp)); delta > float64(tolerance) {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
	}

	expected := computeSignature(cfg.WebhookSecret, timestamp, body)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(strings.ToLower(sig)), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}

	eventRaw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	eventID := readString(eventRaw, "id")
	eventType := readString(eventRaw, "type")
	if eventID == "" || eventType == "" {
		return nil, fmt.Errorf("%w: missing event id or type", ErrResponseInvalid)
	}
	dataRaw := readMap(eventRaw, "data")
	if dataRaw == nil {
		return nil, fmt.Errorf("%w: missing data object", ErrResponseInvalid)
	}
	objectRaw := readMap(dataRaw, "object")
	if objectRaw == nil {
		return nil, fmt.Errorf("%w: missing event object", ErrResponseInvalid)
	}

	return &Event{
		ID:     eventID,
		Type:   eventType,
		Object: objectRaw,
		Raw:    eventRaw,
	}, nil
}

// CustomerFromObject 从事件对象提取客户字段。
func CustomerFromObject(objectRaw map[string]interface{}) (*Customer, error) {
	if objectRaw == nil {
		return nil, fmt.Errorf("%w: object is nil", ErrResponseInvalid)
	}
	customer := &Customer{
		ID:    readString(objectRaw, "id"),
		Email: readString(objectRaw, "email"),
		Name:  readString(objectRaw, "name"),
		Phone: readString(objectRaw, "phone"),
	}
	if customer.ID == "" {
		return nil, fmt.Errorf("%w: missing customer id", ErrResponseInvalid)
	}
	if address := readMap(objectRaw, "address"); address != nil {
		customer.AddressLine1 = readString(address, "line1")
		customer.AddressLine2 = readString(address, "line2")
		customer.City = readString(address, "city")
		customer.PostalCode = readString(address, "postal_code")
		customer.Country = readString(address, "country")
	}
	return customer, nil
}

// CheckoutSessionFromObject 从事件对象提取 Checkout 会话字段。
func CheckoutSessionFromObject(objectRaw map[string]interface{}) (*CheckoutSession, error) {
	if objectRaw == nil {
		return nil, fmt.Errorf("%w: object is nil", ErrResponseInvalid)
	}
	session := &CheckoutSession{
		ID:         readString(objectRaw, "id"),
		CustomerID: readString(objectRaw, "customer"),
		InvoiceID:  readString(objectRaw, "invoice"),
	}
	if session.ID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrResponseInvalid)
	}
	if details := readMap(objectRaw, "customer_details"); details != nil {
		session.CustomerEmail = readString(details, "email")
		session.CustomerName = readString(details, "name")
		session.CustomerPhone = readString(details, "phone")
		if address := readMap(details, "address"); address != nil {
			session.AddressLine1 = readString(address, "line1")
			session.AddressLine2 = readString(address, "line2")
			session.City = readString(address, "city")
			session.PostalCode = readString(address, "postal_code")
			session.Country = readString(address, "country")
		}
	}
	if shipping := readMap(objectRaw, "shipping_details"); shipping != nil {
		if session.CustomerName == "" {
			session.CustomerName = readString(shipping, "name")
		}
		if address := readMap(shipping, "address"); address != nil {
			session.AddressLine1 = readString(address, "line1")
			session.AddressLine2 = readString(address, "line2")
			session.City = readString(address, "city")
			session.PostalCode = readString(address, "postal_code")
			session.Country = readString(address, "country")
		}
	}
	return session, nil
}

// InvoiceFromObject 从事件对象提取发票字段。
func InvoiceFromObject(objectRaw map[string]interface{}) (*Invoice, error) {
	if objectRaw == nil {
		return nil, fmt.Errorf("%w: object is nil", ErrResponseInvalid)
	}
	invoice := &Invoice{
		ID:            readString(objectRaw, "id"),
		CustomerID:    readString(objectRaw, "customer"),
		CustomerEmail: readString(objectRaw, "customer_email"),
	}
	if invoice.ID == "" {
		return nil, fmt.Errorf("%w: missing invoice id", ErrResponseInvalid)
	}
	if statusTransitions := readMap(objectRaw, "status_transitions"); statusTransitions != nil {
		if paidAtUnix := readInt64(statusTransitions, "paid_at"); paidAtUnix > 0 {
			paidAt := time.Unix(paidAtUnix, 0)
			invoice.PaidAt = &paidAt
		}
	}
	return invoice, nil
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	payload := strconv.FormatInt(timestamp, 10) + "." + string(body)
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}

func parseSignatureHeader(signatureHeader string) (int64, []string, error) {
	timestamp := int64(0)
	signatures := make([]string, 0)
	parts := strings.Split(signatureHeader, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil || parsed <= 0 {
				return 0, nil, fmt.Errorf("%w: invalid timestamp", ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			if value != "" {
				signatures = append(signatures, strings.ToLower(value))
			}
		}
	}
	if timestamp <= 0 {
		return 0, nil, fmt.Errorf("%w: timestamp is missing", ErrSignatureInvalid)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: v1 signature is missing", ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode payload failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strings.TrimSpace(strconv.FormatInt(int64(typed), 10))
	case int64:
		return strings.TrimSpace(strconv.FormatInt(typed, 10))
	case int:
		return strings.TrimSpace(strconv.Itoa(typed))
	default:
		return ""
	}
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil || strings.TrimSpace(key) == "" {
		return 0
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
		floatVal, err := typed.Float64()
		if err != nil {
			return 0
		}
		return int64(floatVal)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func readMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	mapped, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return mapped
}

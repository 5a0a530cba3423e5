package sendcloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("sendcloud config invalid")
	ErrRequestFailed   = errors.New("sendcloud request failed")
	ErrResponseInvalid = errors.New("sendcloud response invalid")
	ErrNotFound        = errors.New("sendcloud resource not found")
)

const (
	defaultAPIBaseURL = "https://panel.sendcloud.sc/api/v2"
	defaultTimeout    = 12 * time.Second
)

// Config 承运商 API 配置。
type Config struct {
	APIBaseURL string `json:"api_base_url"`
	PublicKey  string `json:"public_key"`
	SecretKey  string `json:"secret_key"`
	TimeoutMS  int    `json:"timeout_ms"`
}

// CustomsItem 报关物品行。
type CustomsItem struct {
	Description   string `json:"description"`
	Quantity      int    `json:"quantity"`
	Value         string `json:"value"`
	WeightKG      string `json:"weight"`
	HSCode        string `json:"hs_code"`
	OriginCountry string `json:"origin_country"`
}

// ParcelInput 创建包裹输入。主地址字段始终是收件方；
// 退货时收件方为退回目的地，From* 字段承载客户侧发件地址。
type ParcelInput struct {
	OrderID          string
	Name             string
	Email            string
	Phone            string
	AddressLine1     string
	AddressLine2     string
	City             string
	PostalCode       string
	Country          string // alpha-2
	WeightKG         string
	ShippingMethodID int64
	IsReturn         bool
	CustomsItems     []CustomsItem

	// 发件方（退货面单必填）
	FromName         string
	FromAddressLine1 string
	FromCity         string
	FromPostalCode   string
	FromCountry      string // alpha-2
}

// ParcelResult 创建包裹返回。
type ParcelResult struct {
	ParcelID       string
	TrackingNumber string
	TrackingURL    string
	LabelURL       string
	Status         string
	Raw            map[string]interface{}
}

// TrackingResult 包裹状态查询返回。
type TrackingResult struct {
	ParcelID       string
	TrackingNumber string
	Status         string
	Raw            map[string]interface{}
}

// ShippingMethodInfo 运输方式条目。
type ShippingMethodInfo struct {
	ID          int64
	Name        string
	Carrier     string
	MinWeightKG string
	MaxWeightKG string
	Countries   []string // alpha-2
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.PublicKey) == "" {
		return fmt.Errorf("%w: public_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	base := strings.TrimSpace(cfg.APIBaseURL)
	if base == "" {
		return fmt.Errorf("%w: api_base_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// CreateParcel 创建包裹并请求面单。
func CreateParcel(ctx context.Context, cfg *Config, input ParcelInput) (*ParcelResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(input.Country) == "" {
		return nil, fmt.Errorf("%w: country is required", ErrConfigInvalid)
	}
	if input.ShippingMethodID <= 0 {
		return nil, fmt.Errorf("%w: shipping method is required", ErrConfigInvalid)
	}

	parcel := map[string]interface{}{
		"name":             strings.TrimSpace(input.Name),
		"email":            strings.TrimSpace(input.Email),
		"telephone":        strings.TrimSpace(input.Phone),
		"address":          strings.TrimSpace(input.AddressLine1),
		"address_2":        strings.TrimSpace(input.AddressLine2),
		"city":             strings.TrimSpace(input.City),
		"postal_code":      strings.TrimSpace(input.PostalCode),
		"country":          strings.ToUpper(strings.TrimSpace(input.Country)),
		"weight":           strings.TrimSpace(input.WeightKG),
		"order_number":     strings.TrimSpace(input.OrderID),
		"request_label":    true,
		"is_return":        input.IsReturn,
		"shipment": map[string]interface{}{
			"id": input.ShippingMethodID,
		},
	}
	if strings.TrimSpace(input.FromName) != "" {
		parcel["from_name"] = strings.TrimSpace(input.FromName)
		parcel["from_address_1"] = strings.TrimSpace(input.FromAddressLine1)
		parcel["from_city"] = strings.TrimSpace(input.FromCity)
		parcel["from_postal_code"] = strings.TrimSpace(input.FromPostalCode)
		parcel["from_country"] = strings.ToUpper(strings.TrimSpace(input.FromCountry))
	}
	if len(input.CustomsItems) > 0 {
		items := make([]map[string]interface{}, 0, len(input.CustomsItems))
		for _, item := range input.CustomsItems {
			items = append(items, map[string]interface{}{
				"description":    strings.TrimSpace(item.Description),
				"quantity":       item.Quantity,
				"value":          strings.TrimSpace(item.Value),
				"weight":         strings.TrimSpace(item.WeightKG),
				"hs_code":        strings.TrimSpace(item.HSCode),
				"origin_country": strings.ToUpper(strings.TrimSpace(item.OriginCountry)),
			})
		}
		parcel["parcel_items"] = items
		parcel["customs_shipment_type"] = 2 // commercial goods
	}

	payload := map[string]interface{}{"parcel": parcel}
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/parcels", payload)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create parcel status %d: %s", ErrResponseInvalid, statusCode, readErrorMessage(respBody))
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	parcelRaw := readMap(raw, "parcel")
	if parcelRaw == nil {
		return nil, fmt.Errorf("%w: missing parcel object", ErrResponseInvalid)
	}
	result := &ParcelResult{Raw: raw}
	result.ParcelID = readString(parcelRaw, "id")
	result.TrackingNumber = readString(parcelRaw, "tracking_number")
	result.TrackingURL = readString(parcelRaw, "tracking_url")
	result.LabelURL = readLabelURL(parcelRaw)
	result.Status = readStatusMessage(parcelRaw)
	if result.ParcelID == "" {
		return nil, fmt.Errorf("%w: missing parcel id", ErrResponseInvalid)
	}
	return result, nil
}

// GetParcelByTracking 按运单号查询包裹状态。未找到返回 ErrNotFound。
func GetParcelByTracking(ctx context.Context, cfg *Config, trackingNumber string) (*TrackingResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, fmt.Errorf("%w: tracking_number is required", ErrConfigInvalid)
	}

	path := "/parcels?tracking_number=" + url.QueryEscape(trackingNumber)
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if statusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: tracking %s", ErrNotFound, trackingNumber)
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: query parcel status %d: %s", ErrResponseInvalid, statusCode, readErrorMessage(respBody))
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	parcels := readList(raw, "parcels")
	if len(parcels) == 0 {
		return nil, fmt.Errorf("%w: tracking %s", ErrNotFound, trackingNumber)
	}
	parcelRaw, ok := parcels[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: malformed parcel entry", ErrResponseInvalid)
	}
	result := &TrackingResult{Raw: raw}
	result.ParcelID = readString(parcelRaw, "id")
	result.TrackingNumber = readString(parcelRaw, "tracking_number")
	result.Status = readStatusMessage(parcelRaw)
	if result.Status == "" {
		return nil, fmt.Errorf("%w: missing parcel status", ErrResponseInvalid)
	}
	return result, nil
}

// CreateReturn 创建退货包裹（寄回给发货方）。
func CreateReturn(ctx context.Context, cfg *Config, input ParcelInput) (*ParcelResult, error) {
	input.IsReturn = true
	return CreateParcel(ctx, cfg, input)
}

// ListShippingMethods 拉取可用运输方式目录。
func ListShippingMethods(ctx context.Context, cfg *Config) ([]ShippingMethodInfo, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodGet, "/shipping_methods", nil)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: list shipping methods status %d: %s", ErrResponseInvalid, statusCode, readErrorMessage(respBody))
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	entries := readList(raw, "shipping_methods")
	methods := make([]ShippingMethodInfo, 0, len(entries))
	for _, entry := range entries {
		methodRaw, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		info := ShippingMethodInfo{
			ID:          readInt64(methodRaw, "id"),
			Name:        readString(methodRaw, "name"),
			Carrier:     readString(methodRaw, "carrier"),
			MinWeightKG: readString(methodRaw, "min_weight"),
			MaxWeightKG: readString(methodRaw, "max_weight"),
		}
		for _, countryEntry := range readList(methodRaw, "countries") {
			countryRaw, ok := countryEntry.(map[string]interface{})
			if !ok {
				continue
			}
			if iso := readString(countryRaw, "iso_2"); iso != "" {
				info.Countries = append(info.Countries, strings.ToUpper(iso))
			}
		}
		if info.ID > 0 {
			methods = append(methods, info)
		}
	}
	return methods, nil
}

func doJSONRequest(ctx context.Context, cfg *Config, method, path string, payload interface{}) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/") + path
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
		}
		reqBody = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Basic "+basicAuth(cfg.PublicKey, cfg.SecretKey))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := (&http.Client{Timeout: timeout(cfg)}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func timeout(cfg *Config) time.Duration {
	if cfg != nil && cfg.TimeoutMS > 0 {
		return time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return defaultTimeout
}

func basicAuth(publicKey, secretKey string) string {
	credential := strings.TrimSpace(publicKey) + ":" + strings.TrimSpace(secretKey)
	return base64.StdEncoding.EncodeToString([]byte(credential))
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

// readLabelURL 提取面单下载地址，优先 label_printer。
func readLabelURL(parcelRaw map[string]interface{}) string {
	labelRaw := readMap(parcelRaw, "label")
	if labelRaw == nil {
		return ""
	}
	if direct := readString(labelRaw, "label_printer"); direct != "" {
		return direct
	}
	for _, entry := range readList(labelRaw, "normal_printer") {
		if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func readStatusMessage(parcelRaw map[string]interface{}) string {
	statusRaw := readMap(parcelRaw, "status")
	if statusRaw == nil {
		return ""
	}
	return readString(statusRaw, "message")
}

func readErrorMessage(body []byte) string {
	raw, err := decodeRawMap(body)
	if err != nil {
		return strings.TrimSpace(string(body))
	}
	errorRaw := readMap(raw, "error")
	if errorRaw == nil {
		return strings.TrimSpace(string(body))
	}
	if message := readString(errorRaw, "message"); message != "" {
		return message
	}
	return strings.TrimSpace(string(body))
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

func readList(raw map[string]interface{}, key string) []interface{} {
	if raw == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	list, ok := value.([]interface{})
	if !ok {
		return nil
	}
	return list
}

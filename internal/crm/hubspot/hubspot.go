package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("hubspot config invalid")
	ErrRequestFailed   = errors.New("hubspot request failed")
	ErrResponseInvalid = errors.New("hubspot response invalid")
	ErrNotFound        = errors.New("hubspot resource not found")
)

const (
	defaultAPIBaseURL = "https://api.hubapi.com"
	defaultTimeout    = 8 * time.Second
)

// Config CRM API 配置。
type Config struct {
	APIBaseURL  string `json:"api_base_url"`
	AccessToken string `json:"access_token"`
	TimeoutMS   int    `json:"timeout_ms"`
}

// Contact CRM 联系人。
type Contact struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	OwnerID   string
}

// Owner CRM 负责人。
type Owner struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return fmt.Errorf("%w: access_token is required", ErrConfigInvalid)
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

// SearchContactByEmail 按邮箱精确检索联系人。未命中返回 ErrNotFound。
func SearchContactByEmail(ctx context.Context, cfg *Config, email string) (*Contact, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrConfigInvalid)
	}

	payload := map[string]interface{}{
		"filterGroups": []map[string]interface{}{
			{
				"filters": []map[string]interface{}{
					{"propertyName": "email", "operator": "EQ", "value": email},
				},
			},
		},
		"properties": []string{"email", "firstname", "lastname", "phone", "hubspot_owner_id"},
		"limit":      1,
	}
	respBody, statusCode, err := doRequest(ctx, cfg, http.MethodPost, "/crm/v3/objects/contacts/search", payload)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: search contacts status %d", ErrResponseInvalid, statusCode)
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	results, _ := raw["results"].([]interface{})
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: contact %s", ErrNotFound, email)
	}
	contactRaw, ok := results[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: malformed contact entry", ErrResponseInvalid)
	}
	contact := &Contact{ID: readString(contactRaw, "id")}
	if props, ok := contactRaw["properties"].(map[string]interface{}); ok {
		contact.Email = readString(props, "email")
		contact.FirstName = readString(props, "firstname")
		contact.LastName = readString(props, "lastname")
		contact.Phone = readString(props, "phone")
		contact.OwnerID = readString(props, "hubspot_owner_id")
	}
	if contact.ID == "" {
		return nil, fmt.Errorf("%w: missing contact id", ErrResponseInvalid)
	}
	return contact, nil
}

// GetOwnerByID 按 ID 获取负责人。未找到返回 ErrNotFound。
func GetOwnerByID(ctx context.Context, cfg *Config, ownerID string) (*Owner, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrConfigInvalid)
	}

	path := "/crm/v3/owners/" + url.PathEscape(ownerID)
	respBody, statusCode, err := doRequest(ctx, cfg, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if statusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: owner %s", ErrNotFound, ownerID)
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: get owner status %d", ErrResponseInvalid, statusCode)
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	owner := &Owner{
		ID:        readString(raw, "id"),
		Email:     readString(raw, "email"),
		FirstName: readString(raw, "firstName"),
		LastName:  readString(raw, "lastName"),
	}
	if owner.ID == "" {
		return nil, fmt.Errorf("%w: missing owner id", ErrResponseInvalid)
	}
	return owner, nil
}

func doRequest(ctx context.Context, cfg *Config, method, path string, payload interface{}) ([]byte, int, error) {
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
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(cfg.AccessToken))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: defaultTimeout}
	if cfg.TimeoutMS > 0 {
		client.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	resp, err := client.Do(req)
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

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	if typed, ok := value.(string); ok {
		return strings.TrimSpace(typed)
	}
	return ""
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON 通用 JSON 字段类型（map 结构）
type JSON map[string]interface{}

// Value 用于数据库写入
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 用于数据库读取
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type: %T", value)
	}
	if len(raw) == 0 {
		*j = JSON{}
		return nil
	}
	return json.Unmarshal(raw, j)
}

// StringArray 字符串数组字段（JSON 存储）
type StringArray []string

// Value 用于数据库写入
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 用于数据库读取
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported string array column type")
	}
	if len(raw) == 0 {
		*a = StringArray{}
		return nil
	}
	return json.Unmarshal(raw, a)
}

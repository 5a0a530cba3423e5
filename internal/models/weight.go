package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Weight 重量类型（千克，保留 3 位小数）
type Weight struct {
	decimal.Decimal
}

// NewWeightFromDecimal 从 decimal 创建重量
func NewWeightFromDecimal(value decimal.Decimal) Weight {
	return Weight{Decimal: value.Round(3)}
}

// NewWeightFromString 从字符串解析重量
func NewWeightFromString(value string) (Weight, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Weight{}, err
	}
	return Weight{Decimal: d.Round(3)}, nil
}

// IsPositive 是否为正数
func (w Weight) IsPositive() bool {
	return w.Decimal.IsPositive()
}

// MarshalJSON 统一输出 3 位小数的字符串
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Decimal.Round(3).StringFixed(3))
}

// UnmarshalJSON 解析重量（字符串或数字）
func (w *Weight) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		w.Decimal = d.Round(3)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	w.Decimal = decimal.NewFromFloat(f).Round(3)
	return nil
}

// Value 用于数据库写入
func (w Weight) Value() (driver.Value, error) {
	return w.Decimal.Round(3).Value()
}

// Scan 用于数据库读取
func (w *Weight) Scan(value interface{}) error {
	if err := w.Decimal.Scan(value); err != nil {
		return err
	}
	w.Decimal = w.Decimal.Round(3)
	return nil
}

// String 返回 3 位小数格式
func (w Weight) String() string {
	return w.Decimal.Round(3).StringFixed(3)
}

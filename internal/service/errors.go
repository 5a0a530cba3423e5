package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrPackNotFound           = errors.New("pack not found")
	ErrFeatureRequestNotFound = errors.New("feature request not found")
	ErrTrackingNotApplicable  = errors.New("order has no tracking number")
	ErrLabelAlreadyExists     = errors.New("order already has a label")
	ErrLabelMissing           = errors.New("order has no label yet")
	ErrUpstreamFailed         = errors.New("upstream call failed")
	ErrLoginFailed            = errors.New("login failed")
)

// ValidationError 聚合校验错误：一次返回所有缺失/非法字段。
type ValidationError struct {
	Fields []string
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError 创建聚合校验错误
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidationError 判断并提取聚合校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

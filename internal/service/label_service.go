package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/countries"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"

	"github.com/shopspring/decimal"
)

// LabelService 面单编排：校验、调用承运商、落库、记录动态。
type LabelService struct {
	orders     repository.OrderRepository
	activities repository.OrderActivityRepository
	carrier    Carrier
}

// NewLabelService 创建面单服务
func NewLabelService(orders repository.OrderRepository, activities repository.OrderActivityRepository, carrier Carrier) *LabelService {
	return &LabelService{orders: orders, activities: activities, carrier: carrier}
}

// LabelResult 面单创建结果。Warning 非空表示面单已生成但本地状态未完全落库。
type LabelResult struct {
	TrackingNumber string `json:"tracking_number"`
	TrackingLink   string `json:"tracking_link"`
	LabelURL       string `json:"label_url"`
	Warning        string `json:"warning,omitempty"`
}

// ReturnCustomsItemInput 退货报关物品行输入。
type ReturnCustomsItemInput struct {
	Description   string `json:"description"`
	Quantity      int    `json:"quantity"`
	Value         string `json:"value"`
	WeightKG      string `json:"weight_kg"`
	HSCode        string `json:"hs_code"`
	OriginCountry string `json:"origin_country"`
}

// ReturnLabelInput 退货面单输入。
type ReturnLabelInput struct {
	Reason       string                   `json:"reason"`
	WeightKG     string                   `json:"weight_kg"`
	MethodID     int64                    `json:"shipping_method_id"`
	CustomsItems []ReturnCustomsItemInput `json:"customs_items"`

	// 退货发件方（客户侧），为空时取订单地址
	FromName         string `json:"from_name"`
	FromAddressLine1 string `json:"from_address_line1"`
	FromCity         string `json:"from_city"`
	FromPostalCode   string `json:"from_postal_code"`
	FromCountry      string `json:"from_country"`

	// 退回目的地（仓库/退货处理点），必填
	ToName         string `json:"to_name"`
	ToAddressLine1 string `json:"to_address_line1"`
	ToCity         string `json:"to_city"`
	ToPostalCode   string `json:"to_postal_code"`
	ToCountry      string `json:"to_country"`
}

// CreateLabel 为订单创建发货面单。
// 所有前置校验一次性聚合返回；校验不过不触发任何网络调用。
// 承运商创建成功后本地落库失败时仍返回成功并附带 Warning，面单已存在于承运商侧，不能让调用方误以为要重试创建。
func (s *LabelService) CreateLabel(ctx context.Context, orderID string, shippingMethodID int64, shippingMethodName string) (*LabelResult, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.HasTracking() {
		return nil, fmt.Errorf("%w: %s", ErrLabelAlreadyExists, orderID)
	}

	missing := collectMissingLabelFields(order)
	if shippingMethodID <= 0 {
		missing = append(missing, "shipping_method_id")
	}
	if len(missing) > 0 {
		return nil, NewValidationError(missing...)
	}

	destination := countries.ToAlpha2(order.Country)
	if !countries.IsAlpha2(destination) {
		logger.Warnw("label_country_not_normalized",
			"order_id", order.ID,
			"country", order.Country,
		)
	}

	parcel, err := s.carrier.CreateParcel(ctx, sendcloud.ParcelInput{
		OrderID:          order.ID,
		Name:             order.Name,
		Email:            order.Email,
		Phone:            order.Phone,
		AddressLine1:     order.AddressLine1,
		AddressLine2:     order.AddressLine2,
		City:             order.City,
		PostalCode:       order.PostalCode,
		Country:          destination,
		WeightKG:         order.PackWeight.String(),
		ShippingMethodID: shippingMethodID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	result := &LabelResult{
		TrackingNumber: parcel.TrackingNumber,
		TrackingLink:   parcel.TrackingURL,
		LabelURL:       parcel.LabelURL,
	}

	updates := map[string]interface{}{
		"shipping_id":          parcel.ParcelID,
		"shipping_method_id":   shippingMethodID,
		"shipping_method_name": shippingMethodName,
		"tracking_number":      parcel.TrackingNumber,
		"tracking_link":        parcel.TrackingURL,
		"label_url":            parcel.LabelURL,
		"delivery_status":      constants.DeliveryStatusReadyToSend,
	}
	if err := s.orders.Update(order.ID, updates); err != nil {
		logger.Errorw("label_persist_failed",
			"order_id", order.ID,
			"parcel_id", parcel.ParcelID,
			"error", err,
		)
		result.Warning = "label created at carrier but order update failed; refresh before retrying"
		return result, nil
	}

	s.appendActivity(order.ID, constants.ActivityLabelCreated,
		fmt.Sprintf("label created, tracking %s", parcel.TrackingNumber),
		models.JSON{
			"parcel_id":          parcel.ParcelID,
			"shipping_method_id": shippingMethodID,
		})

	logger.Infow("label_created",
		"order_id", order.ID,
		"parcel_id", parcel.ParcelID,
		"tracking_number", parcel.TrackingNumber,
	)
	return result, nil
}

// CreateReturnLabel 为订单创建退货面单。
func (s *LabelService) CreateReturnLabel(ctx context.Context, orderID string, input ReturnLabelInput) (*LabelResult, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	fromCountry := strings.TrimSpace(input.FromCountry)
	if fromCountry == "" {
		fromCountry = order.Country
	}
	origin := countries.ToAlpha2(fromCountry)
	returnTo := countries.ToAlpha2(strings.TrimSpace(input.ToCountry))

	missing := validateReturnInput(order, input, origin, returnTo)
	if len(missing) > 0 {
		return nil, NewValidationError(missing...)
	}

	parcelInput := sendcloud.ParcelInput{
		OrderID:          order.ID,
		Name:             strings.TrimSpace(input.ToName),
		Email:            order.Email,
		Phone:            order.Phone,
		AddressLine1:     strings.TrimSpace(input.ToAddressLine1),
		City:             strings.TrimSpace(input.ToCity),
		PostalCode:       strings.TrimSpace(input.ToPostalCode),
		Country:          returnTo,
		WeightKG:         strings.TrimSpace(input.WeightKG),
		ShippingMethodID: input.MethodID,
		FromName:         firstNonEmpty(input.FromName, order.Name),
		FromAddressLine1: firstNonEmpty(input.FromAddressLine1, order.AddressLine1),
		FromCity:         firstNonEmpty(input.FromCity, order.City),
		FromPostalCode:   firstNonEmpty(input.FromPostalCode, order.PostalCode),
		FromCountry:      origin,
	}
	for _, item := range input.CustomsItems {
		parcelInput.CustomsItems = append(parcelInput.CustomsItems, sendcloud.CustomsItem{
			Description:   item.Description,
			Quantity:      item.Quantity,
			Value:         item.Value,
			WeightKG:      item.WeightKG,
			HSCode:        item.HSCode,
			OriginCountry: item.OriginCountry,
		})
	}

	parcel, err := s.carrier.CreateReturn(ctx, parcelInput)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	result := &LabelResult{
		TrackingNumber: parcel.TrackingNumber,
		TrackingLink:   parcel.TrackingURL,
		LabelURL:       parcel.LabelURL,
	}

	now := time.Now()
	updates := map[string]interface{}{
		"sendcloud_return_id":        parcel.ParcelID,
		"sendcloud_return_tracking":  parcel.TrackingNumber,
		"sendcloud_return_label_url": parcel.LabelURL,
		"sendcloud_return_reason":    strings.TrimSpace(input.Reason),
		"return_initiated_at":        &now,
	}
	if err := s.orders.Update(order.ID, updates); err != nil {
		logger.Errorw("return_label_persist_failed",
			"order_id", order.ID,
			"parcel_id", parcel.ParcelID,
			"error", err,
		)
		result.Warning = "return label created at carrier but order update failed; refresh before retrying"
		return result, nil
	}

	s.appendActivity(order.ID, constants.ActivityReturnLabelCreated,
		fmt.Sprintf("return label created, reason %s", input.Reason),
		models.JSON{"parcel_id": parcel.ParcelID, "reason": input.Reason})

	logger.Infow("return_label_created",
		"order_id", order.ID,
		"parcel_id", parcel.ParcelID,
		"reason", input.Reason,
	)
	return result, nil
}

// UpgradeLabel 以新的运输方式重开面单，替换原跟踪信息。
func (s *LabelService) UpgradeLabel(ctx context.Context, orderID string, shippingMethodID int64, shippingMethodName string) (*LabelResult, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if !order.HasTracking() {
		return nil, fmt.Errorf("%w: %s", ErrLabelMissing, orderID)
	}

	missing := collectMissingLabelFields(order)
	if shippingMethodID <= 0 {
		missing = append(missing, "shipping_method_id")
	}
	if len(missing) > 0 {
		return nil, NewValidationError(missing...)
	}

	previousTracking := order.TrackingNumber
	parcel, err := s.carrier.CreateParcel(ctx, sendcloud.ParcelInput{
		OrderID:          order.ID,
		Name:             order.Name,
		Email:            order.Email,
		Phone:            order.Phone,
		AddressLine1:     order.AddressLine1,
		AddressLine2:     order.AddressLine2,
		City:             order.City,
		PostalCode:       order.PostalCode,
		Country:          countries.ToAlpha2(order.Country),
		WeightKG:         order.PackWeight.String(),
		ShippingMethodID: shippingMethodID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	result := &LabelResult{
		TrackingNumber: parcel.TrackingNumber,
		TrackingLink:   parcel.TrackingURL,
		LabelURL:       parcel.LabelURL,
	}

	updates := map[string]interface{}{
		"shipping_id":          parcel.ParcelID,
		"shipping_method_id":   shippingMethodID,
		"shipping_method_name": shippingMethodName,
		"tracking_number":      parcel.TrackingNumber,
		"tracking_link":        parcel.TrackingURL,
		"label_url":            parcel.LabelURL,
		"delivery_status":      constants.DeliveryStatusReadyToSend,
	}
	if err := s.orders.Update(order.ID, updates); err != nil {
		logger.Errorw("label_upgrade_persist_failed",
			"order_id", order.ID,
			"parcel_id", parcel.ParcelID,
			"error", err,
		)
		result.Warning = "upgraded label created at carrier but order update failed; refresh before retrying"
		return result, nil
	}

	s.appendActivity(order.ID, constants.ActivityLabelUpgraded,
		fmt.Sprintf("label upgraded, tracking %s replaces %s", parcel.TrackingNumber, previousTracking),
		models.JSON{
			"parcel_id":          parcel.ParcelID,
			"previous_tracking":  previousTracking,
			"shipping_method_id": shippingMethodID,
		})

	logger.Infow("label_upgraded",
		"order_id", order.ID,
		"previous_tracking", previousTracking,
		"tracking_number", parcel.TrackingNumber,
	)
	return result, nil
}

// collectMissingLabelFields 收集面单前置校验缺失的字段名。
func collectMissingLabelFields(order *models.Order) []string {
	missing := make([]string, 0)
	if strings.TrimSpace(order.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(order.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(order.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(order.AddressLine1) == "" {
		missing = append(missing, "address_line1")
	}
	if strings.TrimSpace(order.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(order.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(order.Country) == "" {
		missing = append(missing, "country")
	}
	if order.PackID == nil || !order.PackWeight.IsPositive() {
		missing = append(missing, "pack")
	}
	return missing
}

// validateReturnInput 校验退货输入，返回问题字段列表。
// origin 是客户侧发件国，returnTo 是退回目的国，均已归一化。
func validateReturnInput(order *models.Order, input ReturnLabelInput, origin, returnTo string) []string {
	problems := make([]string, 0)

	if strings.TrimSpace(firstNonEmpty(input.FromName, order.Name)) == "" {
		problems = append(problems, "from_name")
	}
	if strings.TrimSpace(firstNonEmpty(input.FromAddressLine1, order.AddressLine1)) == "" {
		problems = append(problems, "from_address_line1")
	}
	if strings.TrimSpace(firstNonEmpty(input.FromCity, order.City)) == "" {
		problems = append(problems, "from_city")
	}
	if strings.TrimSpace(firstNonEmpty(input.FromPostalCode, order.PostalCode)) == "" {
		problems = append(problems, "from_postal_code")
	}
	if strings.TrimSpace(origin) == "" {
		problems = append(problems, "from_country")
	}
	if strings.TrimSpace(input.ToName) == "" {
		problems = append(problems, "to_name")
	}
	if strings.TrimSpace(input.ToAddressLine1) == "" {
		problems = append(problems, "to_address_line1")
	}
	if strings.TrimSpace(input.ToCity) == "" {
		problems = append(problems, "to_city")
	}
	if strings.TrimSpace(input.ToPostalCode) == "" {
		problems = append(problems, "to_postal_code")
	}
	if !countries.IsAlpha2(returnTo) {
		problems = append(problems, "to_country")
	}
	if input.MethodID <= 0 {
		problems = append(problems, "shipping_method_id")
	}

	weight, err := decimal.NewFromString(strings.TrimSpace(input.WeightKG))
	if err != nil || !weight.IsPositive() {
		problems = append(problems, "weight_kg")
	}

	if !constants.IsValidReturnReason(strings.TrimSpace(input.Reason)) {
		problems = append(problems, "reason")
	}

	if countries.RequiresCustoms(origin) {
		if len(input.CustomsItems) == 0 {
			problems = append(problems, "customs_items")
		}
		for i, item := range input.CustomsItems {
			prefix := fmt.Sprintf("customs_items[%d].", i)
			if strings.TrimSpace(item.Description) == "" {
				problems = append(problems, prefix+"description")
			}
			if item.Quantity < 1 {
				problems = append(problems, prefix+"quantity")
			}
			if value, err := decimal.NewFromString(strings.TrimSpace(item.Value)); err != nil || value.IsNegative() {
				problems = append(problems, prefix+"value")
			}
			if itemWeight, err := decimal.NewFromString(strings.TrimSpace(item.WeightKG)); err != nil || !itemWeight.IsPositive() {
				problems = append(problems, prefix+"weight_kg")
			}
			if strings.TrimSpace(item.HSCode) == "" {
				problems = append(problems, prefix+"hs_code")
			}
			if !countries.IsAlpha2(strings.ToUpper(strings.TrimSpace(item.OriginCountry))) {
				problems = append(problems, prefix+"origin_country")
			}
		}
	}

	return problems
}

func (s *LabelService) appendActivity(orderID, activityType, message string, meta models.JSON) {
	activity := &models.OrderActivity{
		OrderID: orderID,
		Type:    activityType,
		Message: message,
		Meta:    meta,
	}
	if err := s.activities.Append(activity); err != nil {
		logger.Warnw("order_activity_append_failed",
			"order_id", orderID,
			"type", activityType,
			"error", err,
		)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

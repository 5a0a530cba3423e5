package service

import (
	"context"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
)

// Carrier 承运商网关端口，便于服务层测试替换。
type Carrier interface {
	CreateParcel(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error)
	CreateReturn(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error)
	GetParcelByTracking(ctx context.Context, trackingNumber string) (*sendcloud.TrackingResult, error)
	ListShippingMethods(ctx context.Context) ([]sendcloud.ShippingMethodInfo, error)
}

// SendcloudCarrier 基于 Sendcloud API 的实现
type SendcloudCarrier struct {
	cfg *sendcloud.Config
}

// NewSendcloudCarrier 创建承运商网关
func NewSendcloudCarrier(cfg *sendcloud.Config) *SendcloudCarrier {
	return &SendcloudCarrier{cfg: cfg}
}

func (c *SendcloudCarrier) CreateParcel(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error) {
	return sendcloud.CreateParcel(ctx, c.cfg, input)
}

func (c *SendcloudCarrier) CreateReturn(ctx context.Context, input sendcloud.ParcelInput) (*sendcloud.ParcelResult, error) {
	return sendcloud.CreateReturn(ctx, c.cfg, input)
}

func (c *SendcloudCarrier) GetParcelByTracking(ctx context.Context, trackingNumber string) (*sendcloud.TrackingResult, error) {
	return sendcloud.GetParcelByTracking(ctx, c.cfg, trackingNumber)
}

func (c *SendcloudCarrier) ListShippingMethods(ctx context.Context) ([]sendcloud.ShippingMethodInfo, error) {
	return sendcloud.ListShippingMethods(ctx, c.cfg)
}

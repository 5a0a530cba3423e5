package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/repository"
)

// fallbackShippingMethods 承运商目录完全不可用时的静态兜底。
var fallbackShippingMethods = []sendcloud.ShippingMethodInfo{
	{ID: 8, Name: "Unstamped letter", Carrier: "postnl"},
	{ID: 1316, Name: "Tracked letter", Carrier: "postnl"},
	{ID: 2958, Name: "Tracked parcel 0-2kg", Carrier: "postnl"},
}

// methodCache 运输方式 TTL 缓存。时钟可注入，测试里拨表即可过期。
type methodCache struct {
	mu        sync.Mutex
	methods   []sendcloud.ShippingMethodInfo
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func newMethodCache(ttl time.Duration, now func() time.Time) *methodCache {
	if now == nil {
		now = time.Now
	}
	return &methodCache{ttl: ttl, now: now}
}

func (c *methodCache) get() ([]sendcloud.ShippingMethodInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.methods == nil {
		return nil, false
	}
	if c.now().Sub(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.methods, true
}

func (c *methodCache) set(methods []sendcloud.ShippingMethodInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods = methods
	c.fetchedAt = c.now()
}

// ShippingMethodService 运输方式目录：承运商拉取 + TTL 缓存 + 本地快照兜底。
type ShippingMethodService struct {
	carrier  Carrier
	snapshot repository.ShippingMethodRepository
	cache    *methodCache
}

// NewShippingMethodService 创建运输方式服务
func NewShippingMethodService(carrier Carrier, snapshot repository.ShippingMethodRepository, ttl time.Duration, now func() time.Time) *ShippingMethodService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ShippingMethodService{
		carrier:  carrier,
		snapshot: snapshot,
		cache:    newMethodCache(ttl, now),
	}
}

// List 返回可用运输方式。
// 顺序：缓存 → 承运商（成功则刷新缓存与本地快照）→ 本地快照 → 静态兜底。
func (s *ShippingMethodService) List(ctx context.Context) []sendcloud.ShippingMethodInfo {
	if cached, ok := s.cache.get(); ok {
		return cached
	}

	methods, err := s.carrier.ListShippingMethods(ctx)
	if err == nil && len(methods) > 0 {
		s.cache.set(methods)
		s.persistSnapshot(methods)
		return methods
	}
	if err != nil {
		logger.Warnw("shipping_methods_fetch_failed", "error", err)
	}

	if snapshot := s.loadSnapshot(); len(snapshot) > 0 {
		return snapshot
	}
	return fallbackShippingMethods
}

// ListForCountry 按目的国过滤运输方式。
func (s *ShippingMethodService) ListForCountry(ctx context.Context, alpha2 string) []sendcloud.ShippingMethodInfo {
	all := s.List(ctx)
	filtered := make([]sendcloud.ShippingMethodInfo, 0, len(all))
	for _, method := range all {
		if MatchesCountry(method, alpha2) {
			filtered = append(filtered, method)
		}
	}
	return filtered
}

// MatchesCountry 运输方式是否可达目的国。未声明国家列表的方式视为全球可达。
func MatchesCountry(method sendcloud.ShippingMethodInfo, alpha2 string) bool {
	if len(method.Countries) == 0 {
		return true
	}
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))
	for _, c := range method.Countries {
		if strings.ToUpper(c) == alpha2 {
			return true
		}
	}
	return false
}

func (s *ShippingMethodService) persistSnapshot(methods []sendcloud.ShippingMethodInfo) {
	if s.snapshot == nil {
		return
	}
	rows := make([]models.ShippingMethod, 0, len(methods))
	for _, m := range methods {
		row := models.ShippingMethod{
			ExternalID: m.ID,
			Name:       m.Name,
			Carrier:    m.Carrier,
			Countries:  models.StringArray(m.Countries),
		}
		if w, err := models.NewWeightFromString(m.MinWeightKG); err == nil {
			row.MinWeightKG = w
		}
		if w, err := models.NewWeightFromString(m.MaxWeightKG); err == nil {
			row.MaxWeightKG = w
		}
		rows = append(rows, row)
	}
	if err := s.snapshot.ReplaceAll(rows); err != nil {
		logger.Warnw("shipping_methods_snapshot_failed", "error", err)
	}
}

func (s *ShippingMethodService) loadSnapshot() []sendcloud.ShippingMethodInfo {
	if s.snapshot == nil {
		return nil
	}
	rows, err := s.snapshot.List()
	if err != nil {
		logger.Warnw("shipping_methods_snapshot_read_failed", "error", err)
		return nil
	}
	methods := make([]sendcloud.ShippingMethodInfo, 0, len(rows))
	for _, row := range rows {
		methods = append(methods, sendcloud.ShippingMethodInfo{
			ID:          row.ExternalID,
			Name:        row.Name,
			Carrier:     row.Carrier,
			MinWeightKG: row.MinWeightKG.String(),
			MaxWeightKG: row.MaxWeightKG.String(),
			Countries:   row.Countries,
		})
	}
	return methods
}

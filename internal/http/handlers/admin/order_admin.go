package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/repository"
	"github.com/orderdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:           page,
		PageSize:       pageSize,
		Search:         c.Query("search"),
		Country:        c.Query("country"),
		DeliveryStatus: c.Query("delivery_status"),
		Paid:           parseBoolQuery(c, "paid"),
		OkToShip:       parseBoolQuery(c, "ok_to_ship"),
		HasTracking:    parseBoolQuery(c, "has_tracking"),
	}
	if raw := c.Query("customer_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CustomerID = uint(id)
		}
	}
	filter.CreatedFrom = parseTimeQuery(c, "created_from")
	filter.CreatedTo = parseTimeQuery(c, "created_to")

	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		respondServiceError(c, err, "order list failed")
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// AdminGetOrder 订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "order id required", nil)
		return
	}

	order, err := h.OrderService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondServiceError(c, err, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// AdminCreateOrder 手工创建订单
func (h *Handler) AdminCreateOrder(c *gin.Context) {
	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.OrderService.Create(req)
	if err != nil {
		if errors.Is(err, service.ErrPackNotFound) {
			respondError(c, response.CodeNotFound, "pack not found", nil)
			return
		}
		respondServiceError(c, err, "order create failed")
		return
	}
	response.Success(c, order)
}

// AdminUpdateOrder 字段级更新订单
func (h *Handler) AdminUpdateOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if len(updates) == 0 {
		respondError(c, response.CodeBadRequest, "no fields to update", nil)
		return
	}

	order, err := h.OrderService.UpdateFields(id, updates)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		if errors.Is(err, service.ErrPackNotFound) {
			respondError(c, response.CodeNotFound, "pack not found", nil)
			return
		}
		respondServiceError(c, err, "order update failed")
		return
	}
	response.Success(c, order)
}

// TogglePaidRequest 支付标记请求
type TogglePaidRequest struct {
	Paid bool `json:"paid"`
}

// AdminSetOrderPaid 切换支付标记
func (h *Handler) AdminSetOrderPaid(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req TogglePaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.OrderService.SetPaid(id, req.Paid); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondServiceError(c, err, "order update failed")
		return
	}
	response.Success(c, gin.H{"paid": req.Paid})
}

// ToggleOkToShipRequest 放行标记请求
type ToggleOkToShipRequest struct {
	OkToShip bool `json:"ok_to_ship"`
}

// AdminSetOrderOkToShip 切换发货放行标记
func (h *Handler) AdminSetOrderOkToShip(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req ToggleOkToShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.OrderService.SetOkToShip(id, req.OkToShip); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondServiceError(c, err, "order update failed")
		return
	}
	response.Success(c, gin.H{"ok_to_ship": req.OkToShip})
}

// BulkDeleteRequest 批量删除请求
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// AdminBulkDeleteOrders 批量删除订单
func (h *Handler) AdminBulkDeleteOrders(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	affected, err := h.OrderService.BulkDelete(req.IDs)
	if err != nil {
		respondServiceError(c, err, "order delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": affected})
}

// AdminListOrderActivities 订单动态列表
func (h *Handler) AdminListOrderActivities(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	activities, err := h.OrderService.Activities(id, limit)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondServiceError(c, err, "activity fetch failed")
		return
	}
	response.Success(c, activities)
}

func parseBoolQuery(c *gin.Context, key string) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func parseTimeQuery(c *gin.Context, key string) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}

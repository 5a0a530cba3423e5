package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateLabelRequest 创建面单请求
type CreateLabelRequest struct {
	ShippingMethodID   int64  `json:"shipping_method_id"`
	ShippingMethodName string `json:"shipping_method_name"`
}

// AdminCreateLabel 为订单创建发货面单
func (h *Handler) AdminCreateLabel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	result, err := h.LabelService.CreateLabel(c.Request.Context(), id, req.ShippingMethodID, req.ShippingMethodName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrLabelAlreadyExists):
			respondError(c, response.CodeBadRequest, "label already exists for this order", nil)
		default:
			respondServiceError(c, err, "label create failed")
		}
		return
	}
	response.Success(c, result)
}

// AdminCreateReturnLabel 为订单创建退货面单
func (h *Handler) AdminCreateReturnLabel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req service.ReturnLabelInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	result, err := h.LabelService.CreateReturnLabel(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondServiceError(c, err, "return label create failed")
		return
	}
	response.Success(c, result)
}

// AdminUpgradeLabel 以新运输方式重开面单
func (h *Handler) AdminUpgradeLabel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	result, err := h.LabelService.UpgradeLabel(c.Request.Context(), id, req.ShippingMethodID, req.ShippingMethodName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrLabelMissing):
			respondError(c, response.CodeBadRequest, "order has no label to upgrade", nil)
		default:
			respondServiceError(c, err, "label upgrade failed")
		}
		return
	}
	response.Success(c, result)
}

// AdminRefreshOrderTracking 刷新单个订单物流状态
func (h *Handler) AdminRefreshOrderTracking(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	status, err := h.TrackingService.RefreshStatus(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrTrackingNotApplicable):
			respondError(c, response.CodeBadRequest, "order has no tracking number", nil)
		default:
			respondServiceError(c, err, "tracking refresh failed")
		}
		return
	}
	response.Success(c, gin.H{"delivery_status": status})
}

// AdminRefreshTrackingBatch 批量刷新在途订单物流状态
func (h *Handler) AdminRefreshTrackingBatch(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	results, err := h.TrackingService.RefreshBatch(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err, "tracking batch refresh failed")
		return
	}
	response.Success(c, gin.H{
		"count":   len(results),
		"results": results,
	})
}

package admin

import (
	"errors"
	"strconv"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/repository"
	"github.com/orderdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListFeatureRequests 功能需求列表
func (h *Handler) AdminListFeatureRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	requests, total, err := h.FeatureRequestService.List(repository.FeatureRequestListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondServiceError(c, err, "feature request list failed")
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, requests, pagination)
}

// AdminCreateFeatureRequest 创建功能需求
func (h *Handler) AdminCreateFeatureRequest(c *gin.Context) {
	var req service.FeatureRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	request, err := h.FeatureRequestService.Create(req)
	if err != nil {
		respondServiceError(c, err, "feature request create failed")
		return
	}
	response.Success(c, request)
}

// AdminUpdateFeatureRequest 更新功能需求
func (h *Handler) AdminUpdateFeatureRequest(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req service.FeatureRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	request, err := h.FeatureRequestService.Update(id, req)
	if err != nil {
		if errors.Is(err, service.ErrFeatureRequestNotFound) {
			respondError(c, response.CodeNotFound, "feature request not found", nil)
			return
		}
		respondServiceError(c, err, "feature request update failed")
		return
	}
	response.Success(c, request)
}

// AdminDeleteFeatureRequest 删除功能需求
func (h *Handler) AdminDeleteFeatureRequest(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.FeatureRequestService.Delete(id); err != nil {
		if errors.Is(err, service.ErrFeatureRequestNotFound) {
			respondError(c, response.CodeNotFound, "feature request not found", nil)
			return
		}
		respondServiceError(c, err, "feature request delete failed")
		return
	}
	response.Success(c, nil)
}

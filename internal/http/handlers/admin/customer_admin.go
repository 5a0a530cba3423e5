package admin

import (
	"errors"
	"strconv"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/repository"
	"github.com/orderdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListCustomers 客户列表
func (h *Handler) AdminListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	customers, total, err := h.CustomerService.List(repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err, "customer list failed")
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, customers, pagination)
}

// AdminGetCustomer 客户详情（启用 CRM 时附带联系人信息）
func (h *Handler) AdminGetCustomer(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.CustomerService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "customer not found", nil)
			return
		}
		respondServiceError(c, err, "customer fetch failed")
		return
	}
	response.Success(c, detail)
}

// AdminCreateCustomer 创建客户
func (h *Handler) AdminCreateCustomer(c *gin.Context) {
	var req service.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	customer, err := h.CustomerService.Create(req)
	if err != nil {
		respondServiceError(c, err, "customer create failed")
		return
	}
	response.Success(c, customer)
}

// AdminUpdateCustomer 更新客户
func (h *Handler) AdminUpdateCustomer(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req service.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	customer, err := h.CustomerService.Update(id, req)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "customer not found", nil)
			return
		}
		respondServiceError(c, err, "customer update failed")
		return
	}
	response.Success(c, customer)
}

func parseUintParam(c *gin.Context, key string) (uint, bool) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

package admin

import (
	"strconv"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminListStripeEvents webhook 事件审计列表
func (h *Handler) AdminListStripeEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	events, total, err := h.StripeEventRepo.List(repository.StripeEventListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Handled:  parseBoolQuery(c, "handled"),
	})
	if err != nil {
		respondServiceError(c, err, "event list failed")
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, events, pagination)
}

package admin

import (
	"strings"

	"github.com/orderdesk-next/internal/countries"
	"github.com/orderdesk-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AdminListShippingMethods 可用运输方式列表，支持按目的国过滤
func (h *Handler) AdminListShippingMethods(c *gin.Context) {
	country := strings.TrimSpace(c.Query("country"))
	if country == "" {
		response.Success(c, h.ShippingMethodService.List(c.Request.Context()))
		return
	}

	alpha2 := countries.ToAlpha2(country)
	methods := h.ShippingMethodService.ListForCountry(c.Request.Context(), alpha2)
	response.Success(c, methods)
}

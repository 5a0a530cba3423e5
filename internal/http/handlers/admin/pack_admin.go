package admin

import (
	"errors"
	"strconv"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListPacks 包裹目录列表
func (h *Handler) AdminListPacks(c *gin.Context) {
	onlyActive, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))

	packs, err := h.PackService.List(onlyActive)
	if err != nil {
		respondServiceError(c, err, "pack list failed")
		return
	}
	response.Success(c, packs)
}

// AdminCreatePack 新增包裹规格
func (h *Handler) AdminCreatePack(c *gin.Context) {
	var req service.PackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	pack, err := h.PackService.Create(req)
	if err != nil {
		respondServiceError(c, err, "pack create failed")
		return
	}
	response.Success(c, pack)
}

// AdminUpdatePack 更新包裹规格
func (h *Handler) AdminUpdatePack(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req service.PackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	pack, err := h.PackService.Update(id, req)
	if err != nil {
		if errors.Is(err, service.ErrPackNotFound) {
			respondError(c, response.CodeNotFound, "pack not found", nil)
			return
		}
		respondServiceError(c, err, "pack update failed")
		return
	}
	response.Success(c, pack)
}

// AdminDeletePack 删除包裹规格（软删除）
func (h *Handler) AdminDeletePack(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.PackService.Delete(id); err != nil {
		if errors.Is(err, service.ErrPackNotFound) {
			respondError(c, response.CodeNotFound, "pack not found", nil)
			return
		}
		respondServiceError(c, err, "pack delete failed")
		return
	}
	response.Success(c, nil)
}

package admin

import (
	"errors"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string `json:"token"`
}

// StaffLogin 共享口令登录
func (h *Handler) StaffLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	token, err := h.AuthService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrLoginFailed) {
			respondError(c, response.CodeUnauthorized, "login failed", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}
	response.Success(c, LoginResponse{Token: token})
}

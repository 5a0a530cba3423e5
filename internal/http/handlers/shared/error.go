package shared

import (
	"errors"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/repository"
	"github.com/orderdesk-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 把服务层公共错误翻译为响应。
// 校验错误带上问题字段列表；未覆盖的错误按 fallbackMsg 走 500。
func RespondServiceError(c *gin.Context, err error, fallbackMsg string) {
	if ve, ok := service.AsValidationError(err); ok {
		response.ErrorWithData(c, response.CodeBadRequest, "validation failed", gin.H{
			"fields": ve.Fields,
		})
		return
	}
	if errors.Is(err, repository.ErrPermissionDenied) {
		RespondError(c, response.CodeForbidden, "database permission denied", err)
		return
	}
	if errors.Is(err, service.ErrUpstreamFailed) {
		RespondError(c, response.CodeInternal, "carrier request failed", err)
		return
	}
	RespondError(c, response.CodeInternal, fallbackMsg, err)
}

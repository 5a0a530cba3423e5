package public

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"github.com/orderdesk-next/internal/http/response"
	"github.com/orderdesk-next/internal/queue"

	"github.com/gin-gonic/gin"
)

// CronRefreshTracking 定时触发入口：批量刷新在途订单物流状态。
// 外部调度器（crontab、云定时器）携带共享密钥调用。
// 队列可用时任务进队立即返回，否则同步执行。
func (h *Handler) CronRefreshTracking(c *gin.Context) {
	log := requestLog(c)

	secret := strings.TrimSpace(h.Config.Auth.CronSecret)
	if secret == "" {
		log.Errorw("cron_secret_not_configured")
		respondError(c, response.CodeForbidden, "cron endpoint disabled", nil)
		return
	}
	provided := bearerToken(c.GetHeader("Authorization"))
	if subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) != 1 {
		log.Warnw("cron_auth_failed", "client_ip", c.ClientIP())
		respondError(c, response.CodeUnauthorized, "invalid cron secret", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueTrackingRefreshBatch(queue.TrackingRefreshBatchPayload{Limit: limit}); err != nil {
			log.Errorw("cron_enqueue_failed", "error", err)
			respondError(c, response.CodeInternal, "enqueue failed", err)
			return
		}
		response.SuccessWithMsg(c, "enqueued", gin.H{"queued": true})
		return
	}

	results, err := h.TrackingService.RefreshBatch(c.Request.Context(), limit)
	if err != nil {
		respondError(c, response.CodeInternal, "tracking refresh failed", err)
		return
	}
	response.Success(c, gin.H{
		"queued": false,
		"count":  len(results),
	})
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

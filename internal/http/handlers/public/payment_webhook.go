package public

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orderdesk-next/internal/payment/stripe"

	"github.com/gin-gonic/gin"
)

// StripeWebhook Stripe webhook 回调。
// 机器端点：HTTP 状态码直接面向 Stripe 的重试策略。
// 签名失败返回 400；签名通过后一律 200，内部失败记日志与审计表，人工跟进。
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	signature := strings.TrimSpace(c.GetHeader("Stripe-Signature"))
	log.Infow("stripe_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
	)

	outcome, err := h.WebhookService.HandleEvent(body, signature, time.Now())
	if err != nil {
		if errors.Is(err, stripe.ErrSignatureInvalid) {
			log.Warnw("stripe_webhook_signature_invalid", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
			return
		}
		// 签名已通过：非 200 只会触发 Stripe 重投同一个失败，记日志后受理
		log.Errorw("stripe_webhook_handle_failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	log.Infow("stripe_webhook_processed",
		"event_id", outcome.EventID,
		"event_type", outcome.EventType,
		"handled", outcome.Handled,
		"duplicate", outcome.Duplicate,
	)
	c.JSON(http.StatusOK, gin.H{
		"received":   true,
		"event_id":   outcome.EventID,
		"event_type": outcome.EventType,
		"handled":    outcome.Handled,
		"duplicate":  outcome.Duplicate,
	})
}

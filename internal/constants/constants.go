package constants

// 操作指引（订单列表/详情统一计算）
const (
	InstructionReturnInitiated = "RETURN INITIATED"
	InstructionDelivered       = "DELIVERED"
	InstructionShipped         = "SHIPPED"
	InstructionToShip          = "TO SHIP"
	InstructionActionRequired  = "ACTION REQUIRED"
)

// 物流状态（承运商语义，存储原文）
const (
	DeliveryStatusReadyToSend = "Ready to send"
	DeliveryStatusDelivered   = "Delivered"
)

// 订单动态类型
const (
	ActivityLabelCreated       = "label_created"
	ActivityReturnLabelCreated = "return_label_created"
	ActivityLabelUpgraded      = "label_upgraded"
	ActivityOrderCreated       = "order_created"
	ActivityOrderPaid          = "order_paid"
	ActivityStatusRefreshed    = "status_refreshed"
)

// Stripe webhook 事件类型（仅处理白名单内的类型）
const (
	StripeEventCustomerCreated          = "customer.created"
	StripeEventCustomerUpdated          = "customer.updated"
	StripeEventCheckoutSessionCompleted = "checkout.session.completed"
	StripeEventInvoicePaid              = "invoice.paid"
	StripeEventInvoicePaymentSucceeded  = "invoice.payment_succeeded"
)

// ReturnReasons 退货原因枚举
var ReturnReasons = []string{
	"damaged",
	"wrong_item",
	"no_longer_needed",
	"quality_issue",
	"other",
}

// IsValidReturnReason 校验退货原因是否在枚举内
func IsValidReturnReason(reason string) bool {
	for _, r := range ReturnReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// 队列任务类型
const (
	TaskTrackingRefreshBatch = "tracking:refresh_batch"
	TaskTrackingRefreshOrder = "tracking:refresh_order"
)

// 队列名称
const (
	QueueDefault = "default"
)

// DefaultTrackingBatchLimit 批量轮询上限
const DefaultTrackingBatchLimit = 50

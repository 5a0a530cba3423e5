package service

import (
	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/models"
)

// OrderInstruction 计算订单的操作指引。
// 规则按优先级短路：退货 > 已送达 > 已发货 > 待发货 > 需人工处理。
// 列表与详情共用此函数，保证两处口径一致。
func OrderInstruction(order *models.Order) string {
	if order == nil {
		return constants.InstructionActionRequired
	}
	if order.HasReturn() {
		return constants.InstructionReturnInitiated
	}
	if order.IsDelivered() {
		return constants.InstructionDelivered
	}
	if order.HasTracking() {
		return constants.InstructionShipped
	}
	if order.Paid && order.OkToShip {
		return constants.InstructionToShip
	}
	return constants.InstructionActionRequired
}

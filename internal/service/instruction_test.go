package service

import (
	"testing"

	"github.com/orderdesk-next/internal/constants"
	"github.com/orderdesk-next/internal/models"
)

func strPtr(s string) *string { return &s }

func TestOrderInstruction(t *testing.T) {
	cases := []struct {
		name  string
		order models.Order
		want  string
	}{
		{
			name:  "return beats everything",
			order: models.Order{SendcloudReturnID: "r1", DeliveryStatus: strPtr("Delivered"), TrackingNumber: "T1", Paid: true, OkToShip: true},
			want:  constants.InstructionReturnInitiated,
		},
		{
			name:  "delivered beats shipped",
			order: models.Order{DeliveryStatus: strPtr("Delivered"), TrackingNumber: "T1", Paid: true, OkToShip: true},
			want:  constants.InstructionDelivered,
		},
		{
			name:  "tracking means shipped even when unpaid",
			order: models.Order{TrackingNumber: "T1"},
			want:  constants.InstructionShipped,
		},
		{
			name:  "paid and cleared to ship",
			order: models.Order{Paid: true, OkToShip: true},
			want:  constants.InstructionToShip,
		},
		{
			name:  "paid but not cleared",
			order: models.Order{Paid: true},
			want:  constants.InstructionActionRequired,
		},
		{
			name:  "cleared but unpaid",
			order: models.Order{OkToShip: true},
			want:  constants.InstructionActionRequired,
		},
		{
			name:  "non-delivered status with tracking still shipped",
			order: models.Order{TrackingNumber: "T1", DeliveryStatus: strPtr("En route to sorting center")},
			want:  constants.InstructionShipped,
		},
		{
			name:  "empty order",
			order: models.Order{},
			want:  constants.InstructionActionRequired,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := OrderInstruction(&c.order); got != c.want {
				t.Errorf("OrderInstruction() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestOrderInstructionNil(t *testing.T) {
	if got := OrderInstruction(nil); got != constants.InstructionActionRequired {
		t.Errorf("OrderInstruction(nil) = %q", got)
	}
}

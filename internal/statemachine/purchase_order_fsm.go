package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/ncnwin/backoffice-api/internal/models"
)

// PurchaseOrderFSM wraps a purchase order with its state machine
type PurchaseOrderFSM struct {
	order *models.PurchaseOrder
	fsm   *fsm.FSM
}

// NewPurchaseOrderFSM creates a new purchase order state machine
func NewPurchaseOrderFSM(order *models.PurchaseOrder) *PurchaseOrderFSM {
	pfsm := &PurchaseOrderFSM{
		order: order,
	}

	pfsm.fsm = fsm.NewFSM(
		order.Status,
		fsm.Events{
			// draft → ordered
			{Name: "order", Src: []string{models.PurchaseOrderStatusDraft}, Dst: models.PurchaseOrderStatusOrdered},

			// ordered → delivered
			{Name: "deliver", Src: []string{models.PurchaseOrderStatusOrdered}, Dst: models.PurchaseOrderStatusDelivered},

			// draft/ordered → cancelled
			{Name: "cancel", Src: []string{models.PurchaseOrderStatusDraft, models.PurchaseOrderStatusOrdered}, Dst: models.PurchaseOrderStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Order transitions the purchase order to ordered state
func (p *PurchaseOrderFSM) Order(ctx context.Context) error {
	if !p.order.MayOrder() {
		return fmt.Errorf("purchase order cannot be placed in current state: %s", p.order.Status)
	}

	if err := p.fsm.Event(ctx, "order"); err != nil {
		return fmt.Errorf("failed to place purchase order: %w", err)
	}

	p.order.Status = p.fsm.Current()
	return nil
}

// Deliver transitions the purchase order to delivered state
func (p *PurchaseOrderFSM) Deliver(ctx context.Context) error {
	if !p.order.MayDeliver() {
		return fmt.Errorf("purchase order cannot be delivered in current state: %s", p.order.Status)
	}

	if err := p.fsm.Event(ctx, "deliver"); err != nil {
		return fmt.Errorf("failed to deliver purchase order: %w", err)
	}

	p.order.Status = p.fsm.Current()
	return nil
}

// Cancel transitions the purchase order to cancelled state
func (p *PurchaseOrderFSM) Cancel(ctx context.Context) error {
	if !p.order.MayCancel() {
		return fmt.Errorf("purchase order cannot be cancelled in current state: %s", p.order.Status)
	}

	if err := p.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel purchase order: %w", err)
	}

	p.order.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PurchaseOrderFSM) Current() string {
	return p.fsm.Current()
}

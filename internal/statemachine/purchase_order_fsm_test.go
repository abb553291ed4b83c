package statemachine

import (
	"context"
	"testing"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderFSM_FullLifecycle(t *testing.T) {
	order := &models.PurchaseOrder{Status: models.PurchaseOrderStatusDraft}

	require.NoError(t, NewPurchaseOrderFSM(order).Order(context.Background()))
	assert.Equal(t, models.PurchaseOrderStatusOrdered, order.Status)

	require.NoError(t, NewPurchaseOrderFSM(order).Deliver(context.Background()))
	assert.Equal(t, models.PurchaseOrderStatusDelivered, order.Status)
}

func TestPurchaseOrderFSM_DeliverFromDraftFails(t *testing.T) {
	order := &models.PurchaseOrder{Status: models.PurchaseOrderStatusDraft}

	assert.Error(t, NewPurchaseOrderFSM(order).Deliver(context.Background()))
	assert.Equal(t, models.PurchaseOrderStatusDraft, order.Status)
}

func TestPurchaseOrderFSM_Cancel(t *testing.T) {
	for _, status := range []string{models.PurchaseOrderStatusDraft, models.PurchaseOrderStatusOrdered} {
		order := &models.PurchaseOrder{Status: status}
		require.NoError(t, NewPurchaseOrderFSM(order).Cancel(context.Background()))
		assert.Equal(t, models.PurchaseOrderStatusCancelled, order.Status)
	}
}

func TestPurchaseOrderFSM_CancelDeliveredFails(t *testing.T) {
	order := &models.PurchaseOrder{Status: models.PurchaseOrderStatusDelivered}

	assert.Error(t, NewPurchaseOrderFSM(order).Cancel(context.Background()))
	assert.Equal(t, models.PurchaseOrderStatusDelivered, order.Status)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/internal/statemachine"
	"gorm.io/gorm"
)

// PurchaseOrderService handles purchase order operations
type PurchaseOrderService struct {
	orderRepo    repository.PurchaseOrderRepository
	supplierRepo repository.SupplierRepository
	inventorySvc *InventoryService
	postingSvc   *PostingService
	auditSvc     *AuditService
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(orderRepo repository.PurchaseOrderRepository, supplierRepo repository.SupplierRepository, inventorySvc *InventoryService, postingSvc *PostingService, auditSvc *AuditService) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		inventorySvc: inventorySvc,
		postingSvc:   postingSvc,
		auditSvc:     auditSvc,
	}
}

// PurchaseOrderItemInput carries one writable order line
type PurchaseOrderItemInput struct {
	ItemName        string  `json:"item_name" binding:"required"`
	Description     *string `json:"description"`
	InventoryItemID *uint   `json:"inventory_item_id"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice       float64 `json:"unit_price" binding:"required,gte=0"`
	TaxRate         float64 `json:"tax_rate"`
}

// PurchaseOrderInput carries the writable purchase order fields
type PurchaseOrderInput struct {
	SupplierID           uint                     `json:"supplier_id" binding:"required"`
	OrderDate            time.Time                `json:"order_date" binding:"required"`
	ExpectedDeliveryDate *time.Time               `json:"expected_delivery_date"`
	TaxRate              float64                  `json:"tax_rate"`
	Notes                *string                  `json:"notes"`
	Items                []PurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// Create builds a new draft purchase order with a generated number
func (s *PurchaseOrderService) Create(ctx context.Context, input PurchaseOrderInput, userID uint) (*models.PurchaseOrder, error) {
	if _, err := s.supplierRepo.FindByID(ctx, input.SupplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("仕入先が見つかりません: id=%d", input.SupplierID)
		}
		return nil, err
	}

	number, err := s.nextNumber(ctx, input.OrderDate)
	if err != nil {
		return nil, err
	}

	order := &models.PurchaseOrder{
		OrderNumber:          number,
		SupplierID:           input.SupplierID,
		OrderDate:            input.OrderDate,
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
		Status:               models.PurchaseOrderStatusDraft,
		TaxRate:              input.TaxRate,
		Notes:                input.Notes,
		CreatedBy:            userID,
		Items:                buildPurchaseOrderItems(input.Items),
	}
	if order.TaxRate == 0 {
		order.TaxRate = 10
	}
	order.RecalculateTotals()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "create", "purchase_order", order.ID, order.OrderNumber, "")
	return s.orderRepo.FindByID(ctx, order.ID)
}

// Get returns one purchase order with supplier and items
func (s *PurchaseOrderService) Get(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// List returns purchase orders matching the query
func (s *PurchaseOrderService) List(ctx context.Context, query *repository.ListQuery) ([]models.PurchaseOrder, int64, error) {
	return s.orderRepo.List(ctx, query)
}

// Update rewrites a purchase order's content. Draft and ordered states may be
// edited; a delivered order is settled history.
func (s *PurchaseOrderService) Update(ctx context.Context, id uint, input PurchaseOrderInput, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.PurchaseOrderStatusDelivered || order.Status == models.PurchaseOrderStatusCancelled {
		return nil, ErrInvalidState
	}

	order.SupplierID = input.SupplierID
	order.OrderDate = input.OrderDate
	order.ExpectedDeliveryDate = input.ExpectedDeliveryDate
	if input.TaxRate > 0 {
		order.TaxRate = input.TaxRate
	}
	order.Notes = input.Notes
	order.Items = buildPurchaseOrderItems(input.Items)
	order.RecalculateTotals()

	if err := s.orderRepo.UpdateWithItems(ctx, order); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "update", "purchase_order", order.ID, order.OrderNumber, "")
	return s.orderRepo.FindByID(ctx, order.ID)
}

// Order places a draft purchase order with the supplier
func (s *PurchaseOrderService) Order(ctx context.Context, id uint, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.NewPurchaseOrderFSM(order).Order(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "order", "purchase_order", order.ID, order.OrderNumber, "")
	return s.orderRepo.FindByID(ctx, order.ID)
}

// Deliver marks the order delivered, books the purchase to the ledger and
// receives linked lines into inventory.
func (s *PurchaseOrderService) Deliver(ctx context.Context, id uint, actualDate *time.Time, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.NewPurchaseOrderFSM(order).Deliver(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if actualDate != nil {
		order.ActualDeliveryDate = actualDate
	} else {
		now := time.Now()
		order.ActualDeliveryDate = &now
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.postingSvc.PostForPurchaseOrder(ctx, order)
	s.receiveIntoInventory(ctx, order, userID)
	s.auditSvc.Log(ctx, userID, "deliver", "purchase_order", order.ID, order.OrderNumber, "")
	return s.orderRepo.FindByID(ctx, order.ID)
}

// Cancel voids a purchase order and clears any journal entry it produced.
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uint, userID uint) (*models.PurchaseOrder, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.NewPurchaseOrderFSM(order).Cancel(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.postingSvc.PostForPurchaseOrder(ctx, order)
	s.auditSvc.Log(ctx, userID, "cancel", "purchase_order", order.ID, order.OrderNumber, "")
	return s.orderRepo.FindByID(ctx, order.ID)
}

// Delete removes a draft or cancelled purchase order together with any
// leftover journal entry.
func (s *PurchaseOrderService) Delete(ctx context.Context, id uint, userID uint) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != models.PurchaseOrderStatusDraft && order.Status != models.PurchaseOrderStatusCancelled {
		return ErrInvalidState
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.postingSvc.RemoveForReference(ctx, []string{models.ReferenceTypePurchaseOrder}, id)
	s.auditSvc.Log(ctx, userID, "delete", "purchase_order", id, order.OrderNumber, "")
	return nil
}

// receiveIntoInventory records inbound stock movements for order lines linked
// to an inventory item. Individual failures are logged by the inventory
// service and do not roll back the delivery.
func (s *PurchaseOrderService) receiveIntoInventory(ctx context.Context, order *models.PurchaseOrder, userID uint) {
	for _, item := range order.Items {
		if item.InventoryItemID == nil {
			continue
		}
		refType := models.MovementReferencePurchase
		refID := order.ID
		s.inventorySvc.ReceivePurchase(ctx, MovementInput{
			InventoryID:   *item.InventoryItemID,
			MovementType:  models.MovementTypeIn,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitPrice,
			ReferenceType: &refType,
			ReferenceID:   &refID,
		}, userID)
	}
}

// nextNumber builds the next order number for an order date, e.g.
// PO-20250829-002.
func (s *PurchaseOrderService) nextNumber(ctx context.Context, orderDate time.Time) (string, error) {
	prefix := fmt.Sprintf("PO-%s-", orderDate.Format("20060102"))

	last, err := s.orderRepo.LastNumberForPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

func buildPurchaseOrderItems(inputs []PurchaseOrderItemInput) []models.PurchaseOrderItem {
	items := make([]models.PurchaseOrderItem, 0, len(inputs))
	for _, in := range inputs {
		taxRate := in.TaxRate
		if taxRate == 0 {
			taxRate = 10
		}
		items = append(items, models.PurchaseOrderItem{
			ItemName:        in.ItemName,
			Description:     in.Description,
			InventoryItemID: in.InventoryItemID,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			TaxRate:         taxRate,
		})
	}
	return items
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/pkg/logger"
	"gorm.io/gorm"
)

// expiryWarningDays is how far ahead the alert sweep looks for expiring stock.
const expiryWarningDays = 7

// InventoryService handles stock items, movements and alerts
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
	postingSvc    *PostingService
	auditSvc      *AuditService
}

// NewInventoryService creates a new inventory service
func NewInventoryService(inventoryRepo repository.InventoryRepository, postingSvc *PostingService, auditSvc *AuditService) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		postingSvc:    postingSvc,
		auditSvc:      auditSvc,
	}
}

// InventoryItemInput carries the writable stock item fields
type InventoryItemInput struct {
	ItemName        string     `json:"item_name" binding:"required"`
	Category        *string    `json:"category"`
	SupplierID      *uint      `json:"supplier_id"`
	Unit            string     `json:"unit"`
	InitialStock    float64    `json:"initial_stock"`
	ReorderPoint    float64    `json:"reorder_point"`
	OptimalStock    float64    `json:"optimal_stock"`
	UnitCost        float64    `json:"unit_cost"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	StorageLocation *string    `json:"storage_location"`
	Notes           *string    `json:"notes"`
}

// Create registers a stock item. A non-zero initial stock is recorded as an
// initial movement so the history starts complete.
func (s *InventoryService) Create(ctx context.Context, input InventoryItemInput, userID uint) (*models.InventoryItem, error) {
	item := &models.InventoryItem{
		ItemName:        input.ItemName,
		Category:        input.Category,
		SupplierID:      input.SupplierID,
		Unit:            input.Unit,
		ReorderPoint:    input.ReorderPoint,
		OptimalStock:    input.OptimalStock,
		UnitCost:        input.UnitCost,
		ExpiryDate:      input.ExpiryDate,
		StorageLocation: input.StorageLocation,
		Notes:           input.Notes,
	}
	if item.Unit == "" {
		item.Unit = "個"
	}

	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	if input.InitialStock > 0 {
		if _, err := s.RecordMovement(ctx, MovementInput{
			InventoryID:  item.ID,
			MovementType: models.MovementTypeInitial,
			Quantity:     input.InitialStock,
			UnitCost:     input.UnitCost,
		}, userID); err != nil {
			return nil, err
		}
	}

	s.auditSvc.Log(ctx, userID, "create", "inventory", item.ID, item.ItemName, "")
	return s.inventoryRepo.FindByID(ctx, item.ID)
}

// Get returns one stock item
func (s *InventoryService) Get(ctx context.Context, id uint) (*models.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// List returns stock items matching the query
func (s *InventoryService) List(ctx context.Context, query *repository.ListQuery) ([]models.InventoryItem, int64, error) {
	return s.inventoryRepo.List(ctx, query)
}

// Update modifies a stock item's master data. Stock levels only move through
// movements.
func (s *InventoryService) Update(ctx context.Context, id uint, input InventoryItemInput, userID uint) (*models.InventoryItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.ItemName = input.ItemName
	item.Category = input.Category
	item.SupplierID = input.SupplierID
	if input.Unit != "" {
		item.Unit = input.Unit
	}
	item.ReorderPoint = input.ReorderPoint
	item.OptimalStock = input.OptimalStock
	item.UnitCost = input.UnitCost
	item.ExpiryDate = input.ExpiryDate
	item.StorageLocation = input.StorageLocation
	item.Notes = input.Notes

	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.refreshLowStockAlert(ctx, item)
	s.auditSvc.Log(ctx, userID, "update", "inventory", item.ID, item.ItemName, "")
	return item, nil
}

// Delete removes a stock item with its movements and alerts
func (s *InventoryService) Delete(ctx context.Context, id uint, userID uint) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.inventoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, userID, "delete", "inventory", id, item.ItemName, "")
	return nil
}

// MovementInput carries the writable movement fields. Quantity is a positive
// magnitude for in/out/initial; adjustments take a signed delta.
type MovementInput struct {
	InventoryID   uint    `json:"inventory_id"`
	MovementType  string  `json:"movement_type" binding:"required,oneof=in out adjustment initial"`
	Quantity      float64 `json:"quantity" binding:"required"`
	UnitCost      float64 `json:"unit_cost"`
	ReferenceType *string `json:"reference_type"`
	ReferenceID   *uint   `json:"reference_id"`
	Notes         *string `json:"notes"`
}

// RecordMovement applies a stock movement: validates it, shifts the level and
// books purchase receipts to the ledger. Outbound stock can never push the
// level below zero.
func (s *InventoryService) RecordMovement(ctx context.Context, input MovementInput, userID uint) (*models.InventoryMovement, error) {
	item, err := s.Get(ctx, input.InventoryID)
	if err != nil {
		return nil, err
	}

	signed, err := signedQuantity(input)
	if err != nil {
		return nil, err
	}

	newStock := item.CurrentStock + signed
	if newStock < 0 {
		return nil, fmt.Errorf("%w: 現在庫 %.2f に対し出庫 %.2f", ErrInsufficientStock, item.CurrentStock, -signed)
	}

	unitCost := input.UnitCost
	if unitCost == 0 {
		unitCost = item.UnitCost
	}

	movement := &models.InventoryMovement{
		InventoryID:   input.InventoryID,
		MovementType:  input.MovementType,
		Quantity:      signed,
		UnitCost:      unitCost,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		Notes:         input.Notes,
		PerformedBy:   userID,
		PerformedAt:   time.Now(),
	}

	if err := s.inventoryRepo.ApplyMovement(ctx, movement, newStock); err != nil {
		return nil, err
	}

	item.CurrentStock = newStock
	movement.Item = *item
	if movement.BooksToLedger() {
		s.postingSvc.PostForInventoryMovement(ctx, movement)
	}
	s.refreshLowStockAlert(ctx, item)

	return movement, nil
}

// ReceivePurchase records an inbound purchase movement, logging failures
// instead of returning them. Used by purchase order delivery where one bad
// line must not abort the rest.
func (s *InventoryService) ReceivePurchase(ctx context.Context, input MovementInput, userID uint) {
	if _, err := s.RecordMovement(ctx, input, userID); err != nil {
		logger.Error("failed to receive purchase into inventory",
			"inventory_id", input.InventoryID, "error", err)
	}
}

// ListMovements returns the movement history for one item, or all items when
// inventoryID is zero.
func (s *InventoryService) ListMovements(ctx context.Context, inventoryID uint, query *repository.ListQuery) ([]models.InventoryMovement, int64, error) {
	return s.inventoryRepo.ListMovements(ctx, inventoryID, query)
}

// ListAlerts returns stock alerts, open ones by default
func (s *InventoryService) ListAlerts(ctx context.Context, includeResolved bool) ([]models.StockAlert, error) {
	return s.inventoryRepo.ListAlerts(ctx, includeResolved)
}

// DismissAlert manually resolves an alert. Dismissed alerts are never
// recreated for the same condition.
func (s *InventoryService) DismissAlert(ctx context.Context, alertID, userID uint) error {
	alert, err := s.inventoryRepo.FindAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	now := time.Now()
	alert.Resolved = true
	alert.ResolvedAt = &now
	alert.ResolvedBy = &userID
	alert.ManuallyDismissed = true
	return s.inventoryRepo.UpdateAlert(ctx, alert)
}

// SweepAlerts refreshes low-stock alerts for every item and raises expiry
// warnings. Run periodically by the background worker.
func (s *InventoryService) SweepAlerts(ctx context.Context) error {
	items, err := s.inventoryRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		s.refreshLowStockAlert(ctx, item)
		s.refreshExpiryAlert(ctx, item)
	}
	return nil
}

// refreshLowStockAlert opens a low-stock alert when the level is at or below
// the reorder point and auto-resolves it once the level recovers. Alerts the
// user dismissed stay closed until the condition clears and re-occurs.
func (s *InventoryService) refreshLowStockAlert(ctx context.Context, item *models.InventoryItem) {
	open, err := s.inventoryRepo.FindOpenAlert(ctx, item.ID, models.AlertTypeLowStock)
	needsAlert := item.NeedsReorder()

	switch {
	case needsAlert && err != nil:
		// A manually dismissed alert suppresses recreation until the
		// level recovers once.
		if latest, lerr := s.inventoryRepo.FindLatestAlert(ctx, item.ID, models.AlertTypeLowStock); lerr == nil && latest.ManuallyDismissed {
			return
		}
		level := models.AlertLevelWarning
		if item.CurrentStock <= 0 {
			level = models.AlertLevelUrgent
		}
		alert := &models.StockAlert{
			InventoryID: item.ID,
			AlertType:   models.AlertTypeLowStock,
			AlertLevel:  level,
			Message:     fmt.Sprintf("%s の在庫が発注点を下回りました（現在庫 %.2f%s）", item.ItemName, item.CurrentStock, item.Unit),
		}
		if err := s.inventoryRepo.CreateAlert(ctx, alert); err != nil {
			logger.Error("failed to create stock alert", "inventory_id", item.ID, "error", err)
		}
	case !needsAlert && err == nil:
		now := time.Now()
		open.Resolved = true
		open.ResolvedAt = &now
		if err := s.inventoryRepo.UpdateAlert(ctx, open); err != nil {
			logger.Error("failed to resolve stock alert", "alert_id", open.ID, "error", err)
		}
	case !needsAlert:
		// Recovery lifts the dismissal so the next shortage alerts again.
		if latest, lerr := s.inventoryRepo.FindLatestAlert(ctx, item.ID, models.AlertTypeLowStock); lerr == nil && latest.ManuallyDismissed {
			latest.ManuallyDismissed = false
			if uerr := s.inventoryRepo.UpdateAlert(ctx, latest); uerr != nil {
				logger.Error("failed to clear alert dismissal", "alert_id", latest.ID, "error", uerr)
			}
		}
	}
}

func (s *InventoryService) refreshExpiryAlert(ctx context.Context, item *models.InventoryItem) {
	if _, err := s.inventoryRepo.FindOpenAlert(ctx, item.ID, models.AlertTypeExpiryWarning); err == nil {
		return
	}
	if !item.ExpiresWithin(expiryWarningDays) || item.CurrentStock <= 0 {
		return
	}

	alert := &models.StockAlert{
		InventoryID: item.ID,
		AlertType:   models.AlertTypeExpiryWarning,
		AlertLevel:  models.AlertLevelWarning,
		Message:     fmt.Sprintf("%s の賞味期限が近づいています（%s）", item.ItemName, item.ExpiryDate.Format("2006-01-02")),
	}
	if err := s.inventoryRepo.CreateAlert(ctx, alert); err != nil {
		logger.Error("failed to create expiry alert", "inventory_id", item.ID, "error", err)
	}
}

func signedQuantity(input MovementInput) (float64, error) {
	switch input.MovementType {
	case models.MovementTypeIn, models.MovementTypeInitial:
		if input.Quantity <= 0 {
			return 0, fmt.Errorf("入庫数量は0より大きい必要があります")
		}
		return input.Quantity, nil
	case models.MovementTypeOut:
		if input.Quantity <= 0 {
			return 0, fmt.Errorf("出庫数量は0より大きい必要があります")
		}
		return -input.Quantity, nil
	case models.MovementTypeAdjustment:
		if input.Quantity == 0 {
			return 0, fmt.Errorf("調整数量は0以外である必要があります")
		}
		return input.Quantity, nil
	}
	return 0, fmt.Errorf("無効な移動区分です: %s", input.MovementType)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health        *HealthHandler
	Auth          *AuthHandler
	User          *UserHandler
	Customer      *CustomerHandler
	Supplier      *SupplierHandler
	Document      *DocumentHandler
	PurchaseOrder *PurchaseOrderHandler
	Inventory     *InventoryHandler
	Accounting    *AccountingHandler
	Expense       *ExpenseHandler
	Audit         *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:        NewHealthHandler(svcs.Worker),
		Auth:          NewAuthHandler(svcs.Auth),
		User:          NewUserHandler(svcs.User),
		Customer:      NewCustomerHandler(svcs.Customer),
		Supplier:      NewSupplierHandler(svcs.Supplier),
		Document:      NewDocumentHandler(svcs.Document),
		PurchaseOrder: NewPurchaseOrderHandler(svcs.PurchaseOrder),
		Inventory:     NewInventoryHandler(svcs.Inventory),
		Accounting:    NewAccountingHandler(svcs.Accounting, svcs.Export),
		Expense:       NewExpenseHandler(svcs.Expense),
		Audit:         NewAuditHandler(svcs.Audit),
	}
}

// listQueryFromContext builds a ListQuery from common query parameters
func listQueryFromContext(c *gin.Context, filterKeys ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	for _, key := range filterKeys {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}
	return query
}

// paginationResponse builds the standard pagination envelope
func paginationResponse(query *repository.ListQuery, total int64) gin.H {
	totalPages := int64(0)
	if query.PerPage > 0 {
		totalPages = (total + int64(query.PerPage) - 1) / int64(query.PerPage)
	}
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": totalPages,
	}
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInactiveAccount):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrReferenced),
		errors.Is(err, services.ErrSystemEntry):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func paramID(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/middleware"
	"github.com/ncnwin/backoffice-api/internal/services"
)

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "category", "supplier_id", "low_stock")

	items, total, err := h.inventoryService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": paginationResponse(query, total),
	})
}

func (h *InventoryHandler) Show(c *gin.Context) {
	item, err := h.inventoryService.Get(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var input services.InventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.inventoryService.Create(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *InventoryHandler) Update(c *gin.Context) {
	var input services.InventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.inventoryService.Update(c.Request.Context(), paramID(c, "id"), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *InventoryHandler) Destroy(c *gin.Context) {
	if err := h.inventoryService.Delete(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}

func (h *InventoryHandler) IndexMovements(c *gin.Context) {
	query := listQueryFromContext(c, "movement_type")

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), paramID(c, "id"), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movements":  movements,
		"pagination": paginationResponse(query, total),
	})
}

func (h *InventoryHandler) CreateMovement(c *gin.Context) {
	var input services.MovementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.InventoryID = paramID(c, "id")

	movement, err := h.inventoryService.RecordMovement(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"movement": movement})
}

func (h *InventoryHandler) IndexAlerts(c *gin.Context) {
	includeResolved := c.Query("include_resolved") == "true"

	alerts, err := h.inventoryService.ListAlerts(c.Request.Context(), includeResolved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *InventoryHandler) DismissAlert(c *gin.Context) {
	if err := h.inventoryService.DismissAlert(c.Request.Context(), paramID(c, "alert_id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "アラートを解消しました"})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/middleware"
	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/services"
)

type PurchaseOrderHandler struct {
	purchaseOrderService *services.PurchaseOrderService
}

func NewPurchaseOrderHandler(purchaseOrderService *services.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{purchaseOrderService: purchaseOrderService}
}

func (h *PurchaseOrderHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "status", "supplier_id", "from", "to")

	orders, total, err := h.purchaseOrderService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orders[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"purchase_orders": responses,
		"pagination":      paginationResponse(query, total),
	})
}

func (h *PurchaseOrderHandler) Show(c *gin.Context) {
	order, err := h.purchaseOrderService.Get(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_order": order.ToResponse()})
}

func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var input services.PurchaseOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.purchaseOrderService.Create(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase_order": order.ToResponse()})
}

func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	var input services.PurchaseOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.purchaseOrderService.Update(c.Request.Context(), paramID(c, "id"), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchase_order": order.ToResponse()})
}

func (h *PurchaseOrderHandler) Destroy(c *gin.Context) {
	if err := h.purchaseOrderService.Delete(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}

func (h *PurchaseOrderHandler) Order(c *gin.Context) {
	order, err := h.purchaseOrderService.Order(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_order": order.ToResponse()})
}

type DeliverRequest struct {
	ActualDeliveryDate *time.Time `json:"actual_delivery_date"`
}

func (h *PurchaseOrderHandler) Deliver(c *gin.Context) {
	var req DeliverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	order, err := h.purchaseOrderService.Deliver(c.Request.Context(), paramID(c, "id"), req.ActualDeliveryDate, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_order": order.ToResponse()})
}

func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	order, err := h.purchaseOrderService.Cancel(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_order": order.ToResponse()})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/middleware"
	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/services"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "document_type", "status", "customer_id", "from", "to")

	documents, total, err := h.documentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.DocumentResponse, 0, len(documents))
	for i := range documents {
		responses = append(responses, documents[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":  responses,
		"pagination": paginationResponse(query, total),
	})
}

func (h *DocumentHandler) Show(c *gin.Context) {
	document, err := h.documentService.Get(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": document.ToResponse()})
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var input services.DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	document, err := h.documentService.Create(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document.ToResponse()})
}

func (h *DocumentHandler) Update(c *gin.Context) {
	var input services.DocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	document, err := h.documentService.Update(c.Request.Context(), paramID(c, "id"), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document.ToResponse()})
}

func (h *DocumentHandler) Destroy(c *gin.Context) {
	if err := h.documentService.Delete(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}

func (h *DocumentHandler) Issue(c *gin.Context) {
	document, err := h.documentService.Issue(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": document.ToResponse()})
}

type MarkPaidRequest struct {
	PaymentDate *time.Time `json:"payment_date"`
}

func (h *DocumentHandler) MarkPaid(c *gin.Context) {
	var req MarkPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	document, err := h.documentService.MarkPaid(c.Request.Context(), paramID(c, "id"), paymentDate, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": document.ToResponse()})
}

func (h *DocumentHandler) Cancel(c *gin.Context) {
	document, err := h.documentService.Cancel(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": document.ToResponse()})
}

type ConvertRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=quotation order delivery_note invoice"`
}

func (h *DocumentHandler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	document, err := h.documentService.Convert(c.Request.Context(), paramID(c, "id"), req.TargetType, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": document.ToResponse()})
}

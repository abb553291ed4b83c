package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/middleware"
	"github.com/ncnwin/backoffice-api/internal/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "customer_type")

	customers, total, err := h.customerService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers":  customers,
		"pagination": paginationResponse(query, total),
	})
}

func (h *CustomerHandler) Show(c *gin.Context) {
	customer, err := h.customerService.Get(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var input services.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

func (h *CustomerHandler) Update(c *gin.Context) {
	var input services.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), paramID(c, "id"), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *CustomerHandler) Destroy(c *gin.Context) {
	if err := h.customerService.Delete(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}

func (h *CustomerHandler) CreateContact(c *gin.Context) {
	var input services.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.customerService.AddContact(c.Request.Context(), paramID(c, "id"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contact": contact})
}

func (h *CustomerHandler) UpdateContact(c *gin.Context) {
	var input services.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.customerService.UpdateContact(c.Request.Context(), paramID(c, "id"), paramID(c, "contact_id"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

func (h *CustomerHandler) DestroyContact(c *gin.Context) {
	if err := h.customerService.DeleteContact(c.Request.Context(), paramID(c, "id"), paramID(c, "contact_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}

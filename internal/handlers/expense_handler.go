package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/middleware"
	"github.com/ncnwin/backoffice-api/internal/services"
)

type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "category", "from", "to")

	expenses, total, err := h.expenseService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses":   expenses,
		"pagination": paginationResponse(query, total),
	})
}

func (h *ExpenseHandler) Show(c *gin.Context) {
	expense, err := h.expenseService.Get(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	var input services.ExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	var input services.ExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.expenseService.Update(c.Request.Context(), paramID(c, "id"), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

func (h *ExpenseHandler) Destroy(c *gin.Context) {
	if err := h.expenseService.Delete(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}

func (h *ExpenseHandler) CategoryTotals(c *gin.Context) {
	totals, err := h.expenseService.CategoryTotals(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totals": totals})
}

func (h *ExpenseHandler) AttachReceipt(c *gin.Context) {
	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "領収書ファイルが必要です"})
		return
	}
	defer file.Close()

	expense, err := h.expenseService.AttachReceipt(c.Request.Context(), paramID(c, "id"), file, header, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

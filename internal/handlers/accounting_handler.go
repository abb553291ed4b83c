package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/middleware"
	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/services"
)

type AccountingHandler struct {
	accountingService *services.AccountingService
	exportService     *services.ExportService
}

func NewAccountingHandler(accountingService *services.AccountingService, exportService *services.ExportService) *AccountingHandler {
	return &AccountingHandler{
		accountingService: accountingService,
		exportService:     exportService,
	}
}

func (h *AccountingHandler) IndexAccounts(c *gin.Context) {
	accounts, err := h.accountingService.ListAccounts(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *AccountingHandler) CreateAccount(c *gin.Context) {
	var input services.CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountingService.CreateAccount(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

func (h *AccountingHandler) DeactivateAccount(c *gin.Context) {
	if err := h.accountingService.DeactivateAccount(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "勘定科目を無効化しました"})
}

func (h *AccountingHandler) IndexEntries(c *gin.Context) {
	query := listQueryFromContext(c, "from", "to", "account_id", "reference_type", "source")

	entries, total, err := h.accountingService.ListEntries(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.JournalEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, entries[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":    responses,
		"pagination": paginationResponse(query, total),
	})
}

func (h *AccountingHandler) ShowEntry(c *gin.Context) {
	entry, err := h.accountingService.GetEntry(c.Request.Context(), paramID(c, "id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry.ToResponse()})
}

func (h *AccountingHandler) CreateEntry(c *gin.Context) {
	var input services.CreateEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.accountingService.CreateEntry(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry.ToResponse()})
}

func (h *AccountingHandler) UpdateEntry(c *gin.Context) {
	var input services.CreateEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.accountingService.UpdateEntry(c.Request.Context(), paramID(c, "id"), input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry.ToResponse()})
}

func (h *AccountingHandler) DestroyEntry(c *gin.Context) {
	if err := h.accountingService.DeleteEntry(c.Request.Context(), paramID(c, "id"), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "削除しました"})
}

func (h *AccountingHandler) TrialBalance(c *gin.Context) {
	rows, err := h.accountingService.TrialBalance(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var totalDebit, totalCredit float64
	for i := range rows {
		totalDebit += rows[i].TotalDebit
		totalCredit += rows[i].TotalCredit
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":         rows,
		"total_debit":  totalDebit,
		"total_credit": totalCredit,
	})
}

func (h *AccountingHandler) ProfitAndLoss(c *gin.Context) {
	statement, err := h.accountingService.ProfitAndLoss(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profit_and_loss": statement})
}

func (h *AccountingHandler) BalanceSheet(c *gin.Context) {
	statement, err := h.accountingService.BalanceSheet(c.Request.Context(), c.Query("as_of"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance_sheet": statement})
}

func (h *AccountingHandler) ExportTrialBalanceCSV(c *gin.Context) {
	data, filename, err := h.exportService.TrialBalanceCSV(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *AccountingHandler) ExportJournalCSV(c *gin.Context) {
	query := listQueryFromContext(c, "from", "to", "account_id", "reference_type", "source")

	data, filename, err := h.exportService.JournalCSV(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *AccountingHandler) ExportTrialBalanceXLSX(c *gin.Context) {
	data, filename, err := h.exportService.TrialBalanceXLSX(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *AccountingHandler) ExportStatementsPDF(c *gin.Context) {
	data, filename, err := h.exportService.StatementsPDF(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

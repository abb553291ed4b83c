package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService renders accounting data as CSV, XLSX and PDF files
type ExportService struct {
	accountingSvc *AccountingService
}

// NewExportService creates a new export service
func NewExportService(accountingSvc *AccountingService) *ExportService {
	return &ExportService{accountingSvc: accountingSvc}
}

// TrialBalanceCSV renders the trial balance as CSV
func (s *ExportService) TrialBalanceCSV(ctx context.Context, from, to string) ([]byte, string, error) {
	rows, err := s.accountingSvc.TrialBalance(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"試算表", fmt.Sprintf("%s 〜 %s", from, to)})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"科目コード", "科目名", "区分", "借方合計", "貸方合計"})

	var totalDebit, totalCredit float64
	for _, row := range rows {
		_ = writer.Write([]string{
			row.AccountCode,
			row.AccountName,
			row.AccountType,
			fmt.Sprintf("%.2f", row.TotalDebit),
			fmt.Sprintf("%.2f", row.TotalCredit),
		})
		totalDebit += row.TotalDebit
		totalCredit += row.TotalCredit
	}
	_ = writer.Write([]string{"", "合計", "", fmt.Sprintf("%.2f", totalDebit), fmt.Sprintf("%.2f", totalCredit)})

	writer.Flush()

	filename := fmt.Sprintf("trial_balance_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// JournalCSV renders journal entries as CSV
func (s *ExportService) JournalCSV(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	query.PerPage = 0 // export everything matching the filters
	entries, _, err := s.accountingSvc.ListEntries(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"日付", "摘要", "借方科目", "貸方科目", "金額", "区分"})
	for _, entry := range entries {
		resp := entry.ToResponse()
		_ = writer.Write([]string{
			entry.EntryDate.Format("2006-01-02"),
			entry.Description,
			resp.DebitAccountName,
			resp.CreditAccountName,
			fmt.Sprintf("%.2f", entry.Amount),
			resp.EntrySource,
		})
	}

	writer.Flush()

	filename := fmt.Sprintf("journal_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// TrialBalanceXLSX renders the trial balance as a spreadsheet
func (s *ExportService) TrialBalanceXLSX(ctx context.Context, from, to string) ([]byte, string, error) {
	rows, err := s.accountingSvc.TrialBalance(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "TrialBalance"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "試算表")
	_ = f.SetCellValue(sheet, "B1", fmt.Sprintf("%s 〜 %s", from, to))

	headers := []string{"科目コード", "科目名", "区分", "借方合計", "貸方合計"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	var totalDebit, totalCredit float64
	for i, row := range rows {
		r := i + 4
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.AccountCode)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.AccountName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.AccountType)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.TotalDebit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.TotalCredit)
		totalDebit += row.TotalDebit
		totalCredit += row.TotalCredit
	}

	totalRow := len(rows) + 4
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), "合計")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), totalDebit)
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), totalCredit)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("trial_balance_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// StatementsPDF renders the income statement and balance sheet for a window
// as a single PDF.
func (s *ExportService) StatementsPDF(ctx context.Context, from, to string) ([]byte, string, error) {
	pl, err := s.accountingSvc.ProfitAndLoss(ctx, from, to)
	if err != nil {
		return nil, "", err
	}
	sheet, err := s.accountingSvc.BalanceSheet(ctx, to)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Financial Statements")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 10, fmt.Sprintf("Period: %s - %s", from, to))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Profit and Loss")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	writePDFLine(pdf, "Revenue:", pl.Revenue)
	writePDFLine(pdf, "Expenses:", pl.Expenses)
	writePDFLine(pdf, "Net Income:", pl.NetIncome)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Balance Sheet")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	writePDFLine(pdf, "Assets:", sheet.Assets)
	writePDFLine(pdf, "Liabilities:", sheet.Liabilities)
	writePDFLine(pdf, "Equity:", sheet.Equity)
	pdf.Ln(4)

	if !sheet.Balanced {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(60, 10, fmt.Sprintf("WARNING: books unbalanced by %.2f", sheet.Difference))
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("statements_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func writePDFLine(pdf *gofpdf.Fpdf, label string, amount float64) {
	pdf.Cell(60, 10, label)
	pdf.Cell(40, 10, fmt.Sprintf("%.2f", amount))
	pdf.Ln(6)
}

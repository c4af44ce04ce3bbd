package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"incometracker/config"
	"incometracker/database"
	"incometracker/middleware"
	"incometracker/models"
	"incometracker/service"
	"incometracker/view"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

var exportHeaders = []string{"ID", "Source", "Amount", "Date", "Payment Frequency", "Created At"}

func (h *ExportHandler) loadIncomes(c *gin.Context) ([]models.Income, bool) {
	userID := middleware.GetCurrentUserID(c)
	incomes, err := service.NewIncomeService(database.DB).GetIncomesByUserID(userID)
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "query incomes failed"))
		return nil, false
	}
	return incomes, true
}

func incomeRow(in models.Income) []string {
	return []string{
		fmt.Sprintf("%d", in.ID),
		in.Source,
		in.Amount.StringFixed(2),
		in.Date.Format(models.DateLayout),
		string(in.PaymentFrequency),
		in.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ExportCSV 导出收入为 CSV
// @Summary 导出收入为 CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file "CSV 文件"
// @Router /api/v1/export/incomes/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	incomes, ok := h.loadIncomes(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// BOM，Excel 打开时按 UTF-8 识别
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	rows := [][]string{exportHeaders}
	for _, in := range incomes {
		rows = append(rows, incomeRow(in))
	}
	summary := view.Summarize(incomes)
	rows = append(rows, []string{}, []string{"Total", "", summary.Total.StringFixed(2)})
	for _, src := range summary.Sources {
		rows = append(rows, []string{"", src.Source, src.Subtotal.StringFixed(2), src.Percentage.StringFixed(2) + "%"})
	}
	if err := writer.WriteAll(rows); err != nil {
		InternalError(c, "generate CSV failed")
		return
	}

	filename := fmt.Sprintf("incomes_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出收入为 Excel，第二个工作表为来源拆分
// @Summary 导出收入为 Excel
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "xlsx 文件"
// @Router /api/v1/export/incomes/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	incomes, ok := h.loadIncomes(c)
	if !ok {
		return
	}

	f, err := buildIncomeWorkbook(incomes)
	if err != nil {
		InternalError(c, "generate Excel failed")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("incomes_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "generate Excel failed")
		return
	}
}

const (
	incomeSheet    = "Incomes"
	breakdownSheet = "Breakdown"
)

func buildIncomeWorkbook(incomes []models.Income) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", incomeSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(breakdownSheet); err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"10B981"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	_ = f.SetColWidth(incomeSheet, "A", "A", 10)
	_ = f.SetColWidth(incomeSheet, "B", "B", 25)
	_ = f.SetColWidth(incomeSheet, "C", "E", 18)
	_ = f.SetColWidth(incomeSheet, "F", "F", 20)
	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		_ = f.SetCellValue(incomeSheet, cell, header)
		_ = f.SetCellStyle(incomeSheet, cell, cell, headerStyle)
	}
	for i, in := range incomes {
		row := i + 2
		amount, _ := in.Amount.Float64()
		_ = f.SetCellValue(incomeSheet, fmt.Sprintf("A%d", row), in.ID)
		_ = f.SetCellValue(incomeSheet, fmt.Sprintf("B%d", row), in.Source)
		_ = f.SetCellValue(incomeSheet, fmt.Sprintf("C%d", row), amount)
		_ = f.SetCellValue(incomeSheet, fmt.Sprintf("D%d", row), in.Date.Format(models.DateLayout))
		_ = f.SetCellValue(incomeSheet, fmt.Sprintf("E%d", row), string(in.PaymentFrequency))
		_ = f.SetCellValue(incomeSheet, fmt.Sprintf("F%d", row), in.CreatedAt.Format("2006-01-02 15:04:05"))
		_ = f.SetCellStyle(incomeSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)
	}

	summary := view.Summarize(incomes)
	total, _ := summary.Total.Float64()
	summaryRow := len(incomes) + 2
	_ = f.SetCellValue(incomeSheet, fmt.Sprintf("A%d", summaryRow), "Total")
	_ = f.MergeCell(incomeSheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("B%d", summaryRow))
	_ = f.SetCellValue(incomeSheet, fmt.Sprintf("C%d", summaryRow), total)
	_ = f.SetCellValue(incomeSheet, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("%d records", len(incomes)))
	_ = f.MergeCell(incomeSheet, fmt.Sprintf("D%d", summaryRow), fmt.Sprintf("F%d", summaryRow))
	_ = f.SetCellStyle(incomeSheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	_ = f.SetColWidth(breakdownSheet, "A", "A", 25)
	_ = f.SetColWidth(breakdownSheet, "B", "C", 15)
	for i, header := range []string{"Source", "Subtotal", "Percentage"} {
		cell := fmt.Sprintf("%c1", 'A'+i)
		_ = f.SetCellValue(breakdownSheet, cell, header)
		_ = f.SetCellStyle(breakdownSheet, cell, cell, headerStyle)
	}
	for i, src := range summary.Sources {
		row := i + 2
		sub, _ := src.Subtotal.Float64()
		_ = f.SetCellValue(breakdownSheet, fmt.Sprintf("A%d", row), src.Source)
		_ = f.SetCellValue(breakdownSheet, fmt.Sprintf("B%d", row), sub)
		_ = f.SetCellValue(breakdownSheet, fmt.Sprintf("C%d", row), src.Percentage.StringFixed(2)+"%")
		_ = f.SetCellStyle(breakdownSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), dataStyle)
	}

	return f, nil
}

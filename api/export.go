package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"moni/database"
	"moni/middleware"
	"moni/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRange 解析导出时间范围并查询记录
// 返回 (记录, 起止字符串, 错误消息)；错误消息非空时调用方应直接返回 400
func exportRange(c *gin.Context, userID uint) ([]models.Transaction, string, string, string) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")

	if startStr == "" || endStr == "" {
		return nil, "", "", "请提供开始日期和结束日期"
	}

	start, err := parseDateOnly(startStr)
	if err != nil {
		return nil, "", "", "开始日期格式错误，应为: 2006-01-02"
	}
	end, err := parseDateOnly(endStr)
	if err != nil {
		return nil, "", "", "结束日期格式错误，应为: 2006-01-02"
	}

	var txs []models.Transaction
	if err := database.DB.Preload("Category").
		Where("user_id = ? AND transaction_date >= ? AND transaction_date < ?",
			userID, start, end.AddDate(0, 0, 1)).
		Order("transaction_date DESC, id DESC").
		Find(&txs).Error; err != nil {
		return nil, "", "", "查询数据失败"
	}

	return txs, startStr, endStr, ""
}

// txTypeLabel 类型中文文案
func txTypeLabel(t string) string {
	if t == models.TypeIncome {
		return "收入"
	}
	return "支出"
}

// txCategoryName 分类名称，无分类返回空串
func txCategoryName(tx models.Transaction) string {
	if tx.Category != nil {
		return tx.Category.Name
	}
	return ""
}

// ExportCSV 导出收支记录为 CSV
// @Summary 导出收支记录为 CSV
// @Description 按日期范围导出当前用户的收支记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2025-01-01)"
// @Param end_date query string true "结束日期 (2025-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	txs, startStr, endStr, msg := exportRange(c, userID)
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "类型", "金额", "分类", "备注", "记账日期", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, tx := range txs {
		row := []string{
			fmt.Sprintf("%d", tx.ID),
			txTypeLabel(tx.Type),
			fmt.Sprintf("%.2f", tx.Amount),
			txCategoryName(tx),
			tx.Note,
			tx.TransactionDate.Format("2006-01-02"),
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", startStr, endStr)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出收支记录为 Excel
// @Summary 导出收支记录为 Excel
// @Description 按日期范围导出当前用户的收支记录为 xlsx 文件
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2025-01-01)"
// @Param end_date query string true "结束日期 (2025-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	txs, startStr, endStr, msg := exportRange(c, userID)
	if msg != "" {
		BadRequest(c, msg)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"ID", "类型", "金额", "分类", "备注", "记账日期", "创建时间"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, tx := range txs {
		values := []interface{}{
			tx.ID,
			txTypeLabel(tx.Type),
			tx.Amount,
			txCategoryName(tx),
			tx.Note,
			tx.TransactionDate.Format("2006-01-02"),
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

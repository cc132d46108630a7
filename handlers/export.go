package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportUsers streams the user ledger as an Excel sheet.
// GET /api/admin/export
func (a *API) ExportUsers(c *gin.Context) {
	users, err := a.store.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load users"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Users"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"No", "User ID", "Username", "Plan", "Premium Expires", "Daily Requests", "Last Request Date", "Registered"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	styleHeader, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetCellStyle(sheetName, "A1", "H1", styleHeader)

	row := 2
	for i, u := range users {
		expires := ""
		if u.PremiumExpires != nil {
			expires = u.PremiumExpires.Format("2006-01-02 15:04")
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), u.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), u.Username)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), u.Plan)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), expires)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), u.DailyRequests)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), u.LastRequestDate)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), u.CreatedAt.Format("2006-01-02"))
		row++
	}

	f.SetColWidth(sheetName, "A", "A", 5)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 20)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "G", 18)
	f.SetColWidth(sheetName, "H", "H", 12)

	fileName := fmt.Sprintf("users_%s.xlsx", time.Now().Format("20060102"))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate excel"})
	}
}

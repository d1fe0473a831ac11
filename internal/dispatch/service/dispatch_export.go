package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var bookingExportHeaders = []string{
	"Request ID", "Status", "Priority", "Customer", "Phone", "Address",
	"Service", "Preferred Date", "Preferred Time", "Scheduled Date",
	"Scheduled Time", "Technician", "Issue", "Notes", "Created At",
}

// ExportBookings renders the current (filtered) dispatch board as an xlsx
// workbook.
func (s *DispatchService) ExportBookings(ctx context.Context, status, dateStr, techID string) (*excelize.File, string, error) {
	rows, err := s.ListBookings(ctx, status, dateStr, techID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Dispatch Board"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range bookingExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	dateCell := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(dateLayout)
	}
	strCell := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	for rowIdx, b := range rows {
		row := rowIdx + 2
		address := b.Address
		if b.City != "" {
			address = fmt.Sprintf("%s, %s %s %s", b.Address, b.City, b.State, b.Zip)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.RequestID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Status)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.Priority)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.CustomerName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.CustomerPhone)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), address)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), strCell(b.ServiceName))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), dateCell(b.PreferredDate))
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), b.PreferredTime)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), dateCell(b.ScheduledDate))
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), b.ScheduledTime)
		f.SetCellValue(sheet, fmt.Sprintf("L%d", row), strCell(b.TechName))
		f.SetCellValue(sheet, fmt.Sprintf("M%d", row), b.IssueDescription)
		f.SetCellValue(sheet, fmt.Sprintf("N%d", row), b.Notes)
		f.SetCellValue(sheet, fmt.Sprintf("O%d", row), b.CreatedAt.Format("2006-01-02 15:04"))
	}

	filename := fmt.Sprintf("dispatch_board_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, filename, nil
}

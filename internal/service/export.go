package service

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{"ID", "Item", "Booker", "Email", "Start", "End", "Status"}

var statusFill = map[models.BookingStatus]string{
	models.StatusWaiting:  "#FFEB9C",
	models.StatusApproved: "#C6EFCE",
	models.StatusRejected: "#FFC7CE",
}

// ExportOwner renders the host's bookings for the state as an XLSX workbook.
func (s *BookingService) ExportOwner(ctx context.Context, hostID int64, state models.BookingState) ([]byte, error) {
	bookings, err := s.FindByOwner(ctx, hostID, state)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	styles := make(map[models.BookingStatus]int, len(statusFill))
	for status, color := range statusFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[status] = style
		}
	}

	for i, b := range bookings {
		row := i + 2
		values := []any{
			b.ID,
			b.Item.Name,
			b.Booker.Name,
			b.Booker.Email,
			b.Start.Format(models.DateTimeLayout),
			b.End.Format(models.DateTimeLayout),
			string(b.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
		if style, ok := styles[b.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(len(values), row)
			_ = f.SetCellStyle(exportSheet, cell, cell, style)
		}
	}

	// Настраиваем ширину колонок
	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "D", 25)
	_ = f.SetColWidth(exportSheet, "E", "F", 20)
	_ = f.SetColWidth(exportSheet, "G", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	s.logger.Info().Int64("host_id", hostID).Str("state", string(state)).Int("rows", len(bookings)).Msg("bookings exported")
	return buf.Bytes(), nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

// ExportOwnerBookings renders every booking of the owner's items matching state as an xlsx workbook.
func (s *BookingService) ExportOwnerBookings(ctx context.Context, ownerID int64, state models.State) ([]byte, error) {
	if _, err := findUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	bookings, err := s.repo.FindBookings(ctx, models.BookingFilter{OwnerID: ownerID, State: state, Now: s.now()}, models.Unpaged)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(s.sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if s.sheetName != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(s.sheetName, cell, title)
		_ = f.SetCellStyle(s.sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := []interface{}{
			b.ID,
			b.ItemName,
			b.BookerName,
			b.Start.UTC().Format(time.RFC3339),
			b.End.UTC().Format(time.RFC3339),
			string(b.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s.sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(s.sheetName, "A", "A", 8)
	_ = f.SetColWidth(s.sheetName, "B", "C", 25)
	_ = f.SetColWidth(s.sheetName, "D", "F", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	s.logger.Info().Int64("owner_id", ownerID).Int("rows", len(bookings)).Msg("Bookings exported")
	return buf.Bytes(), nil
}

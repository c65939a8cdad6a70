package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/krishisakhi/backend/internal/domain"
)

const exportSheet = "Activities"

var exportHeaders = []string{"Date", "Farm", "Activity", "Description", "Crop", "Quantity", "Cost", "Notes"}

var exportWidths = []float64{12, 20, 16, 36, 14, 10, 10, 30}

// ExportActivities renders the farmer's activities (optionally one farm's) as
// an XLSX workbook, newest first, with a cost total row.
func (s *RecordService) ExportActivities(ctx context.Context, farmerID int64, farmID *int64) ([]byte, error) {
	list, err := s.ListActivities(ctx, farmerID, farmID)
	if err != nil {
		return nil, err
	}
	return renderActivities(list)
}

func renderActivities(list []*domain.ActivityWithFarmName) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2F0D9"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range exportHeaders {
		if err := setCell(f, i+1, 1, header); err != nil {
			return nil, err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(exportSheet, col, col, exportWidths[i]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetCellStyle(exportSheet, "A1", "H1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	total := 0.0
	for i, a := range list {
		row := i + 2
		values := []any{
			a.Date.Format(domain.DateLayout),
			a.FarmName,
			a.ActivityType,
			a.Description,
			derefString(a.CropName),
			derefFloat(a.Quantity),
			derefFloat(a.Cost),
			derefString(a.Notes),
		}
		for col, v := range values {
			if v == nil || v == "" {
				continue
			}
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, err
			}
		}
		if a.Cost != nil {
			total += *a.Cost
		}
	}

	totalRow := len(list) + 2
	if err := setCell(f, 6, totalRow, "Total"); err != nil {
		return nil, err
	}
	if err := setCell(f, 7, totalRow, total); err != nil {
		return nil, err
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellValue(exportSheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

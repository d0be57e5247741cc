// Package export turns report collections into the spreadsheet download
// offered on the reports screen.
package export

import (
	"fmt"
	"time"

	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only sheet in the workbook
const SheetName = "Reports"

// ContentType of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header is the first row of the exported sheet
var Header = []string{
	"ชื่อผู้ป่วย",
	"ระดับน้ำตาล",
	"สถานะน้ำตาล",
	"ความดัน (ซิสโตลิก/ไดแอสโตลิก)",
	"สถานะความดัน",
	"ช่วงเวลาที่วัด",
	"วันที่บันทึก",
}

var columnWidths = []float64{25, 14, 14, 30, 14, 16, 20}

// File is a generated export ready for download
type File struct {
	Name string
	Data []byte
	Rows int
}

// FileName returns the download name for a window
func FileName(w window.Window) string {
	return fmt.Sprintf("Reports_%s_to_%s.xlsx", w.StartParam(), w.EndParam())
}

// Build flattens reports and serializes them as an xlsx workbook
func Build(reports []model.Report, w window.Window, loc *time.Location) (*File, error) {
	rows := BuildRows(reports, loc)
	data, err := Workbook(rows)
	if err != nil {
		return nil, err
	}
	return &File{
		Name: FileName(w),
		Data: data,
		Rows: len(rows),
	}, nil
}

// Workbook writes rows below the header into a single-sheet workbook
func Workbook(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastHeaderCell, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeaderCell, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := row.cells()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

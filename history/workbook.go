/*
Package history renders the export history as an XLSX workbook.

LAYOUT:
  One sheet, "Exports", with a bold header row and one row per record,
  newest first (the order the store returns). Frozen header, auto filter.

USAGE:
  records, _ := store.ListExports(ctx, 0)
  var buf bytes.Buffer
  if err := history.Write(&buf, records); err != nil { ... }
*/
package history

import (
	"fmt"
	"io"

	"github.com/warp/saft-export/saft"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet of the workbook.
const SheetName = "Exports"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"ID", "Created at", "Document type", "Period", "Year", "Month", "Day",
	"Only billing", "Status", "Message",
}

// Workbook builds a workbook with one row per record. The caller closes it.
func Workbook(records []saft.ExportRecord) (*excelize.File, error) {
	wb := excelize.NewFile()

	if err := wb.SetSheetName("Sheet1", SheetName); err != nil {
		wb.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeHeader(wb); err != nil {
		wb.Close()
		return nil, err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			wb.Close()
			return nil, err
		}
		row := []any{
			rec.ID,
			rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			rec.DocumentType.Label(),
			rec.Period.Label(),
			rec.Year,
			rec.Month,
			rec.Day,
			yesNo(rec.OnlyBilling),
			string(rec.Status),
			rec.Message,
		}
		if err := wb.SetSheetRow(SheetName, cell, &row); err != nil {
			wb.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	if len(records) > 0 {
		ref := fmt.Sprintf("A1:%s%d", last, len(records)+1)
		if err := wb.AutoFilter(SheetName, ref, nil); err != nil {
			wb.Close()
			return nil, fmt.Errorf("failed to set auto filter: %w", err)
		}
	}

	if err := wb.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		wb.Close()
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	return wb, nil
}

// Write renders the workbook for records directly to w.
func Write(w io.Writer, records []saft.ExportRecord) error {
	wb, err := Workbook(records)
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(wb *excelize.File) error {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := wb.SetSheetRow(SheetName, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := wb.SetCellStyle(SheetName, "A1", last+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := wb.SetColWidth(SheetName, "A", "A", 38); err != nil {
		return err
	}
	return wb.SetColWidth(SheetName, "J", "J", 48)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

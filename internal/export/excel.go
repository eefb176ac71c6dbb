package export

import (
	"fmt"
	"log"
	"time"

	"PutScreener/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	runSheet     = "Run"
)

// ExcelExporter writes one row per ticker to an .xlsx workbook. An existing
// file at Path is overwritten.
type ExcelExporter struct {
	path string
}

// NewExcelExporter creates an exporter targeting path.
func NewExcelExporter(path string) *ExcelExporter {
	return &ExcelExporter{path: path}
}

func (e *ExcelExporter) Path() string { return e.path }

// Export writes the Results sheet (header + records, nulls as empty cells)
// and a Run sheet with the run metadata.
func (e *ExcelExporter) Export(rs *model.ResultSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(model.RecordColumns))
	for i, c := range model.RecordColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(resultsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, rec := range rs.Records {
		row := make([]interface{}, 0, len(model.RecordColumns))
		row = append(row, rec.Symbol)
		for _, v := range rec.Values() {
			if v.Valid {
				row = append(row, v.Float64)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %s: %w", rec.Symbol, err)
		}
	}
	if err := f.SetColWidth(resultsSheet, "A", "I", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.NewSheet(runSheet); err != nil {
		return fmt.Errorf("create run sheet: %w", err)
	}
	meta := [][]interface{}{
		{"Run ID", rs.RunID},
		{"Generated At", rs.GeneratedAt.Format(time.RFC3339)},
		{"Tickers", len(rs.Records)},
	}
	for i, m := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(runSheet, cell, &m); err != nil {
			return fmt.Errorf("write run metadata: %w", err)
		}
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save %s: %w", e.path, err)
	}
	log.Printf("[INFO] results written to %s", e.path)
	return nil
}

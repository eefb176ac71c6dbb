package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"PutScreener/internal/model"

	"github.com/xuri/excelize/v2"
)

func sampleResultSet() *model.ResultSet {
	metrics := &model.PriceMetrics{CurrentPrice: 110, High52w: 120, Low52w: 90, DistanceFromLow: 200.0 / 9.0}
	quote := &model.OptionQuote{Strike: 100, Premium: 5, IRR: 0.05, EffectiveReturn: 0.05 / 0.15}
	return &model.ResultSet{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		Records: []model.TickerRecord{
			model.NewTickerRecord("AAPL", metrics, quote),
			model.EmptyRecord("MSFT", model.StatusPriceUnavailable),
			model.NewTickerRecord("GOOG", metrics, nil),
		},
	}
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("read %s!%s: %v", sheet, cell, err)
	}
	return v
}

func TestExcelExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	e := NewExcelExporter(path)
	if err := e.Export(sampleResultSet()); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	for i, col := range model.RecordColumns {
		if rows[0][i] != col {
			t.Errorf("header %d: expected %q, got %q", i, col, rows[0][i])
		}
	}

	checks := map[string]string{
		"A2": "AAPL", "B2": "110", "E2": "22.22", "F2": "100", "H2": "0.05", "I2": "0.3333",
		"A3": "MSFT", "B3": "", "F3": "", "I3": "",
		"A4": "GOOG", "C4": "120", "F4": "", "G4": "",
	}
	for cell, want := range checks {
		if got := raw(t, f, resultsSheet, cell); got != want {
			t.Errorf("%s: expected %q, got %q", cell, want, got)
		}
	}
	styleID, err := f.GetCellStyle(resultsSheet, "A1")
	if err != nil {
		t.Fatalf("header style: %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style.Font == nil || !style.Font.Bold {
		t.Errorf("expected bold header row, got %+v (%v)", style, err)
	}
	if got := raw(t, f, runSheet, "B1"); got != "run-1" {
		t.Errorf("expected run id in Run sheet, got %q", got)
	}
}

func TestExcelExporter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewExcelExporter(path).Export(sampleResultSet()); err != nil {
		t.Fatalf("export over existing file: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("expected a valid workbook after overwrite: %v", err)
	}
	f.Close()
}

func TestExcelExporter_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.xlsx")
	if err := NewExcelExporter(path).Export(sampleResultSet()); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

func TestNoopExporter(t *testing.T) {
	var e Exporter = NewNoopExporter()
	if err := e.Export(sampleResultSet()); err != nil || e.Path() != "" {
		t.Errorf("noop exporter should do nothing, got %v %q", err, e.Path())
	}
}

// Package fixtures builds small thematic ETF workbooks for tests.
package fixtures

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SummaryRows is a Summary sheet in the exporter's layout: a title row, the
// label row, four body rows (one without a theme) and two footer rows.
func SummaryRows() [][]any {
	return [][]any{
		{"Thematic ETF Summary"},
		{"테마", "국가", "AUM", "시장 점유율", "순유입"},
		{"AI", "미국", 1200.5, "40%", 35},
		{"Battery", "한국", "800", "25%", "-12.5"},
		{"", "일본", 10, "1%", 1},
		{"Robotics", "일본", "300", "N/A", "(4)"},
		{"Total", "", 2310.5, "100%", 19.5},
		{"Source: exporter"},
	}
}

// RAWRows is a RAW sheet with a duplicated ticker and a blank row.
func RAWRows() [][]any {
	return [][]any{
		{"티커", "ETF명", "테마", "AUM", "1년 수익률", "AUM 순유입"},
		{"BOTZ", "Global X Robotics", "Robotics", "2,500", "12.34%", "150"},
		{"LIT", "Global X Lithium", "Battery", "3,100", "-8.5%", "-40"},
		{"AIQ", "Global X AI", "AI", "1,800", "1,234.5%", "220"},
		{},
		{"LIT", "Duplicate Lithium", "Battery", "1", "99%", "1"},
		{"ROBO", "Robo Global", "Robotics", "1,100", "N/A", "n/a"},
	}
}

// FractionRAWRows stores one-year returns as numeric fractions, the way a
// workbook written by a spreadsheet program holds percent cells.
func FractionRAWRows() [][]any {
	return [][]any{
		{"티커", "ETF명", "테마", "AUM", "1년 수익률", "AUM 순유입"},
		{"BOTZ", "Global X Robotics", "Robotics", 2500, 0.1234, 150},
		{"LIT", "Global X Lithium", "Battery", 3100, -0.085, -40},
	}
}

// FractionWorkbook is a workbook over FractionRAWRows whose return column is
// displayed with a whole-percent format, so 0.1234 shows as "12%".
func FractionWorkbook(t testing.TB) []byte {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(Workbook(t, SummaryRows(), FractionRAWRows())))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	if err != nil {
		t.Fatalf("new percent style: %v", err)
	}
	if err := f.SetCellStyle("RAW", "E2", "E3", style); err != nil {
		t.Fatalf("style return column: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WithoutColumn returns a copy of rows without the column whose label in
// rows[headerRow] is label.
func WithoutColumn(rows [][]any, headerRow int, label string) [][]any {
	col := -1
	for i, v := range rows[headerRow] {
		if s, ok := v.(string); ok && s == label {
			col = i
		}
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		if col < 0 || col >= len(row) {
			out[i] = row
			continue
		}
		out[i] = append(append([]any{}, row[:col]...), row[col+1:]...)
	}
	return out
}

// Workbook builds an in-memory workbook with the given sheets. A nil sheet is
// left out.
func Workbook(t testing.TB, summary, raw [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{"Summary", summary},
		{"RAW", raw},
	} {
		if sheet.rows == nil {
			continue
		}
		if _, err := f.NewSheet(sheet.name); err != nil {
			t.Fatalf("new sheet %s: %v", sheet.name, err)
		}
		for i, row := range sheet.rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			r := row
			if err := f.SetSheetRow(sheet.name, cell, &r); err != nil {
				t.Fatalf("write %s row %d: %v", sheet.name, i, err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteWorkbook writes a workbook named name into dir and returns its path.
func WriteWorkbook(t testing.TB, dir, name string, summary, raw [][]any) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Workbook(t, summary, raw), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

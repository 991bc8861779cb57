package pipeline

import (
	"fmt"
	"strings"

	"etf-dashboard/internal/models"
)

type ETFResult struct {
	Records       []models.ETFRecord
	Columns       Columns
	Duplicates    int
	CoercedToZero int
}

// ParseETFs reads the "RAW" sheet. Row 0 is the header. Blank rows are
// skipped and a repeated ticker keeps its first occurrence; a cell that fails
// numeric coercion becomes zero and never drops its row.
func ParseETFs(rows [][]string, schema Schema, mode ReturnMode) (*ETFResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("raw: %w", ErrEmptySheet)
	}

	cols := resolve(rows[0], schema.etfFields())
	required := []struct {
		field   string
		aliases []string
	}{
		{colTicker, schema.Ticker},
		{colTheme, schema.Theme},
		{colAUM, schema.AUM},
		{colReturn1Y, schema.Return1Y},
	}
	for _, req := range required {
		if !cols.Has(req.field) {
			return nil, fmt.Errorf("raw: %s (%s): %w", req.field, strings.Join(req.aliases, "/"), ErrColumnMissing)
		}
	}

	result := &ETFResult{
		Records: make([]models.ETFRecord, 0, len(rows)-1),
		Columns: cols,
	}
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		ticker := cols.Cell(row, colTicker)
		if ticker != "" {
			if _, dup := seen[ticker]; dup {
				result.Duplicates++
				continue
			}
			seen[ticker] = struct{}{}
		}

		rec := models.ETFRecord{
			Ticker: ticker,
			Name:   cols.Cell(row, colName),
			Theme:  cols.Cell(row, colTheme),
		}

		var fellBack bool
		rec.AUM, fellBack = parseNumber(cols.Cell(row, colAUM))
		result.count(fellBack)

		rec.OneYearReturn, fellBack = CoerceReturn(cols.Cell(row, colReturn1Y), mode)
		result.count(fellBack)
		rec.OneYearReturnLabel = FormatPercent(rec.OneYearReturn)

		if cols.Has(colAUMNetInflow) {
			v, fb := parseNumber(cols.Cell(row, colAUMNetInflow))
			result.count(fb)
			rec.AUMNetInflow = &v
		}

		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func (r *ETFResult) count(fellBack bool) {
	if fellBack {
		r.CoercedToZero++
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

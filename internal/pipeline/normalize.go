package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"etf-dashboard/internal/models"
)

var (
	ErrEmptySheet    = errors.New("sheet has no rows")
	ErrColumnMissing = errors.New("required column missing")
)

// SummaryResult is the cleaned "Summary" sheet.
type SummaryResult struct {
	Records       []models.SummaryRecord
	Columns       Columns
	Dropped       int
	CoercedToZero int
}

// NormalizeSummary cleans the "Summary" sheet. The sheet's first row is the
// reader's own header and is discarded; the row after it carries the real
// column labels. The last footerRows body rows are dropped, then every row
// without a theme.
func NormalizeSummary(rows [][]string, schema Schema, footerRows int) (*SummaryResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("summary: %w", ErrEmptySheet)
	}

	header := rows[1]
	body := rows[2:]
	if footerRows > 0 {
		if footerRows >= len(body) {
			body = nil
		} else {
			body = body[:len(body)-footerRows]
		}
	}

	cols := resolve(header, schema.summaryFields())
	if !cols.Has(colTheme) {
		return nil, fmt.Errorf("summary: theme (%s): %w", strings.Join(schema.Theme, "/"), ErrColumnMissing)
	}

	result := &SummaryResult{
		Records: make([]models.SummaryRecord, 0, len(body)),
		Columns: cols,
	}

	for _, row := range body {
		theme := cols.Cell(row, colTheme)
		if theme == "" {
			result.Dropped++
			continue
		}

		rec := models.SummaryRecord{
			Theme:   theme,
			Country: cols.Cell(row, colCountry),
		}

		var fellBack bool
		rec.AUM, fellBack = parseNumber(cols.Cell(row, colAUM))
		result.count(fellBack)

		if cols.Has(colMarketShare) {
			v, fb := parseNumber(cols.Cell(row, colMarketShare))
			result.count(fb)
			rec.MarketShare = &v
		}
		if cols.Has(colNetInflow) {
			v, fb := parseNumber(cols.Cell(row, colNetInflow))
			result.count(fb)
			rec.NetInflow = &v
		}

		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func (r *SummaryResult) count(fellBack bool) {
	if fellBack {
		r.CoercedToZero++
	}
}

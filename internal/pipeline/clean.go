package pipeline

import (
	"fmt"

	"etf-dashboard/internal/models"
)

// Options controls the cleaning pass.
type Options struct {
	Schema     Schema
	FooterRows int
	ReturnMode ReturnMode
}

func DefaultOptions() Options {
	return Options{
		Schema:     DefaultSchema(),
		FooterRows: 2,
		ReturnMode: ReturnPercent,
	}
}

// Clean turns both raw sheets into a Dataset. Absent optional columns produce
// warnings, not errors.
func Clean(raw *models.RawTables, opts Options) (*models.Dataset, error) {
	summary, err := NormalizeSummary(raw.Summary, opts.Schema, opts.FooterRows)
	if err != nil {
		return nil, err
	}

	etfs, err := ParseETFs(raw.RAW, opts.Schema, opts.ReturnMode)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{
		Summary:         summary.Records,
		ETFs:            etfs.Records,
		HasNetInflow:    summary.Columns.Has(colNetInflow),
		HasAUMNetInflow: etfs.Columns.Has(colAUMNetInflow),
		CoercedToZero:   summary.CoercedToZero + etfs.CoercedToZero,
		Warnings:        []models.Warning{},
		Source:          raw.Source,
	}

	if !ds.HasNetInflow {
		ds.Warnings = append(ds.Warnings, models.Warning{
			Code:    models.WarnNetInflowMissing,
			Message: "Summary sheet has no net inflow column; the inflow by theme chart is skipped.",
		})
	}
	if !ds.HasAUMNetInflow {
		ds.Warnings = append(ds.Warnings, models.Warning{
			Code:    models.WarnAUMNetInflowMissing,
			Message: "RAW sheet has no AUM net inflow column; the inflow ranking is skipped.",
		})
	}
	if ds.CoercedToZero > 0 {
		ds.Warnings = append(ds.Warnings, models.Warning{
			Code:    models.WarnCoercedToZero,
			Message: fmt.Sprintf("%d numeric cells could not be read and were set to 0.", ds.CoercedToZero),
		})
	}

	return ds, nil
}

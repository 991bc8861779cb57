package pipeline

import (
	"etf-dashboard/internal/models"
)

// Field names used in chart rows. They double as axis titles.
const (
	FieldTheme       = "Theme"
	FieldCountry     = "Country"
	FieldAUM         = "AUM"
	FieldMarketShare = "Market Share"
	FieldNetInflow   = "Net Inflow"
	FieldTicker      = "Ticker"
	FieldName        = "ETF Name"
	FieldReturn      = "1Y Return"
	FieldReturnLabel = "1Y Return (%)"
	FieldAUMInflow   = "AUM Net Inflow"
	FieldRank        = "Rank"
)

const (
	ViewThemeAUM      = "theme-aum"
	ViewThemeInflow   = "theme-inflow"
	ViewCountryShare  = "country-share"
	ViewReturnScatter = "return-scatter"
	ViewReturnRank    = "return-rank"
	ViewInflowRank    = "inflow-rank"
)

func ThemeAUMView(summary []models.SummaryRecord) models.ChartView {
	rows := make([]map[string]any, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, map[string]any{
			FieldTheme:   s.Theme,
			FieldCountry: s.Country,
			FieldAUM:     s.AUM,
		})
	}
	return models.ChartView{
		ID:      ViewThemeAUM,
		Title:   "AUM by theme",
		Mark:    models.MarkBar,
		X:       FieldTheme,
		Y:       FieldAUM,
		Color:   FieldCountry,
		Tooltip: []string{FieldTheme, FieldCountry, FieldAUM},
		Rows:    rows,
	}
}

// ThemeInflowView is empty and carries a warning when the Summary sheet has
// no net inflow column.
func ThemeInflowView(summary []models.SummaryRecord, hasNetInflow bool) models.ChartView {
	view := models.ChartView{
		ID:      ViewThemeInflow,
		Title:   "Net inflow by theme",
		Mark:    models.MarkBar,
		X:       FieldTheme,
		Y:       FieldNetInflow,
		Color:   FieldCountry,
		Tooltip: []string{FieldTheme, FieldCountry, FieldNetInflow},
		Rows:    []map[string]any{},
	}
	if !hasNetInflow {
		view.Warning = &models.Warning{
			Code:    models.WarnNetInflowMissing,
			Message: "No net inflow column in the Summary sheet.",
		}
		return view
	}

	for _, s := range summary {
		var inflow float64
		if s.NetInflow != nil {
			inflow = *s.NetInflow
		}
		view.Rows = append(view.Rows, map[string]any{
			FieldTheme:     s.Theme,
			FieldCountry:   s.Country,
			FieldNetInflow: inflow,
		})
	}
	return view
}

// CountryShares sums AUM and market share per country in first-seen order.
func CountryShares(summary []models.SummaryRecord) []models.CountryShare {
	index := make(map[string]int)
	shares := make([]models.CountryShare, 0)
	for _, s := range summary {
		if s.Country == "" {
			continue
		}
		i, ok := index[s.Country]
		if !ok {
			i = len(shares)
			index[s.Country] = i
			shares = append(shares, models.CountryShare{Country: s.Country})
		}
		shares[i].AUM += s.AUM
		if s.MarketShare != nil {
			shares[i].MarketShare += *s.MarketShare
		}
	}
	return shares
}

func CountryShareView(summary []models.SummaryRecord) models.ChartView {
	shares := CountryShares(summary)
	rows := make([]map[string]any, 0, len(shares))
	for _, c := range shares {
		rows = append(rows, map[string]any{
			FieldCountry:     c.Country,
			FieldAUM:         c.AUM,
			FieldMarketShare: c.MarketShare,
		})
	}
	return models.ChartView{
		ID:      ViewCountryShare,
		Title:   "Market share by country",
		Mark:    models.MarkChoropleth,
		X:       FieldCountry,
		Y:       FieldAUM,
		Color:   FieldMarketShare,
		Tooltip: []string{FieldCountry, FieldAUM, FieldMarketShare},
		Rows:    rows,
	}
}

func ReturnScatterView(etfs []models.ETFRecord) models.ChartView {
	rows := make([]map[string]any, 0, len(etfs))
	for _, e := range etfs {
		rows = append(rows, map[string]any{
			FieldTicker:      e.Ticker,
			FieldName:        e.Name,
			FieldTheme:       e.Theme,
			FieldAUM:         e.AUM,
			FieldReturn:      e.OneYearReturn,
			FieldReturnLabel: e.OneYearReturnLabel,
		})
	}
	return models.ChartView{
		ID:      ViewReturnScatter,
		Title:   "1Y return vs AUM",
		Mark:    models.MarkCircle,
		X:       FieldAUM,
		Y:       FieldReturn,
		Color:   FieldTheme,
		Tooltip: []string{FieldTicker, FieldName, FieldAUM, FieldReturnLabel},
		Rows:    rows,
	}
}

// ReturnRankView plots an already ranked window; lo is the rank of ranked[0].
func ReturnRankView(ranked []models.ETFRecord, lo int) models.ChartView {
	rows := make([]map[string]any, 0, len(ranked))
	for i, e := range ranked {
		rows = append(rows, map[string]any{
			FieldRank:        lo + i,
			FieldTicker:      e.Ticker,
			FieldName:        e.Name,
			FieldTheme:       e.Theme,
			FieldReturn:      e.OneYearReturn,
			FieldReturnLabel: e.OneYearReturnLabel,
		})
	}
	return models.ChartView{
		ID:      ViewReturnRank,
		Title:   "1Y return ranking",
		Mark:    models.MarkBar,
		X:       FieldTicker,
		Y:       FieldReturn,
		Color:   FieldTheme,
		Tooltip: []string{FieldRank, FieldTicker, FieldName, FieldReturnLabel},
		Rows:    rows,
	}
}

// InflowRankView is empty and carries a warning when the RAW sheet has no
// AUM net inflow column.
func InflowRankView(ranked []models.ETFRecord, lo int, hasAUMNetInflow bool) models.ChartView {
	view := models.ChartView{
		ID:      ViewInflowRank,
		Title:   "AUM net inflow ranking",
		Mark:    models.MarkBar,
		X:       FieldTicker,
		Y:       FieldAUMInflow,
		Color:   FieldTheme,
		Tooltip: []string{FieldRank, FieldTicker, FieldName, FieldAUMInflow},
		Rows:    []map[string]any{},
	}
	if !hasAUMNetInflow {
		view.Warning = &models.Warning{
			Code:    models.WarnAUMNetInflowMissing,
			Message: "No AUM net inflow column in the RAW sheet.",
		}
		return view
	}

	for i, e := range ranked {
		view.Rows = append(view.Rows, map[string]any{
			FieldRank:      lo + i,
			FieldTicker:    e.Ticker,
			FieldName:      e.Name,
			FieldTheme:     e.Theme,
			FieldAUMInflow: e.InflowOrZero(),
		})
	}
	return view
}

package pipeline

import (
	"strings"
)

// Schema maps the logical fields of both sheets to the header labels that may
// carry them. Labels are compared case-insensitively after trimming.
type Schema struct {
	Theme        []string `yaml:"theme"`
	Country      []string `yaml:"country"`
	AUM          []string `yaml:"aum"`
	MarketShare  []string `yaml:"market_share"`
	NetInflow    []string `yaml:"net_inflow"`
	Ticker       []string `yaml:"ticker"`
	Name         []string `yaml:"name"`
	Return1Y     []string `yaml:"one_year_return"`
	AUMNetInflow []string `yaml:"aum_net_inflow"`
}

func DefaultSchema() Schema {
	return Schema{
		Theme:        []string{"테마", "Theme"},
		Country:      []string{"국가", "Country"},
		AUM:          []string{"AUM", "AUM(백만$)", "AUM ($mn)"},
		MarketShare:  []string{"시장 점유율", "점유율", "Market Share"},
		NetInflow:    []string{"순유입", "자금 순유입", "Net Inflow"},
		Ticker:       []string{"티커", "Ticker"},
		Name:         []string{"ETF명", "Name", "ETF Name"},
		Return1Y:     []string{"1년 수익률", "1Y Return", "One-Year Return"},
		AUMNetInflow: []string{"AUM 순유입", "AUM Net Inflow", "AUM 자금 순유입"},
	}
}

// Merge overlays the non-empty alias lists of other onto s.
func (s Schema) Merge(other Schema) Schema {
	pick := func(base, over []string) []string {
		if len(over) > 0 {
			return over
		}
		return base
	}
	return Schema{
		Theme:        pick(s.Theme, other.Theme),
		Country:      pick(s.Country, other.Country),
		AUM:          pick(s.AUM, other.AUM),
		MarketShare:  pick(s.MarketShare, other.MarketShare),
		NetInflow:    pick(s.NetInflow, other.NetInflow),
		Ticker:       pick(s.Ticker, other.Ticker),
		Name:         pick(s.Name, other.Name),
		Return1Y:     pick(s.Return1Y, other.Return1Y),
		AUMNetInflow: pick(s.AUMNetInflow, other.AUMNetInflow),
	}
}

// Columns is a header row resolved to positions. A missing field maps to -1.
type Columns map[string]int

const (
	colTheme        = "theme"
	colCountry      = "country"
	colAUM          = "aum"
	colMarketShare  = "market_share"
	colNetInflow    = "net_inflow"
	colTicker       = "ticker"
	colName         = "name"
	colReturn1Y     = "one_year_return"
	colAUMNetInflow = "aum_net_inflow"
)

// Has reports whether the field was found in the header.
func (c Columns) Has(field string) bool {
	idx, ok := c[field]
	return ok && idx >= 0
}

// Cell returns the trimmed cell for field, or "" when the field is absent or
// the row is shorter than the header (trailing blanks are not stored).
func (c Columns) Cell(row []string, field string) string {
	idx, ok := c[field]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func resolve(header []string, fields map[string][]string) Columns {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeLabel(h)
	}

	cols := make(Columns, len(fields))
	for field, aliases := range fields {
		cols[field] = -1
	alias:
		for _, a := range aliases {
			want := normalizeLabel(a)
			for i, h := range normalized {
				if h != "" && h == want {
					cols[field] = i
					break alias
				}
			}
		}
	}
	return cols
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (s Schema) summaryFields() map[string][]string {
	return map[string][]string{
		colTheme:       s.Theme,
		colCountry:     s.Country,
		colAUM:         s.AUM,
		colMarketShare: s.MarketShare,
		colNetInflow:   s.NetInflow,
	}
}

func (s Schema) etfFields() map[string][]string {
	return map[string][]string{
		colTicker:       s.Ticker,
		colName:         s.Name,
		colTheme:        s.Theme,
		colAUM:          s.AUM,
		colReturn1Y:     s.Return1Y,
		colAUMNetInflow: s.AUMNetInflow,
	}
}

package models

type Mark string

const (
	MarkBar        Mark = "bar"
	MarkCircle     Mark = "circle"
	MarkChoropleth Mark = "geoshape"
)

// ChartView is a renderer-agnostic description of one chart: the rows to plot
// and which fields go on which encoding channel.
type ChartView struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Mark    Mark             `json:"mark"`
	X       string           `json:"x"`
	Y       string           `json:"y"`
	Color   string           `json:"color,omitempty"`
	Tooltip []string         `json:"tooltip,omitempty"`
	Rows    []map[string]any `json:"rows"`
	Warning *Warning         `json:"warning,omitempty"`
}

// Empty reports whether the view has nothing to plot.
func (v ChartView) Empty() bool {
	return len(v.Rows) == 0
}

type CountryShare struct {
	Country     string  `json:"country"`
	AUM         float64 `json:"aum"`
	MarketShare float64 `json:"market_share"`
}

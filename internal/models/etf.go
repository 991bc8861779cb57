package models

// RawTables holds the two workbook sheets exactly as read, one []string per row.
type RawTables struct {
	Summary [][]string
	RAW     [][]string
	Source  string
}

type SummaryRecord struct {
	Theme       string   `json:"theme"`
	Country     string   `json:"country"`
	AUM         float64  `json:"aum"`
	MarketShare *float64 `json:"market_share,omitempty"`
	NetInflow   *float64 `json:"net_inflow,omitempty"`
}

type ETFRecord struct {
	Ticker             string   `json:"ticker"`
	Name               string   `json:"name"`
	Theme              string   `json:"theme"`
	AUM                float64  `json:"aum"`
	OneYearReturn      float64  `json:"one_year_return"`
	OneYearReturnLabel string   `json:"one_year_return_label"`
	AUMNetInflow       *float64 `json:"aum_net_inflow,omitempty"`
}

// InflowOrZero returns the AUM net inflow, treating an absent value as zero.
func (e ETFRecord) InflowOrZero() float64 {
	if e.AUMNetInflow == nil {
		return 0
	}
	return *e.AUMNetInflow
}

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	WarnNetInflowMissing    = "net_inflow_missing"
	WarnAUMNetInflowMissing = "aum_net_inflow_missing"
	WarnCoercedToZero       = "coerced_to_zero"
	WarnFileMissing         = "file_missing"
)

// Dataset is the cleaned result of one pipeline pass.
type Dataset struct {
	Summary         []SummaryRecord `json:"summary"`
	ETFs            []ETFRecord     `json:"etfs"`
	HasNetInflow    bool            `json:"has_net_inflow"`
	HasAUMNetInflow bool            `json:"has_aum_net_inflow"`
	CoercedToZero   int             `json:"coerced_to_zero"`
	Warnings        []Warning       `json:"warnings"`
	Source          string          `json:"source"`
}

type RankKey string

const (
	RankByReturn RankKey = "return"
	RankByInflow RankKey = "inflow"
)

// Window is a 1-based inclusive rank range.
type Window struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

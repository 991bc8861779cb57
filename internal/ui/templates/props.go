// Package templates renders the dashboard page shell. Everything inside it is
// filled in by patches from /sse/dashboard.
package templates

import "encoding/json"

// PageProps are the values baked into the page before the first patch.
type PageProps struct {
	Title   string
	Date    string
	ChartID []string
}

// pageSignals is the datastar signal set the page starts with. AllThemes stays
// true until the first patch fills the theme multiselect.
type pageSignals struct {
	Date      string         `json:"date"`
	Themes    []string       `json:"themes"`
	AllThemes bool           `json:"allThemes"`
	ReturnLo  int            `json:"returnLo"`
	ReturnHi  int            `json:"returnHi"`
	InflowLo  int            `json:"inflowLo"`
	InflowHi  int            `json:"inflowHi"`
	Total     int            `json:"total"`
	Ready     bool           `json:"ready"`
	Charts    map[string]any `json:"charts"`
}

func initialSignals(date string) (string, error) {
	b, err := json.Marshal(pageSignals{
		Date:      date,
		Themes:    []string{},
		AllThemes: true,
		Charts:    map[string]any{},
	})
	return string(b), err
}

package charts

import "strings"

// ISO 3166-1 numeric codes keyed by the labels the workbooks use, Korean and
// English.
var countryCodes = map[string]int{
	"미국":             840,
	"us":             840,
	"usa":            840,
	"united states":  840,
	"한국":             410,
	"korea":          410,
	"south korea":    410,
	"중국":             156,
	"china":          156,
	"일본":             392,
	"japan":          392,
	"홍콩":             344,
	"hong kong":      344,
	"대만":             158,
	"taiwan":         158,
	"인도":             356,
	"india":          356,
	"영국":             826,
	"uk":             826,
	"united kingdom": 826,
	"독일":             276,
	"germany":        276,
	"프랑스":            250,
	"france":         250,
	"캐나다":            124,
	"canada":         124,
	"호주":             36,
	"australia":      36,
	"스위스":            756,
	"switzerland":    756,
	"브라질":            76,
	"brazil":         76,
}

// CountryCode resolves a country label to its ISO numeric code.
func CountryCode(name string) (int, bool) {
	code, ok := countryCodes[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

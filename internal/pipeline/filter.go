package pipeline

import (
	"slices"

	"etf-dashboard/internal/models"
)

const defaultWindowSize = 10

// Themes lists the distinct themes of etfs in first-seen order.
func Themes(etfs []models.ETFRecord) []string {
	seen := make(map[string]struct{})
	themes := make([]string, 0)
	for _, e := range etfs {
		if _, ok := seen[e.Theme]; ok {
			continue
		}
		seen[e.Theme] = struct{}{}
		themes = append(themes, e.Theme)
	}
	return themes
}

// FilterThemes keeps the records whose theme is in themes. An empty selection
// keeps nothing.
func FilterThemes(etfs []models.ETFRecord, themes []string) []models.ETFRecord {
	selected := make(map[string]struct{}, len(themes))
	for _, t := range themes {
		selected[t] = struct{}{}
	}

	result := make([]models.ETFRecord, 0, len(etfs))
	for _, e := range etfs {
		if _, ok := selected[e.Theme]; ok {
			result = append(result, e)
		}
	}
	return result
}

// RankWindow sorts a copy of etfs descending by key and returns ranks lo..hi
// (1-based, inclusive). Bounds are clamped to [1, len(etfs)]; equal keys keep
// their input order.
func RankWindow(etfs []models.ETFRecord, key models.RankKey, lo, hi int) []models.ETFRecord {
	n := len(etfs)
	lo = max(lo, 1)
	hi = min(hi, n)
	if n == 0 || lo > hi {
		return []models.ETFRecord{}
	}

	value := rankValue(key)
	sorted := slices.Clone(etfs)
	slices.SortStableFunc(sorted, func(a, b models.ETFRecord) int {
		va, vb := value(a), value(b)
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		default:
			return 0
		}
	})

	return sorted[lo-1 : hi]
}

func rankValue(key models.RankKey) func(models.ETFRecord) float64 {
	switch key {
	case models.RankByInflow:
		return models.ETFRecord.InflowOrZero
	default:
		return func(e models.ETFRecord) float64 { return e.OneYearReturn }
	}
}

// DefaultWindow is the top ten, or everything when there are fewer rows.
func DefaultWindow(n int) models.Window {
	if n == 0 {
		return models.Window{Lo: 1, Hi: 0}
	}
	return models.Window{Lo: 1, Hi: min(defaultWindowSize, n)}
}

// ClampWindow bounds w to [1, n], substituting the default window for a zero
// value.
func ClampWindow(w models.Window, n int) models.Window {
	if (w.Lo == 0 && w.Hi == 0) || n == 0 {
		return DefaultWindow(n)
	}
	w.Lo = min(max(w.Lo, 1), n)
	w.Hi = min(max(w.Hi, w.Lo), n)
	return w
}

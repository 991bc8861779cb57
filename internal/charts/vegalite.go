// Package charts turns renderer-agnostic chart views into Vega-Lite specs for
// the browser.
package charts

import (
	"etf-dashboard/internal/models"
)

const (
	schemaURL   = "https://vega.github.io/schema/vega-lite/v5.json"
	worldTopo   = "https://cdn.jsdelivr.net/npm/vega-datasets@2/data/world-110m.json"
	isoField    = "iso_numeric"
	chartWidth  = "container"
	chartHeight = 320
)

// VegaLite builds the spec for one view. Empty views still get a spec so the
// front end can show the axes and the warning.
func VegaLite(view models.ChartView) map[string]any {
	if view.Mark == models.MarkChoropleth {
		return choropleth(view)
	}

	spec := map[string]any{
		"$schema":  schemaURL,
		"title":    view.Title,
		"width":    chartWidth,
		"height":   chartHeight,
		"data":     map[string]any{"values": view.Rows},
		"mark":     mark(view.Mark),
		"encoding": encoding(view),
	}
	if view.Mark == models.MarkCircle {
		spec["params"] = []any{map[string]any{
			"name":   "grid",
			"select": "interval",
			"bind":   "scales",
		}}
	}
	return spec
}

func mark(m models.Mark) any {
	if m == models.MarkCircle {
		return map[string]any{"type": "circle", "size": 60}
	}
	return map[string]any{"type": string(m)}
}

func encoding(view models.ChartView) map[string]any {
	enc := map[string]any{}
	switch view.Mark {
	case models.MarkBar:
		enc["x"] = map[string]any{"field": view.X, "type": "ordinal", "sort": nil}
		enc["y"] = map[string]any{"field": view.Y, "type": "quantitative"}
	default:
		enc["x"] = map[string]any{"field": view.X, "type": "quantitative"}
		enc["y"] = map[string]any{"field": view.Y, "type": "quantitative"}
	}
	if view.Color != "" {
		enc["color"] = map[string]any{"field": view.Color, "type": "nominal"}
	}
	if len(view.Tooltip) > 0 {
		enc["tooltip"] = tooltip(view.Tooltip)
	}
	return enc
}

func tooltip(fields []string) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, map[string]any{"field": f})
	}
	return out
}

// choropleth joins the per-country rows onto the world topology through the
// ISO 3166 numeric code. Countries that cannot be mapped are left out of the
// map but stay in the view rows.
func choropleth(view models.ChartView) map[string]any {
	values := make([]map[string]any, 0, len(view.Rows))
	for _, row := range view.Rows {
		name, _ := row[view.X].(string)
		code, ok := CountryCode(name)
		if !ok {
			continue
		}
		joined := make(map[string]any, len(row)+1)
		for k, v := range row {
			joined[k] = v
		}
		joined[isoField] = code
		values = append(values, joined)
	}

	fields := append([]string{}, view.Tooltip...)

	return map[string]any{
		"$schema":    schemaURL,
		"title":      view.Title,
		"width":      chartWidth,
		"height":     chartHeight,
		"projection": map[string]any{"type": "equalEarth"},
		"layer": []any{
			map[string]any{
				"data": map[string]any{
					"url":    worldTopo,
					"format": map[string]any{"type": "topojson", "feature": "countries"},
				},
				"mark": map[string]any{"type": "geoshape", "fill": "#eee", "stroke": "white"},
			},
			map[string]any{
				"data": map[string]any{
					"url":    worldTopo,
					"format": map[string]any{"type": "topojson", "feature": "countries"},
				},
				"transform": []any{map[string]any{
					"lookup": "id",
					"from": map[string]any{
						"data":   map[string]any{"values": values},
						"key":    isoField,
						"fields": fields,
					},
				}},
				"mark": map[string]any{"type": "geoshape", "stroke": "white"},
				"encoding": map[string]any{
					"color":   map[string]any{"field": view.Color, "type": "quantitative"},
					"tooltip": tooltip(view.Tooltip),
				},
			},
		},
	}
}

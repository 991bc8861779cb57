package handlers

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "etf-dashboard/internal/errors"
	"etf-dashboard/internal/services"
)

// parseQuery reads the dashboard query from URL parameters: date, repeated
// theme, and the four window bounds. A bare "theme=" selects no themes.
func parseQuery(r *http.Request) (services.Query, error) {
	values := r.URL.Query()
	q := services.Query{
		Date: strings.TrimSpace(values.Get("date")),
	}

	if values.Has("theme") {
		q.Themes = []string{}
	}
	for _, t := range values["theme"] {
		if t = strings.TrimSpace(t); t != "" {
			q.Themes = append(q.Themes, t)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"returnLo", &q.ReturnLo},
		{"returnHi", &q.ReturnHi},
		{"inflowLo", &q.InflowLo},
		{"inflowHi", &q.InflowHi},
	}
	for _, p := range ints {
		raw := values.Get(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.BadRequestWrap(err, "invalid "+p.key)
		}
		*p.dst = n
	}

	return q, nil
}

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "etf-dashboard/internal/errors"
	"etf-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// Query is one interaction's worth of user input: the date picker, the theme
// multiselect and both rank sliders. Zero windows mean "default".
//
// Themes is the multiselect as sent. A nil slice means it was not sent at
// all; an empty one means every theme was deselected. AllThemes is set by the
// page until the first dashboard patch has populated the multiselect.
type Query struct {
	Date      string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Themes    []string `json:"themes" validate:"dive,max=200"`
	AllThemes bool     `json:"allThemes"`
	ReturnLo  int      `json:"returnLo" validate:"gte=0"`
	ReturnHi  int      `json:"returnHi" validate:"gte=0"`
	InflowLo  int      `json:"inflowLo" validate:"gte=0"`
	InflowHi  int      `json:"inflowHi" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks q and returns a validation AppError describing the first
// offending field.
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.ValidationWrap(err, fmt.Sprintf("invalid %s", strings.ToLower(fe.Field()))).
				WithDetails(fmt.Sprintf("failed %q check", fe.Tag()))
		}
		return apperrors.ValidationWrap(err, "invalid query")
	}
	if q.ReturnHi != 0 && q.ReturnLo > q.ReturnHi {
		return apperrors.Validation("return rank window is inverted")
	}
	if q.InflowHi != 0 && q.InflowLo > q.InflowHi {
		return apperrors.Validation("inflow rank window is inverted")
	}
	return nil
}

// DateOr parses the query date, using today when it is blank.
func (q Query) DateOr(today time.Time) time.Time {
	if q.Date == "" {
		return today
	}
	d, err := time.ParseInLocation(dateLayout, q.Date, today.Location())
	if err != nil {
		return today
	}
	return d
}

// Selection resolves the theme multiselect against the themes present in the
// workbook.
func (q Query) Selection(all []string) []string {
	if q.AllThemes || q.Themes == nil {
		return all
	}
	return q.Themes
}

func (q Query) ReturnWindow() models.Window {
	return models.Window{Lo: q.ReturnLo, Hi: q.ReturnHi}
}

func (q Query) InflowWindow() models.Window {
	return models.Window{Lo: q.InflowLo, Hi: q.InflowHi}
}

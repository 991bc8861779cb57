package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-dashboard/internal/models"
)

func summarySheet() [][]string {
	return [][]string{
		{"Thematic ETF Summary"},
		{"테마", "국가", "AUM", "시장 점유율", "순유입"},
		{"AI", "미국", "1,200.5", "40%", "35"},
		{"Battery", "한국", "800", "25%", "-12.5"},
		{"", "일본", "10", "1%", "1"},
		{"Robotics", "일본", "300", "N/A"},
		{"Total", "", "2310.5", "100%", "19.5"},
		{"Source: exporter"},
	}
}

func rawSheet() [][]string {
	return [][]string{
		{"티커", "ETF명", "테마", "AUM", "1년 수익률", "AUM 순유입"},
		{"BOTZ", "Global X Robotics", "Robotics", "2,500", "12.34%", "150"},
		{"LIT", "Global X Lithium", "Battery", "3,100", "-8.5%", "-40"},
		{"AIQ", "Global X AI", "AI", "1,800", "1,234.5%", "220"},
		{},
		{"LIT", "Duplicate Lithium", "Battery", "1", "99%", "1"},
		{"ROBO", "Robo Global", "Robotics", "1,100", "N/A", "n/a"},
	}
}

func TestNormalizeSummary(t *testing.T) {
	res, err := NormalizeSummary(summarySheet(), DefaultSchema(), 2)
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, res.CoercedToZero)

	for _, r := range res.Records {
		assert.NotEmpty(t, r.Theme)
		assert.NotEqual(t, "Total", r.Theme, "footer rows are trimmed")
	}

	ai := res.Records[0]
	assert.Equal(t, "AI", ai.Theme)
	assert.Equal(t, "미국", ai.Country)
	assert.Equal(t, 1200.5, ai.AUM)
	require.NotNil(t, ai.MarketShare)
	assert.Equal(t, 40.0, *ai.MarketShare)
	require.NotNil(t, ai.NetInflow)
	assert.Equal(t, 35.0, *ai.NetInflow)

	robotics := res.Records[2]
	assert.Equal(t, 0.0, *robotics.MarketShare)
	assert.Equal(t, 0.0, *robotics.NetInflow, "a short row reads missing cells as blank")
}

func TestNormalizeSummary_FooterRows(t *testing.T) {
	res, err := NormalizeSummary(summarySheet(), DefaultSchema(), 0)
	require.NoError(t, err)
	assert.Len(t, res.Records, 5, "without trimming the total and source rows survive")

	res, err = NormalizeSummary(summarySheet(), DefaultSchema(), 10)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestNormalizeSummary_Errors(t *testing.T) {
	_, err := NormalizeSummary([][]string{{"title"}}, DefaultSchema(), 2)
	assert.True(t, errors.Is(err, ErrEmptySheet))

	_, err = NormalizeSummary([][]string{{"title"}, {"국가", "AUM"}, {"미국", "1"}}, DefaultSchema(), 0)
	assert.True(t, errors.Is(err, ErrColumnMissing))
}

func TestNormalizeSummary_EnglishHeaders(t *testing.T) {
	rows := [][]string{
		{"export"},
		{" Theme ", "COUNTRY", "AUM ($mn)"},
		{"Cloud", "US", "42"},
	}
	res, err := NormalizeSummary(rows, DefaultSchema(), 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, models.SummaryRecord{Theme: "Cloud", Country: "US", AUM: 42}, res.Records[0])
	assert.False(t, res.Columns.Has(colNetInflow))
}

func TestParseETFs(t *testing.T) {
	res, err := ParseETFs(rawSheet(), DefaultSchema(), ReturnPercent)
	require.NoError(t, err)

	require.Len(t, res.Records, 4)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 2, res.CoercedToZero)

	tickers := make([]string, 0, len(res.Records))
	for _, r := range res.Records {
		tickers = append(tickers, r.Ticker)
	}
	assert.Equal(t, []string{"BOTZ", "LIT", "AIQ", "ROBO"}, tickers)

	lit := res.Records[1]
	assert.Equal(t, "Global X Lithium", lit.Name, "first occurrence wins")
	assert.Equal(t, 3100.0, lit.AUM)
	assert.Equal(t, -8.5, lit.OneYearReturn)
	assert.Equal(t, "-8.50%", lit.OneYearReturnLabel)

	aiq := res.Records[2]
	assert.Equal(t, 1234.5, aiq.OneYearReturn)
	require.NotNil(t, aiq.AUMNetInflow)
	assert.Equal(t, 220.0, *aiq.AUMNetInflow)

	robo := res.Records[3]
	assert.Equal(t, 0.0, robo.OneYearReturn)
	assert.Equal(t, 0.0, robo.InflowOrZero())
}

func TestParseETFs_MissingColumns(t *testing.T) {
	rows := [][]string{{"티커", "테마", "AUM"}, {"A", "T", "1"}}
	_, err := ParseETFs(rows, DefaultSchema(), ReturnPercent)
	assert.True(t, errors.Is(err, ErrColumnMissing))

	_, err = ParseETFs(nil, DefaultSchema(), ReturnPercent)
	assert.True(t, errors.Is(err, ErrEmptySheet))
}

func TestParseETFs_WithoutAUMNetInflow(t *testing.T) {
	rows := [][]string{
		{"Ticker", "Name", "Theme", "AUM", "1Y Return"},
		{"A", "Alpha", "T", "1", "0.05"},
	}
	res, err := ParseETFs(rows, DefaultSchema(), ReturnFraction)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Nil(t, res.Records[0].AUMNetInflow)
	assert.InDelta(t, 5.0, res.Records[0].OneYearReturn, 1e-9)
}

func TestSchemaMerge(t *testing.T) {
	merged := DefaultSchema().Merge(Schema{Theme: []string{"Sector"}})
	assert.Equal(t, []string{"Sector"}, merged.Theme)
	assert.Equal(t, DefaultSchema().Country, merged.Country)
}

func TestColumnsCell(t *testing.T) {
	cols := resolve([]string{"a", "B", "c"}, map[string][]string{"x": {"b"}, "y": {"z"}})
	assert.True(t, cols.Has("x"))
	assert.False(t, cols.Has("y"))
	assert.Equal(t, "2", cols.Cell([]string{"1", " 2 "}, "x"))
	assert.Equal(t, "", cols.Cell([]string{"1"}, "x"))
	assert.Equal(t, "", cols.Cell([]string{"1", "2"}, "y"))
}

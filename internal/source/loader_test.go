package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-dashboard/internal/fixtures"
)

var testDate = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func newTestLoader(t *testing.T, dir string) *Loader {
	t.Helper()
	return NewLoader(Options{
		DataDir:        dir,
		FilePattern:    "Thematic ETF_%s.xlsx",
		MaxUploadBytes: 1 << 20,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFileName(t *testing.T) {
	l := newTestLoader(t, t.TempDir())
	assert.Equal(t, "Thematic ETF_20250106.xlsx", l.FileName(testDate))
}

func TestLoad_DatedFile(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteWorkbook(t, dir, "Thematic ETF_20250106.xlsx", fixtures.SummaryRows(), fixtures.RAWRows())

	raw, err := newTestLoader(t, dir).Load(context.Background(), testDate)
	require.NoError(t, err)

	assert.Equal(t, "Thematic ETF_20250106.xlsx", raw.Source)
	require.GreaterOrEqual(t, len(raw.Summary), 2)
	assert.Equal(t, "테마", raw.Summary[1][0])
	assert.Equal(t, "티커", raw.RAW[0][0])
	assert.Equal(t, "12.34%", raw.RAW[1][4])
}

func TestLoad_RawCellValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Thematic ETF_20250106.xlsx")
	require.NoError(t, os.WriteFile(path, fixtures.FractionWorkbook(t), 0o644))

	formatted, err := newTestLoader(t, dir).Load(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, "12%", formatted.RAW[1][4], "formatted text rounds to the display format")

	l := NewLoader(Options{
		DataDir:        dir,
		FilePattern:    "Thematic ETF_%s.xlsx",
		MaxUploadBytes: 1 << 20,
		RawCellValue:   true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	raw, err := l.Load(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, "0.1234", raw.RAW[1][4])
	assert.Equal(t, "-0.085", raw.RAW[2][4])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := newTestLoader(t, t.TempDir()).Load(context.Background(), testDate)

	var missing *MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Thematic ETF_20250106.xlsx", missing.FileName)
	assert.ErrorIs(t, err, ErrFileMissing)
}

func TestLoad_MissingSheet(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteWorkbook(t, dir, "Thematic ETF_20250106.xlsx", fixtures.SummaryRows(), nil)

	_, err := newTestLoader(t, dir).Load(context.Background(), testDate)
	assert.ErrorIs(t, err, ErrSheetMissing)
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(t, t.TempDir()).Load(ctx, testDate)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpload_FallsBackWhenDatedFileMissing(t *testing.T) {
	l := newTestLoader(t, t.TempDir())
	data := fixtures.Workbook(t, fixtures.SummaryRows(), fixtures.RAWRows())

	require.NoError(t, l.Upload("mine.xlsx", bytes.NewReader(data)))
	assert.Equal(t, "mine.xlsx", l.UploadName())

	raw, err := l.Load(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, "mine.xlsx", raw.Source)

	l.ClearUpload()
	assert.Empty(t, l.UploadName())
	_, err = l.Load(context.Background(), testDate)
	assert.ErrorIs(t, err, ErrFileMissing)
}

func TestUpload_DatedFileWins(t *testing.T) {
	dir := t.TempDir()
	fixtures.WriteWorkbook(t, dir, "Thematic ETF_20250106.xlsx", fixtures.SummaryRows(), fixtures.RAWRows())
	l := newTestLoader(t, dir)

	require.NoError(t, l.Upload("other.xlsx", bytes.NewReader(fixtures.Workbook(t, fixtures.SummaryRows(), fixtures.RAWRows()))))

	raw, err := l.Load(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, "Thematic ETF_20250106.xlsx", raw.Source)
}

func TestUpload_Rejects(t *testing.T) {
	valid := fixtures.Workbook(t, fixtures.SummaryRows(), fixtures.RAWRows())

	tests := []struct {
		name string
		file string
		body io.Reader
		want error
	}{
		{"wrong extension", "data.csv", bytes.NewReader(valid), ErrUploadInvalid},
		{"not a workbook", "data.xlsx", strings.NewReader("plain text"), ErrNotWorkbook},
		{"missing RAW", "data.xlsx", bytes.NewReader(fixtures.Workbook(t, fixtures.SummaryRows(), nil)), ErrSheetMissing},
		{"too big", "data.xlsx", bytes.NewReader(make([]byte, 2<<20)), ErrUploadTooBig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoader(t, t.TempDir())
			err := l.Upload(tt.file, tt.body)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, l.UploadName(), "a rejected upload is not kept")
		})
	}
}

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"Thematic ETF_20250103.xlsx",
		"Thematic ETF_20250106.xlsx",
		"Thematic ETF_notadate.xlsx",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	dates, err := newTestLoader(t, dir).Available()
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, testDate, dates[0])
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), dates[1])
}

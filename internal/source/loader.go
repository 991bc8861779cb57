// Package source locates and opens the dated thematic ETF workbook, falling
// back to a workbook uploaded during the session.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"etf-dashboard/internal/models"
)

const (
	SheetSummary = "Summary"
	SheetRAW     = "RAW"

	dateLayout = "20060102"
)

var (
	ErrFileMissing   = errors.New("workbook file missing")
	ErrSheetMissing  = errors.New("workbook sheet missing")
	ErrNotWorkbook   = errors.New("not an xlsx workbook")
	ErrUploadTooBig  = errors.New("upload exceeds size limit")
	ErrUploadInvalid = errors.New("upload must be a single .xlsx file")
)

// MissingFileError reports the dated workbook that could not be found.
type MissingFileError struct {
	FileName string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFileMissing, e.FileName)
}

func (e *MissingFileError) Unwrap() error {
	return ErrFileMissing
}

type Options struct {
	DataDir        string
	FilePattern    string
	MaxUploadBytes int64
	// RawCellValue reads stored cell values instead of their formatted text,
	// so a fraction under a "0%" format keeps its precision.
	RawCellValue bool
}

// Loader resolves a date to a workbook. It keeps at most one uploaded
// workbook in memory for the lifetime of the process.
type Loader struct {
	opts   Options
	logger *slog.Logger

	mu         sync.RWMutex
	upload     []byte
	uploadName string
}

func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if opts.FilePattern == "" {
		opts.FilePattern = "Thematic ETF_%s.xlsx"
	}
	return &Loader{opts: opts, logger: logger}
}

// FileName is the expected workbook name for date, e.g.
// "Thematic ETF_20250106.xlsx".
func (l *Loader) FileName(date time.Time) string {
	return fmt.Sprintf(l.opts.FilePattern, date.Format(dateLayout))
}

// Load opens the workbook for date, or the uploaded workbook when the dated
// file does not exist. With neither it returns a *MissingFileError.
func (l *Loader) Load(ctx context.Context, date time.Time) (*models.RawTables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := l.FileName(date)
	path := filepath.Join(l.opts.DataDir, name)

	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		defer f.Close()
		l.logger.Debug("opened dated workbook", "path", path)
		return l.readTables(f, name)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	l.mu.RLock()
	data, uploadName := l.upload, l.uploadName
	l.mu.RUnlock()

	if data == nil {
		return nil, &MissingFileError{FileName: name}
	}

	uf, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", uploadName, err)
	}
	defer uf.Close()
	l.logger.Debug("dated workbook missing, using upload", "expected", name, "upload", uploadName)
	return l.readTables(uf, uploadName)
}

// Upload replaces the held workbook with the one read from r. The file must
// be an .xlsx within the size limit that contains both sheets.
func (l *Loader) Upload(name string, r io.Reader) error {
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return fmt.Errorf("%w: got %q", ErrUploadInvalid, name)
	}

	limit := l.opts.MaxUploadBytes
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return fmt.Errorf("%w: limit %d bytes", ErrUploadTooBig, limit)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotWorkbook, err)
	}
	defer f.Close()
	if err := requireSheets(f); err != nil {
		return err
	}

	l.mu.Lock()
	l.upload = data
	l.uploadName = filepath.Base(name)
	l.mu.Unlock()

	l.logger.Info("workbook uploaded", "name", name, "bytes", len(data))
	return nil
}

func (l *Loader) ClearUpload() {
	l.mu.Lock()
	l.upload = nil
	l.uploadName = ""
	l.mu.Unlock()
}

// UploadName returns the name of the held upload, or "" when there is none.
func (l *Loader) UploadName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.uploadName
}

// Available lists, newest first, the dates that have a workbook in the data
// directory.
func (l *Loader) Available() ([]time.Time, error) {
	entries, err := os.ReadDir(l.opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", l.opts.DataDir, err)
	}

	prefix, suffix, _ := strings.Cut(l.opts.FilePattern, "%s")
	var dates []time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		date, err := time.Parse(dateLayout, stamp)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}

	slices.SortFunc(dates, func(a, b time.Time) int {
		return b.Compare(a)
	})
	return dates, nil
}

func requireSheets(f *excelize.File) error {
	sheets := f.GetSheetList()
	for _, want := range []string{SheetSummary, SheetRAW} {
		if !slices.Contains(sheets, want) {
			return fmt.Errorf("%w: %q", ErrSheetMissing, want)
		}
	}
	return nil
}

func (l *Loader) readTables(f *excelize.File, source string) (*models.RawTables, error) {
	if err := requireSheets(f); err != nil {
		return nil, err
	}

	opts := excelize.Options{RawCellValue: l.opts.RawCellValue}
	summary, err := f.GetRows(SheetSummary, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", SheetSummary, err)
	}
	raw, err := f.GetRows(SheetRAW, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", SheetRAW, err)
	}

	return &models.RawTables{
		Summary: summary,
		RAW:     raw,
		Source:  source,
	}, nil
}

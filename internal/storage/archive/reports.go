// internal/storage/archive/reports.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/core"
)

// ReportArchive persists backtest reports to a storage backend using a
// stable key layout: reports/<symbol>/<strategy>/<end-date>.<ext>
type ReportArchive struct {
	store Storage
}

// NewReportArchive creates a report archive on top of a storage backend
func NewReportArchive(store Storage) *ReportArchive {
	return &ReportArchive{store: store}
}

// ReportKey builds the archive path for a report artifact
func ReportKey(symbol, strategy string, end time.Time, ext string) string {
	sym := strings.ToLower(strings.ReplaceAll(symbol, "/", "-"))
	return fmt.Sprintf("reports/%s/%s/%s.%s", sym, strategy, end.UTC().Format("2006-01-02"), ext)
}

// SaveJSON marshals the report and writes it under its JSON key
func (a *ReportArchive) SaveJSON(ctx context.Context, report *backtest.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", core.WrapErrorf(core.ErrStorageFailed, "marshaling report: %w", err)
	}

	key := ReportKey(report.Symbol, report.Strategy, report.EndDate, "json")
	if err := a.store.Write(ctx, key, data); err != nil {
		return "", core.WrapErrorf(core.ErrStorageFailed, "writing report: %w", err)
	}
	return key, nil
}

// SaveHTML writes a rendered HTML report under its HTML key
func (a *ReportArchive) SaveHTML(ctx context.Context, report *backtest.Report, html []byte) (string, error) {
	key := ReportKey(report.Symbol, report.Strategy, report.EndDate, "html")
	if err := a.store.Write(ctx, key, html); err != nil {
		return "", core.WrapErrorf(core.ErrStorageFailed, "writing html report: %w", err)
	}
	return key, nil
}

// LoadJSON reads and unmarshals a previously archived report
func (a *ReportArchive) LoadJSON(ctx context.Context, key string) (*backtest.Report, error) {
	data, err := a.store.Read(ctx, key)
	if err != nil {
		return nil, core.WrapErrorf(core.ErrStorageFailed, "reading report: %w", err)
	}

	var report backtest.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, core.WrapErrorf(core.ErrStorageFailed, "unmarshaling report: %w", err)
	}
	return &report, nil
}

// List returns the archive keys for a symbol, or all reports when empty
func (a *ReportArchive) List(ctx context.Context, symbol string) ([]string, error) {
	prefix := "reports"
	if symbol != "" {
		prefix = "reports/" + strings.ToLower(strings.ReplaceAll(symbol, "/", "-"))
	}
	keys, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, core.WrapErrorf(core.ErrStorageFailed, "listing reports: %w", err)
	}
	return keys, nil
}

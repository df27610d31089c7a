// internal/render/html.go
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/core"
)

//go:embed templates/*
var templateFS embed.FS

// metricRow is one row of the performance table.
type metricRow struct {
	Name  string
	Value string
	Class string
}

// yearlyRow is one row of the yearly breakdown table.
type yearlyRow struct {
	Year        int
	Return      string
	ReturnClass string
	Sharpe      string
	MaxDrawdown string
}

// markers holds x/y pairs for trade entry or exit points.
type markers struct {
	X []string  `json:"x"`
	Y []float64 `json:"y"`
}

type reportPage struct {
	Title    string
	Period   string
	Metrics  []metricRow
	Yearly   []yearlyRow
	Times    template.JS
	Equity   template.JS
	Drawdown template.JS
	Entries  template.JS
	Exits    template.JS
}

// HTML renders a report as a self-contained HTML page with interactive
// equity and drawdown charts.
func HTML(r *backtest.Report) ([]byte, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, core.WrapErrorf(core.ErrRenderFailed, "parsing report template: %w", err)
	}

	page, err := buildPage(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return nil, core.WrapErrorf(core.ErrRenderFailed, "rendering report template: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPage(r *backtest.Report) (*reportPage, error) {
	title := fmt.Sprintf("%s / %s", r.Symbol, r.Strategy)
	if r.Symbol == "" && r.Strategy == "" {
		title = "Backtest Report"
	}

	times := make([]string, len(r.Series))
	equityByTime := make(map[time.Time]float64, len(r.Series))
	for i, p := range r.Series {
		times[i] = p.Time.UTC().Format("2006-01-02 15:04")
		if i < len(r.Equity) {
			equityByTime[p.Time] = r.Equity[i]
		}
	}

	entries := markers{X: []string{}, Y: []float64{}}
	exits := markers{X: []string{}, Y: []float64{}}
	for _, t := range r.Trades {
		if y, ok := equityByTime[t.EntryTime]; ok {
			entries.X = append(entries.X, t.EntryTime.UTC().Format("2006-01-02 15:04"))
			entries.Y = append(entries.Y, y)
		}
		if y, ok := equityByTime[t.ExitTime]; ok {
			exits.X = append(exits.X, t.ExitTime.UTC().Format("2006-01-02 15:04"))
			exits.Y = append(exits.Y, y)
		}
	}

	page := &reportPage{
		Title: title,
		Period: fmt.Sprintf("%s to %s, %d bars",
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), len(r.Series)),
		Metrics: metricsTable(r.Stats),
		Yearly:  yearlyTable(r),
	}

	for _, enc := range []struct {
		dst *template.JS
		src any
	}{
		{&page.Times, times},
		{&page.Equity, r.Equity},
		{&page.Drawdown, r.Drawdown},
		{&page.Entries, entries},
		{&page.Exits, exits},
	} {
		data, err := json.Marshal(enc.src)
		if err != nil {
			return nil, core.WrapErrorf(core.ErrRenderFailed, "encoding chart data: %w", err)
		}
		*enc.dst = template.JS(data)
	}

	return page, nil
}

func metricsTable(s backtest.Stats) []metricRow {
	pct := func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }
	num := func(v float64) string {
		if math.IsInf(v, 1) {
			return "inf"
		}
		return fmt.Sprintf("%.2f", v)
	}
	sign := func(v float64) string {
		if v < 0 {
			return "neg"
		}
		return "pos"
	}

	return []metricRow{
		{"Total Return", pct(s.TotalReturn), sign(s.TotalReturn)},
		{"Sharpe Ratio", num(s.SharpeRatio), ""},
		{"Max Drawdown", pct(s.MaxDrawdown), "neg"},
		{"Calmar Ratio", num(s.CalmarRatio), ""},
		{"Total Trades", fmt.Sprintf("%d", s.TotalTrades), ""},
		{"Win Rate", pct(s.WinRate), ""},
		{"Profit Factor", num(s.ProfitFactor), ""},
		{"Avg Win/Loss", num(s.AvgWinLossRatio), ""},
	}
}

func yearlyTable(r *backtest.Report) []yearlyRow {
	var rows []yearlyRow
	for _, y := range r.Years() {
		ys := r.Yearly[y]
		cls := "pos"
		if ys.Return < 0 {
			cls = "neg"
		}
		rows = append(rows, yearlyRow{
			Year:        y,
			Return:      fmt.Sprintf("%.2f%%", ys.Return*100),
			ReturnClass: cls,
			Sharpe:      fmt.Sprintf("%.2f", ys.Sharpe),
			MaxDrawdown: fmt.Sprintf("%.2f%%", ys.MaxDrawdown*100),
		})
	}
	return rows
}

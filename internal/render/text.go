// internal/render/text.go
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/newthinker/sigma/internal/backtest"
)

// Summary renders a report as a plain-text table for terminal output.
func Summary(r *backtest.Report) string {
	var b strings.Builder

	title := fmt.Sprintf("%s / %s", r.Symbol, r.Strategy)
	if r.Symbol == "" && r.Strategy == "" {
		title = "Backtest"
	}

	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(&b, "Period:          %s to %s\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Bars:            %d (x%d/yr)\n", len(r.Series), r.PeriodsPerYear)
	fmt.Fprintf(&b, "Cost per change: %.4f\n", r.Cost)
	b.WriteString("\n")

	s := r.Stats
	fmt.Fprintf(&b, "Total Return:    %8.2f%%\n", s.TotalReturn*100)
	fmt.Fprintf(&b, "Sharpe Ratio:    %8.2f\n", s.SharpeRatio)
	fmt.Fprintf(&b, "Max Drawdown:    %8.2f%%\n", s.MaxDrawdown*100)
	fmt.Fprintf(&b, "Calmar Ratio:    %8.2f\n", s.CalmarRatio)
	fmt.Fprintf(&b, "Total Trades:    %8d\n", s.TotalTrades)
	fmt.Fprintf(&b, "Win Rate:        %8.2f%%\n", s.WinRate*100)
	fmt.Fprintf(&b, "Profit Factor:   %s\n", formatRatio(s.ProfitFactor))
	fmt.Fprintf(&b, "Avg Win/Loss:    %s\n", formatRatio(s.AvgWinLossRatio))

	years := r.Years()
	if len(years) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-6s %10s %8s %10s\n", "Year", "Return", "Sharpe", "MaxDD")
		for _, y := range years {
			ys := r.Yearly[y]
			fmt.Fprintf(&b, "%-6d %9.2f%% %8.2f %9.2f%%\n",
				y, ys.Return*100, ys.Sharpe, ys.MaxDrawdown*100)
		}
	}

	return b.String()
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "     inf"
	}
	return fmt.Sprintf("%8.2f", v)
}

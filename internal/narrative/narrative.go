// internal/narrative/narrative.go
package narrative

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/llm"
)

const systemPrompt = `You are a quantitative analyst reviewing backtest results.
Write a short, factual assessment of the strategy's performance for a technical
reader. Cover profitability, risk, and trade quality. Do not invent numbers
that are not in the data. Keep it under 200 words.`

// Analyst generates a prose assessment of a backtest report.
type Analyst struct {
	llm    llm.Provider
	logger *zap.Logger
}

// New creates a new report analyst.
func New(provider llm.Provider, logger *zap.Logger) *Analyst {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyst{llm: provider, logger: logger}
}

// Explain asks the LLM for a narrative summary of the report.
func (a *Analyst) Explain(ctx context.Context, r *backtest.Report) (string, error) {
	if a.llm == nil {
		return "", core.WrapErrorf(core.ErrLLMFailed, "no provider configured")
	}

	req := llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(r)},
		},
		MaxTokens:   1024,
		Temperature: 0.3,
	}

	resp, err := a.llm.Chat(ctx, req)
	if err != nil {
		return "", err
	}

	a.logger.Debug("narrative generated",
		zap.String("provider", a.llm.Name()),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	return strings.TrimSpace(resp.Content), nil
}

func buildPrompt(r *backtest.Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Backtest: %s / %s\n", r.Symbol, r.Strategy))
	sb.WriteString(fmt.Sprintf("Period: %s to %s (%d bars, cost %.4f per position change)\n\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
		len(r.Series), r.Cost))

	s := r.Stats
	sb.WriteString("## Performance:\n")
	sb.WriteString(fmt.Sprintf("- Total Return: %.2f%%\n", s.TotalReturn*100))
	sb.WriteString(fmt.Sprintf("- Sharpe Ratio: %.2f\n", s.SharpeRatio))
	sb.WriteString(fmt.Sprintf("- Max Drawdown: %.2f%%\n", s.MaxDrawdown*100))
	sb.WriteString(fmt.Sprintf("- Calmar Ratio: %.2f\n", s.CalmarRatio))
	sb.WriteString(fmt.Sprintf("- Trades: %d (wins %d, losses %d, win rate %.1f%%)\n",
		s.TotalTrades, s.WinningTrades, s.LosingTrades, s.WinRate*100))
	if math.IsInf(s.ProfitFactor, 1) {
		sb.WriteString("- Profit Factor: inf (no losing trades)\n")
	} else {
		sb.WriteString(fmt.Sprintf("- Profit Factor: %.2f\n", s.ProfitFactor))
	}
	sb.WriteString("\n")

	years := r.Years()
	if len(years) > 0 {
		sb.WriteString("## Yearly:\n")
		for _, y := range years {
			ys := r.Yearly[y]
			sb.WriteString(fmt.Sprintf("- %d: return %.2f%%, sharpe %.2f, max drawdown %.2f%%\n",
				y, ys.Return*100, ys.Sharpe, ys.MaxDrawdown*100))
		}
		sb.WriteString("\n")
	}

	if len(r.Trades) > 0 {
		sb.WriteString("## Recent Trades (sample):\n")
		limit := 10
		if len(r.Trades) < limit {
			limit = len(r.Trades)
		}
		for i := 0; i < limit; i++ {
			t := r.Trades[len(r.Trades)-1-i]
			result := "WIN"
			if t.PnL < 0 {
				result = "LOSS"
			}
			sb.WriteString(fmt.Sprintf("- %s %s to %s: %.2f%% (%s)\n",
				t.Direction,
				t.EntryTime.Format("2006-01-02"), t.ExitTime.Format("2006-01-02"),
				t.PnL*100, result))
		}
	}

	return sb.String()
}

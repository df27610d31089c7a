package narrative

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/llm"
)

// mockProvider records the last request and returns a canned response.
type mockProvider struct {
	lastReq llm.ChatRequest
	resp    *llm.ChatResponse
	err     error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func sampleReport() *backtest.Report {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &backtest.Report{
		Symbol:         "BTCUSDT",
		Strategy:       "ma_crossover",
		StartDate:      t0,
		EndDate:        t0.AddDate(0, 5, 0),
		Cost:           0.001,
		PeriodsPerYear: 365,
		Series:         []backtest.ReturnPoint{{Time: t0}, {Time: t0.AddDate(0, 0, 1)}},
		Trades: []backtest.Trade{
			{
				EntryTime: t0, ExitTime: t0.AddDate(0, 0, 5),
				Direction: backtest.DirectionLong, PnL: 0.03,
			},
			{
				EntryTime: t0.AddDate(0, 0, 5), ExitTime: t0.AddDate(0, 0, 9),
				Direction: backtest.DirectionShort, PnL: -0.01,
			},
		},
		Stats: backtest.Stats{
			TotalReturn:   0.02,
			SharpeRatio:   1.1,
			MaxDrawdown:   -0.05,
			TotalTrades:   2,
			WinningTrades: 1,
			LosingTrades:  1,
			WinRate:       0.5,
			ProfitFactor:  3.0,
		},
		Yearly: map[int]backtest.YearlyStat{
			2024: {Year: 2024, Return: 0.02, Sharpe: 1.1, MaxDrawdown: -0.05},
		},
	}
}

func TestExplain(t *testing.T) {
	mock := &mockProvider{
		resp: &llm.ChatResponse{Content: "  The strategy was mildly profitable.  "},
	}
	analyst := New(mock, nil)

	got, err := analyst.Explain(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if got != "The strategy was mildly profitable." {
		t.Errorf("Explain() = %q", got)
	}

	if mock.lastReq.SystemPrompt == "" {
		t.Error("system prompt missing")
	}
	if len(mock.lastReq.Messages) != 1 || mock.lastReq.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", mock.lastReq.Messages)
	}

	prompt := mock.lastReq.Messages[0].Content
	for _, want := range []string{
		"BTCUSDT / ma_crossover",
		"Total Return: 2.00%",
		"win rate 50.0%",
		"2024: return 2.00%",
		"short",
		"LOSS",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
}

func TestExplain_InfiniteProfitFactor(t *testing.T) {
	mock := &mockProvider{resp: &llm.ChatResponse{Content: "ok"}}
	analyst := New(mock, nil)

	r := sampleReport()
	r.Stats.ProfitFactor = math.Inf(1)

	if _, err := analyst.Explain(context.Background(), r); err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if !strings.Contains(mock.lastReq.Messages[0].Content, "no losing trades") {
		t.Error("prompt should describe infinite profit factor")
	}
}

func TestExplain_ProviderError(t *testing.T) {
	mock := &mockProvider{err: core.ErrLLMFailed}
	analyst := New(mock, nil)

	_, err := analyst.Explain(context.Background(), sampleReport())
	if !errors.Is(err, core.ErrLLMFailed) {
		t.Errorf("Explain() error = %v, want ErrLLMFailed", err)
	}
}

func TestExplain_NoProvider(t *testing.T) {
	analyst := New(nil, nil)

	_, err := analyst.Explain(context.Background(), sampleReport())
	if !errors.Is(err, core.ErrLLMFailed) {
		t.Errorf("Explain() error = %v, want ErrLLMFailed", err)
	}
}

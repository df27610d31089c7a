package binance

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func klineRow(ts int64, o, h, l, c, v string) string {
	return fmt.Sprintf(`[%d,"%s","%s","%s","%s","%s",0,"0",0,"0","0","0"]`, ts, o, h, l, c, v)
}

func TestBinance_FetchHistory(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol = %s, want BTCUSDT", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %s, want 1d", got)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "[%s,%s]",
			klineRow(base.UnixMilli(), "100", "105", "99", "102", "1000"),
			klineRow(base.AddDate(0, 0, 1).UnixMilli(), "102", "108", "101", "106", "1200"),
		)
	}))
	defer server.Close()

	b := NewWithBaseURL(server.URL)
	bars, err := b.FetchHistory("BTCUSDT", base, base.AddDate(0, 0, 2), "1d")
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 102 || bars[1].Close != 106 {
		t.Errorf("closes = %v, %v", bars[0].Close, bars[1].Close)
	}
	if bars[0].Volume != 1000 {
		t.Errorf("volume = %v, want 1000", bars[0].Volume)
	}
	if !bars[0].Time.Equal(base) {
		t.Errorf("time = %v, want %v", bars[0].Time, base)
	}
	if bars[0].Symbol != "BTCUSDT" || bars[0].Interval != "1d" {
		t.Errorf("metadata = %s/%s", bars[0].Symbol, bars[0].Interval)
	}
}

func TestBinance_FetchHistory_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	b := NewWithBaseURL(server.URL)
	_, err := b.FetchHistory("BTCUSDT", time.Now().AddDate(0, 0, -1), time.Now(), "1d")
	if err == nil {
		t.Error("expected error for 429 response")
	}
}

func TestBinance_FetchHistory_SkipsMalformedRows(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[[1],%s]`, klineRow(base.UnixMilli(), "100", "105", "99", "102", "1000"))
	}))
	defer server.Close()

	b := NewWithBaseURL(server.URL)
	bars, err := b.FetchHistory("BTCUSDT", base, base.AddDate(0, 0, 1), "1d")
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(bars))
	}
}

func TestBinance_IntervalMapping(t *testing.T) {
	b := New()

	tests := []struct {
		in, want string
	}{
		{"1h", "1h"},
		{"4h", "4h"},
		{"1d", "1d"},
		{"1w", "1w"},
		{"bogus", "1d"},
	}
	for _, tt := range tests {
		if got := b.toInterval(tt.in); got != tt.want {
			t.Errorf("toInterval(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

package binance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/newthinker/sigma/internal/collector"
	"github.com/newthinker/sigma/internal/core"
)

var _ collector.HistoryProvider = (*Binance)(nil)

const (
	baseURL = "https://api.binance.com"

	// Binance caps klines responses at 1000 rows per request.
	maxLimit = 1000
)

// Binance fetches historical klines from the Binance spot API.
// The public klines endpoint needs no credentials.
type Binance struct {
	client  *http.Client
	baseURL string
}

// New creates a new Binance provider
func New() *Binance {
	return &Binance{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Binance provider with custom base URL (for testing)
func NewWithBaseURL(url string) *Binance {
	b := New()
	b.baseURL = url
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchHistory fetches historical OHLCV data from Binance, paging
// through the klines endpoint until the range is covered.
func (b *Binance) FetchHistory(symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	var data []core.OHLCV
	cursor := start

	for cursor.Before(end) {
		page, err := b.fetchPage(symbol, cursor, end, interval)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		data = append(data, page...)
		cursor = page[len(page)-1].Time.Add(time.Millisecond)

		if len(page) < maxLimit {
			break
		}
	}

	return data, nil
}

func (b *Binance) fetchPage(symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&startTime=%d&endTime=%d&limit=%d",
		b.baseURL, symbol, b.toInterval(interval), start.UnixMilli(), end.UnixMilli(), maxLimit)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var klines [][]any
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	data := make([]core.OHLCV, 0, len(klines))
	for _, k := range klines {
		if len(k) < 6 {
			continue
		}

		openTime, _ := k[0].(float64)
		openStr, _ := k[1].(string)
		highStr, _ := k[2].(string)
		lowStr, _ := k[3].(string)
		closeStr, _ := k[4].(string)
		volumeStr, _ := k[5].(string)

		open, _ := strconv.ParseFloat(openStr, 64)
		high, _ := strconv.ParseFloat(highStr, 64)
		low, _ := strconv.ParseFloat(lowStr, 64)
		close, _ := strconv.ParseFloat(closeStr, 64)
		volume, _ := strconv.ParseFloat(volumeStr, 64)

		data = append(data, core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    close,
			Volume:   volume,
			Time:     time.UnixMilli(int64(openTime)),
		})
	}

	return data, nil
}

func (b *Binance) toInterval(interval string) string {
	switch interval {
	case "1m", "5m", "15m", "30m":
		return interval
	case "1h", "2h", "4h":
		return interval
	case "1d":
		return "1d"
	case "1w":
		return "1w"
	default:
		return "1d"
	}
}

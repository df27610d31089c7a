package backtest

import (
	"testing"
	"time"
)

func seriesWithStep(n int, step time.Duration) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * step)
	}
	return times
}

func TestInferPeriodsPerYear_Buckets(t *testing.T) {
	tests := []struct {
		name string
		step time.Duration
		want int
	}{
		{"minute bars", time.Minute, 8760},
		{"hourly bars", time.Hour, 8760},
		{"4h bars", 4 * time.Hour, 2190},
		{"daily bars", 24 * time.Hour, 365},
		{"weekly bars", 7 * 24 * time.Hour, 52},
		{"monthly bars", 30 * 24 * time.Hour, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferPeriodsPerYear(seriesWithStep(10, tt.step))
			if got != tt.want {
				t.Errorf("InferPeriodsPerYear() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInferPeriodsPerYear_TooShort(t *testing.T) {
	if got := InferPeriodsPerYear(nil); got != 365 {
		t.Errorf("empty index: got %d, want 365", got)
	}
	if got := InferPeriodsPerYear(seriesWithStep(1, time.Hour)); got != 365 {
		t.Errorf("single element: got %d, want 365", got)
	}
}

func TestInferPeriodsPerYear_UsesMedian(t *testing.T) {
	// Daily cadence with one large gap (e.g. an exchange outage): the
	// median ignores the outlier and the series still classifies daily.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.AddDate(0, 0, 1),
		base.AddDate(0, 0, 2),
		base.AddDate(0, 0, 3),
		base.AddDate(0, 0, 33), // 30-day gap
		base.AddDate(0, 0, 34),
	}

	if got := InferPeriodsPerYear(times); got != 365 {
		t.Errorf("got %d, want 365", got)
	}
}

func TestMedianDuration_EvenCount(t *testing.T) {
	ds := []time.Duration{time.Hour, 3 * time.Hour}
	if got := medianDuration(ds); got != 2*time.Hour {
		t.Errorf("medianDuration = %v, want 2h", got)
	}
}

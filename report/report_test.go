package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sw965/chlorine/report"
	"github.com/sw965/chlorine/rl"
)

func results(rewards ...float64) rl.Results {
	rs := make(rl.Results, len(rewards))
	for i, r := range rewards {
		rs[i] = rl.EpisodeResult{Reward: r, Usage: 10 * r, Safe: true}
	}
	return rs
}

func TestChart(t *testing.T) {
	var buf bytes.Buffer
	err := report.Chart(&buf, 2,
		report.Series{Name: "fixed-interval", Results: results(1, 2, 3, 4)},
		report.Series{Name: "q-learning", Results: results(0, 1, 5)},
	)
	if err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"fixed-interval", "q-learning", "reward per episode", "chlorine usage per episode"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart is missing %q", want)
		}
	}
}

func TestChartInvalid(t *testing.T) {
	tests := []struct {
		name   string
		window int
		series []report.Series
	}{
		{name: "異常_系列なし", window: 2},
		{name: "異常_窓0", window: 0, series: []report.Series{{Name: "x", Results: results(1)}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := report.Chart(&bytes.Buffer{}, tc.window, tc.series...); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestSummary(t *testing.T) {
	rows := []rl.Summary{
		{Name: "fixed", Episodes: 10, MeanReward: 12.5, MeanUsage: 200, SafeRatio: 0.95},
		{Name: "random", Episodes: 10, MeanReward: -3, MeanUsage: 150, SafeRatio: 0.2},
	}

	tests := []struct {
		name      string
		colored   bool
		wantColor bool
	}{
		{name: "正常_色なし", colored: false, wantColor: false},
		{name: "正常_色付き", colored: true, wantColor: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := report.Summary(&buf, rows, tc.colored); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			if got := strings.Contains(out, "\x1b["); got != tc.wantColor {
				t.Errorf("escape codes present = %t, want %t", got, tc.wantColor)
			}
			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			if len(lines) != 3 {
				t.Fatalf("want header and 2 rows, got %d lines:\n%s", len(lines), out)
			}
			if !strings.Contains(lines[1], "95.0%") || !strings.Contains(lines[2], "20.0%") {
				t.Errorf("safe ratios not rendered:\n%s", out)
			}
		})
	}
}

func TestSummaryEmpty(t *testing.T) {
	if err := report.Summary(&bytes.Buffer{}, nil, false); !errors.Is(err, report.ErrNoSeries) {
		t.Errorf("want ErrNoSeries, got %v", err)
	}
}

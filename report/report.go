// Package report renders comparison results: an HTML page of learning
// curves and a console table.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/logrusorgru/aurora"
	"github.com/sw965/chlorine/rl"
)

var ErrNoSeries = errors.New("no series to report")

// SafeThreshold is the safe-episode ratio a policy must reach to be shown
// in green.
const SafeThreshold = 0.9

type Series struct {
	Name    string
	Results rl.Results
}

func movingLine(title string, window int, series []Series, values func(rl.Results) []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("moving average, window %d", window),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	curves := make([][]float64, len(series))
	longest := 0
	for i, s := range series {
		curves[i] = rl.MovingAverage(values(s.Results), window)
		longest = max(longest, len(curves[i]))
	}

	// x は窓の末尾のエピソード番号
	xs := make([]string, longest)
	for i := range xs {
		xs[i] = strconv.Itoa(i + window)
	}
	line.SetXAxis(xs)

	for i, s := range series {
		items := make([]opts.LineData, len(curves[i]))
		for j, v := range curves[i] {
			items[j] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, items)
	}
	return line
}

// Chart writes a page with reward and chlorine usage curves, one line per
// series.
func Chart(w io.Writer, window int, series ...Series) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	if window <= 0 {
		return fmt.Errorf("window must be positive, got %d", window)
	}
	page := components.NewPage()
	page.AddCharts(
		movingLine("reward per episode", window, series, rl.Results.Rewards),
		movingLine("chlorine usage per episode (kg)", window, series, rl.Results.Usages),
	)
	return page.Render(w)
}

// Summary writes one row per policy. With colored set the safe ratio is
// green at or above SafeThreshold and red below it.
func Summary(w io.Writer, rows []rl.Summary, colored bool) error {
	if len(rows) == 0 {
		return ErrNoSeries
	}
	au := aurora.NewAurora(colored)
	header := fmt.Sprintf("%-12s %8s %18s %18s %8s", "policy", "episodes", "reward", "usage (kg)", "safe")
	if _, err := fmt.Fprintln(w, au.Bold(header)); err != nil {
		return err
	}
	for _, r := range rows {
		safe := fmt.Sprintf("%7.1f%%", 100*r.SafeRatio)
		var cell aurora.Value
		if r.SafeRatio >= SafeThreshold {
			cell = au.Green(safe)
		} else {
			cell = au.Red(safe)
		}
		_, err := fmt.Fprintf(w, "%-12s %8d %9.3f ± %-6.3f %9.2f ± %-6.2f %s\n",
			r.Name, r.Episodes, r.MeanReward, r.StdReward, r.MeanUsage, r.StdUsage, cell)
		if err != nil {
			return err
		}
	}
	return nil
}

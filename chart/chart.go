// Package chart plots how fast policy evaluation runs converge.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is the per-sweep delta trace of one evaluation run.
type Series struct {
	Name   string
	Deltas []float64
}

// Convergence renders a line chart of sweep deltas as an HTML page.
func Convergence(w io.Writer, title string, series ...Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to plot")
	}

	sweeps := 0
	positive := true
	for _, s := range series {
		sweeps = max(sweeps, len(s.Deltas))
		for _, d := range s.Deltas {
			positive = positive && d > 0
		}
	}

	// log scale only works without zero deltas
	axis := "value"
	if positive {
		axis = "log"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sweep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "max |Δv|", Type: axis}),
	)

	var steps []string
	for i := 1; i <= sweeps; i++ {
		steps = append(steps, fmt.Sprintf("%d", i))
	}
	line = line.SetXAxis(steps)

	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Deltas))
		for _, d := range s.Deltas {
			items = append(items, opts.LineData{Value: d})
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(
		line,
	)
	return page.Render(w)
}

// WriteFile renders the chart to path, creating parent directories.
func WriteFile(path, title string, series ...Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return Convergence(f, title, series...)
}

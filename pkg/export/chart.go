package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/loadplan/core/model"
)

// WriteHTML renders a bar chart comparing each vehicle's load with its
// capacity.
func WriteHTML(w io.Writer, plans ...model.Plan) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Vehicle load", Subtitle: fmt.Sprintf("%d plans", len(plans))}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Vehicle"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kg"}),
	)

	var (
		xAxis    []string
		load     []opts.BarData
		capacity []opts.BarData
	)
	for i, p := range plans {
		name := p.VehicleID
		if name == "" {
			name = fmt.Sprintf("plan %d", i+1)
		}
		xAxis = append(xAxis, name)
		load = append(load, opts.BarData{Value: p.Stats.TotalWeight})
		capacity = append(capacity, opts.BarData{Value: p.Capacity})
	}
	bar.SetXAxis(xAxis).
		AddSeries("Load", load).
		AddSeries("Capacity", capacity)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

package comprehensive

import (
	"fmt"
	"strconv"

	"precond-report/internal/aggregate"
	"precond-report/internal/dataset"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/mappings"

	"github.com/sirupsen/logrus"
)

const Title = "Comprehensive Configuration Sweep Results"

var Schema = dataset.Schema{
	Name: "comprehensive",
	Dimensions: []dataset.Column{
		dataset.NumWriters,
		dataset.WriterRate,
		dataset.ReaderRate,
		dataset.KeyOverlapRatio,
	},
	Metrics: []dataset.Column{
		dataset.PreconditionFailureRate,
		dataset.WriteTPS,
		dataset.WriteP99,
	},
}

type ComprehensivePlotGenerator struct {
	logger *logrus.Logger
}

func NewComprehensivePlotGenerator(logger *logrus.Logger) *ComprehensivePlotGenerator {
	return &ComprehensivePlotGenerator{logger: logger}
}

type PlotOptions struct {
	FailureTarget float64
	// TopN is the number of configurations in the ranking panel.
	TopN int
}

func (g *ComprehensivePlotGenerator) Build(ds *dataset.Dataset, opts PlotOptions) (*figure.Figure, error) {
	if err := Schema.Validate(ds); err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"dataset": ds.ID,
		"rows":    ds.Len(),
	}).Info("Loaded configurations")

	failureLabel := mappings.Label(dataset.PreconditionFailureRate)
	threshold := figure.HLine{
		Y:     opts.FailureTarget * 100,
		Label: fmt.Sprintf("%.0f%% threshold", opts.FailureTarget*100),
		Color: "red",
		Line:  figure.Dashed,
	}

	panels := []figure.Panel{
		{
			Row: 0, Col: 0,
			Title:   "Failure Rate vs Writer Rate",
			XLabel:  mappings.Label(dataset.WriterRate),
			YLabel:  failureLabel,
			XColumn: dataset.WriterRate,
			YColumn: dataset.PreconditionFailureRate,
			Series: scatterBy(ds, dataset.NumWriters, dataset.WriterRate, dataset.PreconditionFailureRate,
				func(v float64) string { return formatCount(v) + " writers" }),
			HLines: []figure.HLine{threshold},
			Legend: true,
		},
		{
			Row: 0, Col: 1,
			Title:   "Write TPS vs Number of Writers",
			XLabel:  mappings.Label(dataset.NumWriters),
			YLabel:  mappings.Label(dataset.WriteTPS),
			XColumn: dataset.NumWriters,
			YColumn: dataset.WriteTPS,
			Series: scatterBy(ds, dataset.KeyOverlapRatio, dataset.NumWriters, dataset.WriteTPS,
				func(v float64) string { return fmt.Sprintf("Overlap %.1f", v) }),
			Legend: true,
		},
		heatmapPanel(ds),
		rankingPanel(ds, opts.TopN),
		{
			Row: 2, Col: 0,
			Title:   "Failure Rate vs Overlap",
			XLabel:  mappings.Label(dataset.KeyOverlapRatio),
			YLabel:  failureLabel,
			XColumn: dataset.KeyOverlapRatio,
			YColumn: dataset.PreconditionFailureRate,
			Series: scatterBy(ds, dataset.ReaderRate, dataset.KeyOverlapRatio, dataset.PreconditionFailureRate,
				func(v float64) string { return fmt.Sprintf("Reader rate %.0f", v) }),
			Legend: true,
		},
		{
			Row: 2, Col: 1,
			Title:   "TPS vs Failure Rate",
			XLabel:  failureLabel,
			YLabel:  mappings.Label(dataset.WriteTPS),
			XColumn: dataset.PreconditionFailureRate,
			YColumn: dataset.WriteTPS,
			Series: []figure.Series{{
				Kind:      figure.Scatter,
				X:         ds.Percents(dataset.PreconditionFailureRate),
				Y:         ds.Values(dataset.WriteTPS),
				ColorBy:   ds.Values(dataset.NumWriters),
				ColorName: "# Writers",
				ColorMap:  "viridis",
			}},
			Legend: true,
		},
		{
			Row: 2, Col: 2,
			Title:   "Latency vs Failure Rate",
			XLabel:  mappings.Label(dataset.WriteP99),
			YLabel:  failureLabel,
			XColumn: dataset.WriteP99,
			YColumn: dataset.PreconditionFailureRate,
			Series: []figure.Series{{
				Kind:      figure.Scatter,
				X:         ds.Values(dataset.WriteP99),
				Y:         ds.Percents(dataset.PreconditionFailureRate),
				ColorBy:   ds.Values(dataset.WriterRate),
				ColorName: "Writer Rate",
				ColorMap:  "plasma",
			}},
			Legend: true,
		},
	}

	return &figure.Figure{Title: Title, Rows: 3, Cols: 3, Panels: panels}, nil
}

// scatterBy returns one scatter series per distinct value of group.
func scatterBy(ds *dataset.Dataset, group, x, y dataset.Column, name func(float64) string) []figure.Series {
	var out []figure.Series
	for i, v := range ds.Distinct(group) {
		subset := ds.Filter(func(r dataset.Row) bool { return r.Value(group) == v })
		out = append(out, figure.Series{
			Name:  name(v),
			Kind:  figure.Scatter,
			X:     subset.Percents(x),
			Y:     subset.Percents(y),
			Style: i,
		})
	}
	return out
}

func heatmapPanel(ds *dataset.Dataset) figure.Panel {
	pivot := aggregate.Pivot(ds, dataset.NumWriters, dataset.KeyOverlapRatio, dataset.PreconditionFailureRate).Scale(100)
	return figure.Panel{
		Row: 0, Col: 2,
		Title:  "Failure Rate Heatmap (%)",
		XLabel: mappings.Label(dataset.KeyOverlapRatio),
		YLabel: mappings.Label(dataset.NumWriters),
		Heatmap: &figure.Heatmap{
			RowValues: pivot.Rows,
			ColValues: pivot.Cols,
			Cells:     pivot.Cells,
			Min:       0,
			Max:       100,
			Palette:   "RdYlGn",
			Reverse:   true,
			Annotate:  true,
		},
	}
}

// rankingPanel lists the n configurations with the lowest failure rate, best
// on top.
func rankingPanel(ds *dataset.Dataset, n int) figure.Panel {
	best := ds.SortedBy(dataset.PreconditionFailureRate).Head(n)
	k := best.Len()

	categories := make([]string, k)
	values := make([]float64, k)
	for i, r := range best.Rows {
		// Horizontal bars grow upwards from index 0.
		categories[k-1-i] = r.DisplayLabel()
		values[k-1-i] = r.Percent(dataset.PreconditionFailureRate)
	}

	return figure.Panel{
		Row: 1, Col: 0, ColSpan: 3,
		Title:      fmt.Sprintf("Top %d Best Configurations (Lowest Failure Rate)", k),
		XLabel:     mappings.Label(dataset.PreconditionFailureRate),
		Categories: categories,
		Horizontal: true,
		Bars:       []figure.Bar{{Name: "failure rate", Values: values, Style: 7}},
	}
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package sweep

import (
	"fmt"

	"precond-report/internal/dataset"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/mappings"

	"github.com/sirupsen/logrus"
)

var Schema = dataset.Schema{
	Name: "sweep",
	Metrics: []dataset.Column{
		dataset.PreconditionFailureRate,
		dataset.WriteTPS,
		dataset.WriteP50,
		dataset.WriteP95,
		dataset.WriteP99,
		dataset.PrecondP50,
		dataset.PrecondP99,
	},
}

type SweepPlotGenerator struct {
	logger *logrus.Logger
}

func NewSweepPlotGenerator(logger *logrus.Logger) *SweepPlotGenerator {
	return &SweepPlotGenerator{logger: logger}
}

type PlotOptions struct {
	X     dataset.Column
	Title string
	// FailureTarget is a fraction drawn as the threshold line.
	FailureTarget float64
}

// SchemaFor returns the columns a sweep over x reads.
func SchemaFor(x dataset.Column) dataset.Schema {
	return Schema.With(x)
}

func (g *SweepPlotGenerator) Build(ds *dataset.Dataset, opts PlotOptions) (*figure.Figure, error) {
	if !opts.X.IsNumeric() {
		return nil, fmt.Errorf("x column %s is not numeric", opts.X)
	}
	if err := SchemaFor(opts.X).Validate(ds); err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"dataset": ds.ID,
		"x":       opts.X.String(),
		"rows":    ds.Len(),
	}).Debug("Building sweep report")

	sorted := ds.SortedBy(opts.X)
	xs := sorted.Values(opts.X)
	xLabel := opts.X.String()

	series := func(name string, c dataset.Column, style int) figure.Series {
		return figure.Series{
			Name:  name,
			Kind:  figure.LinePoints,
			X:     xs,
			Y:     sorted.Percents(c),
			Style: style,
		}
	}

	failure := series("", dataset.PreconditionFailureRate, 0)
	tps := series("", dataset.WriteTPS, 2)
	tps.Color = "green"

	return &figure.Figure{
		Title: opts.Title,
		Rows:  2,
		Cols:  2,
		Panels: []figure.Panel{
			{
				Row: 0, Col: 0,
				XLabel:  xLabel,
				YLabel:  mappings.Label(dataset.PreconditionFailureRate),
				XColumn: opts.X,
				YColumn: dataset.PreconditionFailureRate,
				Series:  []figure.Series{failure},
				HLines: []figure.HLine{{
					Y:     opts.FailureTarget * 100,
					Label: fmt.Sprintf("%.0f%% threshold", opts.FailureTarget*100),
					Color: "red",
					Line:  figure.Dashed,
				}},
				Legend: true,
			},
			{
				Row: 0, Col: 1,
				XLabel:  xLabel,
				YLabel:  mappings.Label(dataset.WriteTPS),
				XColumn: opts.X,
				YColumn: dataset.WriteTPS,
				Series:  []figure.Series{tps},
			},
			{
				Row: 1, Col: 0,
				XLabel:  xLabel,
				YLabel:  "Write Latency (ms)",
				XColumn: opts.X,
				YColumn: dataset.WriteP50,
				Series: []figure.Series{
					series("p50", dataset.WriteP50, 0),
					series("p95", dataset.WriteP95, 1),
					series("p99", dataset.WriteP99, 2),
				},
				Legend: true,
			},
			{
				Row: 1, Col: 1,
				XLabel:  xLabel,
				YLabel:  "Precondition Failure Latency (ms)",
				XColumn: opts.X,
				YColumn: dataset.PrecondP50,
				Series: []figure.Series{
					series("p50", dataset.PrecondP50, 0),
					series("p99", dataset.PrecondP99, 2),
				},
				Legend: true,
			},
		},
	}, nil
}

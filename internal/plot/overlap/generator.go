package overlap

import (
	"fmt"
	"math"

	"precond-report/internal/aggregate"
	"precond-report/internal/config"
	"precond-report/internal/dataset"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/mappings"

	"github.com/sirupsen/logrus"
)

const NoData = "No overlap ratio data"

var Schema = dataset.Schema{
	Name:       "overlap_ratio",
	Dimensions: []dataset.Column{dataset.KeyOverlapRatio},
	Metrics: []dataset.Column{
		dataset.PreconditionFailureRate,
		dataset.RetrySuccessRate,
		dataset.WriteTPS,
	},
}

type OverlapPlotGenerator struct {
	logger *logrus.Logger
}

func NewOverlapPlotGenerator(logger *logrus.Logger) *OverlapPlotGenerator {
	return &OverlapPlotGenerator{logger: logger}
}

type PlotOptions struct {
	FailureTarget float64
	// Subset restricts the rows to one writer configuration with overlap > 0.
	Subset *config.OverlapSubset
}

func SchemaFor(opts PlotOptions) dataset.Schema {
	if opts.Subset == nil {
		return Schema
	}
	return Schema.With(dataset.NumWriters, dataset.WriterRate)
}

// Select returns the rows in the subset, keeping dataset order.
func Select(ds *dataset.Dataset, subset *config.OverlapSubset) *dataset.Dataset {
	if subset == nil {
		return ds
	}
	return ds.Filter(func(r dataset.Row) bool {
		return r.Value(dataset.NumWriters) == float64(subset.NumWriters) &&
			math.Abs(r.Value(dataset.WriterRate)-subset.WriterRate) < 1e-9 &&
			r.Value(dataset.KeyOverlapRatio) > 0
	})
}

// Rows returns the rows the report plots, ordered by overlap ratio.
func Rows(ds *dataset.Dataset, subset *config.OverlapSubset) *dataset.Dataset {
	return Select(ds, subset).SortedBy(dataset.KeyOverlapRatio)
}

func (g *OverlapPlotGenerator) Build(ds *dataset.Dataset, opts PlotOptions) (*figure.Figure, error) {
	if err := SchemaFor(opts).Validate(ds); err != nil {
		return nil, err
	}

	target := opts.FailureTarget * 100
	fig := &figure.Figure{
		Title: fmt.Sprintf("Overlap Ratio Sweep: Finding the %.0f%% Failure Sweet Spot", target),
		Rows:  2,
		Cols:  1,
	}

	rows := Rows(ds, opts.Subset)
	failure := g.FailurePanel(ds, opts)
	if rows.Empty() {
		fig.Panels = []figure.Panel{
			failure,
			{Row: 1, Col: 0, Title: "Write Throughput vs Overlap Ratio", Note: NoData},
		}
		return fig, nil
	}

	fig.Panels = []figure.Panel{
		failure,
		{
			Row: 1, Col: 0,
			Title:   "Write Throughput vs Overlap Ratio",
			XLabel:  mappings.Label(dataset.KeyOverlapRatio),
			YLabel:  mappings.Label(dataset.WriteTPS),
			XColumn: dataset.KeyOverlapRatio,
			YColumn: dataset.WriteTPS,
			Series: []figure.Series{{
				Name:  "Write TPS",
				Kind:  figure.LinePoints,
				X:     rows.Values(dataset.KeyOverlapRatio),
				Y:     rows.Values(dataset.WriteTPS),
				Color: "blue",
			}},
			Legend: true,
		},
	}
	return fig, nil
}

// FailurePanel draws failure and retry success rates against the overlap
// ratio with the target line and the sweet spot. Without rows in the subset
// it returns a note panel. The panel sits at row 0, column 0.
func (g *OverlapPlotGenerator) FailurePanel(ds *dataset.Dataset, opts PlotOptions) figure.Panel {
	selected := Select(ds, opts.Subset)
	g.logger.WithFields(logrus.Fields{
		"dataset": ds.ID,
		"rows":    selected.Len(),
	}).Info("Loaded overlap ratio configurations")

	if selected.Empty() {
		return figure.Panel{Title: "Overlap Ratio Analysis (Not Available)", Note: NoData}
	}

	rows := selected.SortedBy(dataset.KeyOverlapRatio)
	x := rows.Values(dataset.KeyOverlapRatio)
	target := opts.FailureTarget * 100

	title := "Failure Rate and Retry Success vs Overlap Ratio"
	if s := opts.Subset; s != nil {
		title = fmt.Sprintf("Overlap Ratio Impact on Failures and Retries (%d Writers @ %g TPS)", s.NumWriters, s.WriterRate)
	}

	p := figure.Panel{
		Title:   title,
		XLabel:  mappings.Label(dataset.KeyOverlapRatio),
		YLabel:  mappings.Label(dataset.PreconditionFailureRate),
		Y2Label: mappings.Label(dataset.RetrySuccessRate),
		XColumn: dataset.KeyOverlapRatio,
		YColumn: dataset.RetrySuccessRate,
		Series: []figure.Series{
			{
				Name:  "Precondition Failure Rate",
				Kind:  figure.LinePoints,
				X:     x,
				Y:     rows.Percents(dataset.PreconditionFailureRate),
				Style: 3,
				Color: "red",
			},
			{
				Name:  "Retry Success Rate",
				Kind:  figure.LinePoints,
				X:     x,
				Y:     rows.Percents(dataset.RetrySuccessRate),
				Style: 1,
				Color: "green",
				Axis:  figure.Secondary,
			},
		},
		HLines: []figure.HLine{{
			Y:     target,
			Label: fmt.Sprintf("%.0f%% Target", target),
			Color: "orange",
			Line:  figure.Dashed,
		}},
		Legend: true,
	}

	// Ties go to the first row in dataset order, not overlap order.
	spot, _, err := aggregate.FindSweetSpot(selected, dataset.PreconditionFailureRate, opts.FailureTarget)
	if err != nil {
		g.logger.WithError(err).WithField("dataset", ds.ID).Debug("No sweet spot")
		return p
	}
	p.Annotations = []figure.Annotation{{
		X:    spot.Value(dataset.KeyOverlapRatio),
		Y:    spot.Percent(dataset.PreconditionFailureRate),
		Text: "Sweet Spot",
	}}
	g.logger.WithFields(logrus.Fields{
		"dataset":       ds.ID,
		"overlap_ratio": fmt.Sprintf("%.2f", spot.Value(dataset.KeyOverlapRatio)),
		"failure_rate":  fmt.Sprintf("%.2f%%", spot.Percent(dataset.PreconditionFailureRate)),
	}).Info("Sweet spot")
	return p
}

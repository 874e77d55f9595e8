package comprehensive

import (
	"precond-report/internal/config"
	"precond-report/internal/dataset"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/latency"
	"precond-report/internal/plot/overlap"

	"github.com/sirupsen/logrus"
)

// CombinedSchema covers the read, write and failure panels and the embedded
// overlap subset.
var CombinedSchema = dataset.Schema{
	Name: "comprehensive_combined",
	Dimensions: []dataset.Column{
		dataset.NumReaders,
		dataset.ReaderRate,
		dataset.NumWriters,
		dataset.WriterRate,
		dataset.KeyOverlapRatio,
	},
	Metrics: []dataset.Column{
		dataset.ReadP50,
		dataset.ReadP99,
		dataset.WriteP50,
		dataset.WriteP99,
		dataset.PreconditionFailureRate,
		dataset.RetrySuccessRate,
	},
}

// CombinedPlotGenerator stacks the per-configuration latency and failure
// panels over the overlap analysis in one artifact.
type CombinedPlotGenerator struct {
	latency *latency.LatencyPlotGenerator
	overlap *overlap.OverlapPlotGenerator
	logger  *logrus.Logger
}

func NewCombinedPlotGenerator(logger *logrus.Logger) *CombinedPlotGenerator {
	return &CombinedPlotGenerator{
		latency: latency.NewLatencyPlotGenerator(logger),
		overlap: overlap.NewOverlapPlotGenerator(logger),
		logger:  logger,
	}
}

type CombinedOptions struct {
	FailureTarget float64
	// Subset selects the overlap sweep embedded in the dataset. Nil uses
	// config.DefaultOverlapSubset.
	Subset   *config.OverlapSubset
	Baseline *dataset.Row
}

func (g *CombinedPlotGenerator) Build(ds *dataset.Dataset, opts CombinedOptions) (*figure.Figure, error) {
	if err := CombinedSchema.Validate(ds); err != nil {
		return nil, err
	}

	subset := opts.Subset
	if subset == nil {
		subset = &config.DefaultOverlapSubset
	}

	g.logger.WithFields(logrus.Fields{
		"dataset":  ds.ID,
		"rows":     ds.Len(),
		"baseline": opts.Baseline != nil,
	}).Debug("Building combined comprehensive report")

	axes := []latency.Axis{latency.Read, latency.Write, latency.Precondition}
	panels := make([]figure.Panel, 0, len(axes)+1)
	for i, axis := range axes {
		p := g.latency.Panel(ds, latency.PlotOptions{Axis: axis, Baseline: opts.Baseline})
		p.Row = i
		panels = append(panels, p)
	}

	p := g.overlap.FailurePanel(ds, overlap.PlotOptions{FailureTarget: opts.FailureTarget, Subset: subset})
	p.Row = len(axes)
	panels = append(panels, p)

	return &figure.Figure{Title: Title, Rows: len(panels), Cols: 1, Panels: panels}, nil
}

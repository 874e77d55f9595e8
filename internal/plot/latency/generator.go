package latency

import (
	"fmt"
	"math"

	"precond-report/internal/aggregate"
	"precond-report/internal/dataset"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/mappings"

	"github.com/sirupsen/logrus"
)

// maxTicks bounds the configuration labels shown on the x axis.
const maxTicks = 30

type Axis int

const (
	Writers Axis = iota
	Read
	Write
	Precondition
)

func (a Axis) String() string {
	switch a {
	case Writers:
		return "writers"
	case Read:
		return "read"
	case Write:
		return "write"
	case Precondition:
		return "precondition"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Suffix is appended to the dataset name to form the artifact name.
func (a Axis) Suffix() string {
	switch a {
	case Read:
		return "_read_latency"
	case Write:
		return "_write_latency"
	case Precondition:
		return "_precondition_failure"
	default:
		return "_latency"
	}
}

var (
	writerDims = []dataset.Column{dataset.NumWriters, dataset.WriterRate}
	readFirst  = []dataset.Column{dataset.NumReaders, dataset.ReaderRate, dataset.NumWriters, dataset.WriterRate}
	writeFirst = []dataset.Column{dataset.NumWriters, dataset.WriterRate, dataset.NumReaders, dataset.ReaderRate}
)

func SchemaFor(a Axis) dataset.Schema {
	switch a {
	case Read:
		return dataset.Schema{
			Name:       "read_latency",
			Dimensions: readFirst,
			Metrics:    []dataset.Column{dataset.ReadP50, dataset.ReadP99},
		}
	case Write:
		return dataset.Schema{
			Name:       "write_latency",
			Dimensions: writeFirst,
			Metrics:    []dataset.Column{dataset.WriteP50, dataset.WriteP99},
		}
	case Precondition:
		return dataset.Schema{
			Name:       "precondition_failure",
			Dimensions: writerDims,
			Metrics:    []dataset.Column{dataset.PreconditionFailureRate},
		}
	default:
		return dataset.Schema{
			Name:       "latency",
			Dimensions: writerDims,
			Metrics:    []dataset.Column{dataset.WriteP50, dataset.WriteP99, dataset.ReadP50, dataset.ReadP99},
		}
	}
}

type LatencyPlotGenerator struct {
	logger *logrus.Logger
}

func NewLatencyPlotGenerator(logger *logrus.Logger) *LatencyPlotGenerator {
	return &LatencyPlotGenerator{logger: logger}
}

type PlotOptions struct {
	Axis Axis
	// Baseline is the reference row, nil when no baseline exists.
	Baseline *dataset.Row
}

func (g *LatencyPlotGenerator) Build(ds *dataset.Dataset, opts PlotOptions) (*figure.Figure, error) {
	if err := SchemaFor(opts.Axis).Validate(ds); err != nil {
		return nil, err
	}
	return &figure.Figure{Rows: 1, Cols: 1, Panels: []figure.Panel{g.Panel(ds, opts)}}, nil
}

// Panel draws one axis at row 0, column 0. ds must already satisfy the
// axis schema.
func (g *LatencyPlotGenerator) Panel(ds *dataset.Dataset, opts PlotOptions) figure.Panel {
	g.logger.WithFields(logrus.Fields{
		"dataset":  ds.ID,
		"axis":     opts.Axis.String(),
		"baseline": opts.Baseline != nil,
	}).Debug("Building latency report")

	var panel figure.Panel
	switch opts.Axis {
	case Read:
		panel = percentilePanel(ds.SortedBy(readFirst...), opts.Baseline, percentiles{
			title:  "Read Latency vs Configuration",
			yLabel: "Read Latency (ms)",
			name:   "Reader",
			p50:    dataset.ReadP50,
			p99:    dataset.ReadP99,
			colors: [2]string{"green", "olive"},
			label:  readLabel,
		})
	case Write:
		panel = percentilePanel(ds.SortedBy(writeFirst...), opts.Baseline, percentiles{
			title:  "Write Latency vs Configuration",
			yLabel: "Write Latency (ms)",
			name:   "Writer",
			p50:    dataset.WriteP50,
			p99:    dataset.WriteP99,
			colors: [2]string{"blue", "steel"},
			label:  writeLabel,
		})
	case Precondition:
		panel = preconditionPanel(ds, opts.Baseline)
	default:
		panel = writersPanel(ds.SortedBy(writerDims...), opts.Baseline)
	}

	panel.TickStep = figure.TickStep(len(panel.Categories), maxTicks)
	panel.RotateTicks = true
	panel.Legend = true
	return panel
}

func index(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func labels(ds *dataset.Dataset, label func(dataset.Row) string) []string {
	out := make([]string, ds.Len())
	for i, r := range ds.Rows {
		out[i] = label(r)
	}
	return out
}

func count(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(v)
}

func writersLabel(r dataset.Row) string {
	return fmt.Sprintf("W%d_R%.2f", count(r.Value(dataset.NumWriters)), r.Value(dataset.WriterRate))
}

func readLabel(r dataset.Row) string {
	return fmt.Sprintf("R%d@%d_W%d@%.2f",
		count(r.Value(dataset.NumReaders)), count(r.Value(dataset.ReaderRate)),
		count(r.Value(dataset.NumWriters)), r.Value(dataset.WriterRate))
}

func writeLabel(r dataset.Row) string {
	return fmt.Sprintf("W%d@%.2f_R%d@%d",
		count(r.Value(dataset.NumWriters)), r.Value(dataset.WriterRate),
		count(r.Value(dataset.NumReaders)), count(r.Value(dataset.ReaderRate)))
}

// baselineLine returns a dotted reference line for c, or false when the
// baseline is absent or lacks the value.
func baselineLine(baseline *dataset.Row, c dataset.Column, label, color string) (figure.HLine, bool) {
	if baseline == nil {
		return figure.HLine{}, false
	}
	v := baseline.Percent(c)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return figure.HLine{}, false
	}
	return figure.HLine{Y: v, Label: fmt.Sprintf(label, v), Color: color, Line: figure.Dotted}, true
}

func writersPanel(ds *dataset.Dataset, baseline *dataset.Row) figure.Panel {
	x := index(ds.Len())
	series := func(name string, c dataset.Column, color string, line figure.LineKind, style int) figure.Series {
		return figure.Series{Name: name, Kind: figure.LinePoints, X: x, Y: ds.Values(c), Color: color, Line: line, Style: style}
	}

	p := figure.Panel{
		Title:      "Latency Trends Across Writer Configurations",
		XLabel:     "Configuration (Writers_WriterRate)",
		YLabel:     "Latency (ms)",
		YColumn:    dataset.WriteP50,
		Categories: labels(ds, writersLabel),
		Series: []figure.Series{
			series("Writer p50", dataset.WriteP50, "blue", figure.Solid, 0),
			series("Writer p99", dataset.WriteP99, "blue", figure.Dashed, 0),
			series("Reader p50", dataset.ReadP50, "green", figure.Solid, 1),
			series("Reader p99", dataset.ReadP99, "green", figure.Dashed, 1),
		},
	}
	if h, ok := baselineLine(baseline, dataset.WriteP50, "Baseline writer p50 (%.1fms)", "blue"); ok {
		p.HLines = append(p.HLines, h)
	}
	if h, ok := baselineLine(baseline, dataset.ReadP50, "Baseline reader p50 (%.1fms)", "green"); ok {
		p.HLines = append(p.HLines, h)
	}
	return p
}

type percentiles struct {
	title, yLabel, name string
	p50, p99            dataset.Column
	colors              [2]string
	label               func(dataset.Row) string
}

func percentilePanel(ds *dataset.Dataset, baseline *dataset.Row, pc percentiles) figure.Panel {
	x := index(ds.Len())
	p := figure.Panel{
		Title:      pc.title,
		YLabel:     pc.yLabel,
		YColumn:    pc.p50,
		Categories: labels(ds, pc.label),
		Series: []figure.Series{
			{Name: pc.name + " p50", Kind: figure.LinePoints, X: x, Y: ds.Values(pc.p50), Color: pc.colors[0]},
			{Name: pc.name + " p99", Kind: figure.LinePoints, X: x, Y: ds.Values(pc.p99), Color: pc.colors[1], Line: figure.Dashed, Style: 1},
		},
	}
	if h, ok := baselineLine(baseline, pc.p50, "Baseline p50 (%.1fms)", pc.colors[0]); ok {
		p.HLines = append(p.HLines, h)
	}
	if h, ok := baselineLine(baseline, pc.p99, "Baseline p99 (%.1fms)", pc.colors[1]); ok {
		p.HLines = append(p.HLines, h)
	}
	return p
}

// preconditionPanel plots the mean failure rate per writer configuration.
// Reader settings do not affect it.
func preconditionPanel(ds *dataset.Dataset, baseline *dataset.Row) figure.Panel {
	grouped := aggregate.GroupBy(ds, writerDims, []dataset.Column{dataset.PreconditionFailureRate})

	categories := make([]string, grouped.Len())
	y := grouped.Means(dataset.PreconditionFailureRate)
	for i, grp := range grouped.Groups {
		categories[i] = fmt.Sprintf("W%d@%.2f", count(grp.Key[0]), grp.Key[1])
		y[i] *= 100
	}

	p := figure.Panel{
		Title:      "Precondition Failure Rate vs Writer Configuration",
		XLabel:     "Writer Configuration (Writers@WriteRate)",
		YLabel:     mappings.Label(dataset.PreconditionFailureRate),
		YColumn:    dataset.PreconditionFailureRate,
		Categories: categories,
		Series: []figure.Series{{
			Name:  "Precondition Failure Rate",
			Kind:  figure.LinePoints,
			X:     index(len(categories)),
			Y:     y,
			Color: "red",
			Style: 3,
		}},
	}

	if baseline != nil {
		label := fmt.Sprintf("Baseline (W%d@%.2f)", count(baseline.Value(dataset.NumWriters)), baseline.Value(dataset.WriterRate))
		if math.IsNaN(baseline.Value(dataset.NumWriters)) {
			label = "Baseline"
		}
		if h, ok := baselineLine(baseline, dataset.PreconditionFailureRate, label+": %.2f%%", "red"); ok {
			p.HLines = append(p.HLines, h)
			p.Title += " (with Baseline Reference)"
		}
	}
	return p
}

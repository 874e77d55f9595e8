package chaos

import (
	"errors"
	"math"
	"strings"

	"precond-report/internal/aggregate"
	"precond-report/internal/config"
	"precond-report/internal/dataset"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/mappings"

	"github.com/sirupsen/logrus"
)

const Title = "Chaos Engineering Test Results"

var Schema = dataset.Schema{
	Name: "chaos",
	Metrics: []dataset.Column{
		dataset.WriteP50,
		dataset.WriteP95,
		dataset.WriteP99,
		dataset.ReadP50,
		dataset.ReadP99,
		dataset.WriteTPS,
		dataset.PreconditionFailureRate,
		dataset.RetrySuccessRate,
		dataset.RetryFailureRate,
	},
}

// degradationMetrics are compared against the first scenario.
var degradationMetrics = []dataset.Column{
	dataset.WriteP99,
	dataset.ReadP99,
	dataset.WriteTPS,
}

type ChaosPlotGenerator struct {
	logger *logrus.Logger
}

func NewChaosPlotGenerator(logger *logrus.Logger) *ChaosPlotGenerator {
	return &ChaosPlotGenerator{logger: logger}
}

type PlotOptions struct {
	// Scenarios names the rows in order. Empty uses the harness scenario list.
	Scenarios []string
}

func (g *ChaosPlotGenerator) Build(ds *dataset.Dataset, opts PlotOptions) (*figure.Figure, error) {
	if err := Schema.Validate(ds); err != nil {
		return nil, err
	}

	labels := opts.Scenarios
	if len(labels) == 0 {
		labels = config.DefaultChaosScenarios
	}

	n := ds.Len()
	if n != len(labels) {
		g.logger.WithFields(logrus.Fields{
			"dataset":   ds.ID,
			"expected":  len(labels),
			"rows":      n,
			"truncated": min(n, len(labels)),
		}).Warn("Scenario count does not match row count")
		n = min(n, len(labels))
	}

	rows := ds.Head(n)
	scenarios := append([]string(nil), labels[:n]...)

	g.logger.WithFields(logrus.Fields{
		"dataset":   ds.ID,
		"scenarios": n,
	}).Info("Loaded chaos scenarios")

	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	line := func(name string, c dataset.Column, style int, color string) figure.Series {
		return figure.Series{
			Name:  name,
			Kind:  figure.LinePoints,
			X:     x,
			Y:     rows.Values(c),
			Style: style,
			Color: color,
		}
	}

	categorical := func(p figure.Panel) figure.Panel {
		p.Categories = scenarios
		p.RotateTicks = true
		return p
	}

	success := make([]float64, n)
	for i, r := range rows.Rows {
		success[i] = 100 - r.Percent(dataset.PreconditionFailureRate)
	}

	panels := []figure.Panel{
		categorical(figure.Panel{
			Row: 0, Col: 0,
			Title:  "Write Latency Under Chaos",
			YLabel: "Write Latency (ms)",
			Series: []figure.Series{
				line("p50", dataset.WriteP50, 0, "blue"),
				line("p95", dataset.WriteP95, 1, "steel"),
				line("p99", dataset.WriteP99, 2, "purple"),
			},
			Legend: true,
		}),
		categorical(figure.Panel{
			Row: 0, Col: 1,
			Title:  "Read Latency Under Chaos",
			YLabel: "Read Latency (ms)",
			Series: []figure.Series{
				line("p50", dataset.ReadP50, 0, "green"),
				line("p99", dataset.ReadP99, 2, "olive"),
			},
			Legend: true,
		}),
		categorical(figure.Panel{
			Row: 1, Col: 0,
			Title:  "Write Throughput Under Chaos",
			YLabel: mappings.Label(dataset.WriteTPS),
			Bars:   []figure.Bar{{Values: rows.Values(dataset.WriteTPS), Style: 0}},
		}),
		categorical(figure.Panel{
			Row: 1, Col: 1,
			Title:  "Write Success Rate Under Chaos",
			YLabel: "Write Success Rate (%)",
			YMin:   figure.Float(0),
			YMax:   figure.Float(105),
			Bars:   []figure.Bar{{Values: success, Colors: familyColors(scenarios)}},
		}),
		categorical(g.degradationPanel(ds.ID, rows, scenarios)),
		categorical(figure.Panel{
			Row: 2, Col: 1,
			Title:  "Retry Effectiveness",
			YLabel: "Rate (%)",
			Bars: []figure.Bar{
				{Name: "Retry Success Rate", Values: rows.Percents(dataset.RetrySuccessRate), Style: 2},
				{Name: "Retry Failure Rate", Values: rows.Percents(dataset.RetryFailureRate), Style: 3},
			},
			Legend: true,
		}),
	}

	return &figure.Figure{Title: Title, Rows: 3, Cols: 2, Panels: panels}, nil
}

// degradationPanel compares each scenario with the first one. Metrics with a
// zero reference value are left out of the chart.
func (g *ChaosPlotGenerator) degradationPanel(id string, rows *dataset.Dataset, scenarios []string) figure.Panel {
	p := figure.Panel{
		Row: 2, Col: 0,
		Title:  "Degradation vs Baseline",
		YLabel: "Change vs Baseline (%)",
		HLines: []figure.HLine{{Y: 0, Color: "black"}},
		Legend: true,
	}
	if rows.Empty() {
		return p
	}

	base := rows.Rows[0]
	for i, metric := range degradationMetrics {
		values := make([]float64, rows.Len())
		degenerate := false
		for j, r := range rows.Rows {
			v, err := aggregate.Degradation(r, base, metric)
			if errors.Is(err, aggregate.ErrDegenerateBaseline) {
				degenerate = true
				v = math.NaN()
			}
			values[j] = v
		}
		if degenerate {
			g.logger.WithFields(logrus.Fields{
				"dataset":  id,
				"metric":   metric.String(),
				"scenario": scenarios[0],
			}).Warn("Baseline value is zero, degradation has no data")
		}
		p.Bars = append(p.Bars, figure.Bar{
			Name:   mappings.ShortLabel(metric),
			Values: values,
			Style:  i,
		})
	}
	return p
}

// familyColors colors the first scenario as the reference and groups the rest
// by fault type.
func familyColors(scenarios []string) []string {
	out := make([]string, len(scenarios))
	for i, s := range scenarios {
		switch {
		case i == 0:
			out[i] = "green"
		case strings.Contains(s, "Net"):
			out[i] = "orange"
		case strings.Contains(s, "CPU"):
			out[i] = "red"
		default:
			out[i] = "purple"
		}
	}
	return out
}

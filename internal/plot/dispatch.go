package plot

import (
	"fmt"
	"path"
	"strings"

	"precond-report/internal/dataset"
	"precond-report/internal/plot/chaos"
	"precond-report/internal/plot/comprehensive"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/latency"
	"precond-report/internal/plot/overlap"
	"precond-report/internal/plot/sweep"
)

const (
	DefaultX     = "num_writers"
	DefaultTitle = "Test Results"
)

type Mode int

const (
	// ModeAuto picks the variant from the dataset name.
	ModeAuto Mode = iota
	ModeSweep
	ModeComprehensive
	// ModeComprehensiveCombined stacks read latency, write latency, failure
	// rate and the embedded overlap sweep in one artifact.
	ModeComprehensiveCombined
	ModeChaos
	ModeOverlapRatio
	ModeLatency
	ModeReadLatency
	ModeWriteLatency
	ModePreconditionFailure
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeSweep:
		return "sweep"
	case ModeComprehensive:
		return "comprehensive"
	case ModeComprehensiveCombined:
		return "comprehensive_combined"
	case ModeChaos:
		return "chaos"
	case ModeOverlapRatio:
		return "overlap_ratio"
	case ModeLatency:
		return "latency"
	case ModeReadLatency:
		return "read_latency"
	case ModeWriteLatency:
		return "write_latency"
	case ModePreconditionFailure:
		return "precondition_failure"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Request describes one report.
type Request struct {
	Dataset string
	Mode    Mode
	// X and Title apply to sweep reports only.
	X     string
	Title string
}

// filenameModes is checked in order against the dataset's base name.
var filenameModes = []struct {
	token string
	mode  Mode
}{
	{"overlap_ratio", ModeOverlapRatio},
	{"comprehensive", ModeComprehensive},
	{"chaos", ModeChaos},
}

// ResolveMode applies the precedence explicit mode, then filename token, then
// sweep.
func ResolveMode(req Request) Mode {
	if req.Mode != ModeAuto {
		return req.Mode
	}
	base := path.Base(req.Dataset)
	for _, fm := range filenameModes {
		if strings.Contains(base, fm.token) {
			return fm.mode
		}
	}
	return ModeSweep
}

func latencyAxis(m Mode) (latency.Axis, bool) {
	switch m {
	case ModeLatency:
		return latency.Writers, true
	case ModeReadLatency:
		return latency.Read, true
	case ModeWriteLatency:
		return latency.Write, true
	case ModePreconditionFailure:
		return latency.Precondition, true
	default:
		return 0, false
	}
}

// plan is a resolved report: what it reads, how it is drawn and where it goes.
type plan struct {
	mode     Mode
	schema   dataset.Schema
	suffix   string
	baseline bool
	build    func(ds *dataset.Dataset, baseline *dataset.Row) (*figure.Figure, error)
}

func (m *Manager) plan(req Request) (plan, error) {
	cfg := m.cfg
	mode := ResolveMode(req)
	target := cfg.Thresholds.FailureTarget

	if axis, ok := latencyAxis(mode); ok {
		return plan{
			mode:     mode,
			schema:   latency.SchemaFor(axis),
			suffix:   axis.Suffix(),
			baseline: true,
			build: func(ds *dataset.Dataset, baseline *dataset.Row) (*figure.Figure, error) {
				return m.latency.Build(ds, latency.PlotOptions{Axis: axis, Baseline: baseline})
			},
		}, nil
	}

	switch mode {
	case ModeComprehensive:
		return plan{
			mode:   mode,
			schema: comprehensive.Schema,
			build: func(ds *dataset.Dataset, _ *dataset.Row) (*figure.Figure, error) {
				return m.comprehensive.Build(ds, comprehensive.PlotOptions{FailureTarget: target, TopN: cfg.Thresholds.TopN})
			},
		}, nil

	case ModeComprehensiveCombined:
		return plan{
			mode:     mode,
			schema:   comprehensive.CombinedSchema,
			baseline: true,
			build: func(ds *dataset.Dataset, baseline *dataset.Row) (*figure.Figure, error) {
				return m.combined.Build(ds, comprehensive.CombinedOptions{
					FailureTarget: target,
					Subset:        cfg.OverlapSubset,
					Baseline:      baseline,
				})
			},
		}, nil

	case ModeChaos:
		return plan{
			mode:   mode,
			schema: chaos.Schema,
			build: func(ds *dataset.Dataset, _ *dataset.Row) (*figure.Figure, error) {
				return m.chaos.Build(ds, chaos.PlotOptions{Scenarios: cfg.Chaos.Scenarios})
			},
		}, nil

	case ModeOverlapRatio:
		opts := overlap.PlotOptions{FailureTarget: target, Subset: cfg.OverlapSubset}
		return plan{
			mode:   mode,
			schema: overlap.SchemaFor(opts),
			build: func(ds *dataset.Dataset, _ *dataset.Row) (*figure.Figure, error) {
				return m.overlap.Build(ds, opts)
			},
		}, nil

	case ModeSweep:
		xName := req.X
		if xName == "" {
			xName = DefaultX
		}
		x, err := dataset.ParseColumn(xName)
		if err != nil {
			return plan{}, fmt.Errorf("invalid x column: %w", err)
		}
		title := req.Title
		if title == "" {
			title = DefaultTitle
		}
		opts := sweep.PlotOptions{X: x, Title: title, FailureTarget: target}
		return plan{
			mode:   mode,
			schema: sweep.SchemaFor(x),
			build: func(ds *dataset.Dataset, _ *dataset.Row) (*figure.Figure, error) {
				return m.sweep.Build(ds, opts)
			},
		}, nil
	}

	return plan{}, fmt.Errorf("unknown report mode %s", mode)
}

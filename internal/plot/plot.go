package plot

import (
	"context"
	"errors"
	"fmt"
	"os"

	"precond-report/internal/aggregate"
	"precond-report/internal/config"
	"precond-report/internal/dataset"
	"precond-report/internal/plot/chaos"
	"precond-report/internal/plot/comprehensive"
	"precond-report/internal/plot/figure"
	"precond-report/internal/plot/latency"
	"precond-report/internal/plot/overlap"
	"precond-report/internal/plot/sweep"
	"precond-report/internal/source"

	"github.com/sirupsen/logrus"
)

type Manager struct {
	cfg      *config.ReportConfig
	loader   *dataset.Loader
	renderer *figure.Renderer
	influx   *source.InfluxSource
	checksum string

	sweep         *sweep.SweepPlotGenerator
	comprehensive *comprehensive.ComprehensivePlotGenerator
	combined      *comprehensive.CombinedPlotGenerator
	chaos         *chaos.ChaosPlotGenerator
	overlap       *overlap.OverlapPlotGenerator
	latency       *latency.LatencyPlotGenerator

	logger *logrus.Logger
}

func NewManager(cfg *config.ReportConfig, logger *logrus.Logger) (*Manager, error) {
	checksum, err := config.RenderChecksum(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compute render checksum: %w", err)
	}

	m := &Manager{
		cfg:           cfg,
		loader:        dataset.NewLoader(logger),
		renderer:      figure.NewRenderer(figure.NewTheme(cfg.Output), logger),
		checksum:      checksum,
		sweep:         sweep.NewSweepPlotGenerator(logger),
		comprehensive: comprehensive.NewComprehensivePlotGenerator(logger),
		combined:      comprehensive.NewCombinedPlotGenerator(logger),
		chaos:         chaos.NewChaosPlotGenerator(logger),
		overlap:       overlap.NewOverlapPlotGenerator(logger),
		latency:       latency.NewLatencyPlotGenerator(logger),
		logger:        logger,
	}

	if cfg.Sources.InfluxDB.Host != "" {
		influx, err := source.NewInfluxSource(cfg.Sources.InfluxDB, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create influxdb source: %w", err)
		}
		m.influx = influx
		m.loader.Register("influx", influx)
	}

	m.loader.Register("s3", m.lazyS3())

	return m, nil
}

// lazyS3 defers AWS configuration until the first s3:// dataset is loaded.
func (m *Manager) lazyS3() dataset.Source {
	var s3src *source.S3Source
	return dataset.SourceFunc(func(ctx context.Context, id string) (*dataset.Table, error) {
		if s3src == nil {
			src, err := source.NewS3Source(ctx, m.cfg.Sources.S3, m.logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create s3 source: %w", err)
			}
			s3src = src
		}
		return s3src.Fetch(ctx, id)
	})
}

// Register adds a dataset source for a URI scheme.
func (m *Manager) Register(scheme string, src dataset.Source) {
	m.loader.Register(scheme, src)
}

func (m *Manager) Close() {
	if m.influx != nil {
		m.influx.Close()
	}
}

type Result struct {
	Mode    Mode
	Output  string
	Rows    int
	Skipped bool
}

// Generate renders one report. A missing or empty dataset is logged and
// skipped without an error.
func (m *Manager) Generate(ctx context.Context, req Request) (*Result, error) {
	p, err := m.plan(req)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"dataset": req.Dataset,
		"variant": p.mode.String(),
	}

	ds, err := m.loader.Load(ctx, req.Dataset)
	if errors.Is(err, dataset.ErrMissingSource) {
		m.logger.WithFields(fields).Warn("Dataset not found, skipping")
		return &Result{Mode: p.mode, Skipped: true}, nil
	}
	if errors.Is(err, dataset.ErrEmptyDataset) {
		m.logger.WithFields(fields).Warn("Dataset is empty, skipping")
		return &Result{Mode: p.mode, Skipped: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if ds.Empty() {
		m.logger.WithFields(fields).Warn("Dataset is empty, skipping")
		return &Result{Mode: p.mode, Skipped: true}, nil
	}

	if err := p.schema.Validate(ds); err != nil {
		return nil, err
	}

	var baseline *dataset.Row
	if p.baseline {
		baseline, err = aggregate.LoadBaseline(ctx, m.loader, m.cfg.Baseline)
		if err != nil {
			m.logger.WithError(err).WithFields(fields).Warn("Baseline unavailable, continuing without it")
		} else if baseline != nil {
			m.logger.WithFields(fields).WithField("baseline", m.cfg.Baseline).Info("Including baseline data")
		}
	}

	fig, err := p.build(ds, baseline)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s report: %w", p.mode, err)
	}

	out := m.cfg.Output
	output := dataset.ArtifactPath(req.Dataset, p.suffix, out.Format, out.Dir)
	if out.Dir != "" {
		if err := os.MkdirAll(out.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := m.renderer.Save(fig, output); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", output, err)
	}

	m.logger.WithFields(fields).WithFields(logrus.Fields{
		"output":   output,
		"rows":     ds.Len(),
		"checksum": m.checksum,
	}).Info("Report saved")

	return &Result{Mode: p.mode, Output: output, Rows: ds.Len()}, nil
}

// Validate loads the dataset and checks it against the resolved variant's
// schema without rendering.
func (m *Manager) Validate(ctx context.Context, req Request) error {
	p, err := m.plan(req)
	if err != nil {
		return err
	}

	ds, err := m.loader.Load(ctx, req.Dataset)
	if err != nil {
		return err
	}
	if err := p.schema.Validate(ds); err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"dataset": req.Dataset,
		"variant": p.mode.String(),
		"rows":    ds.Len(),
	}).Info("Dataset matches report schema")
	return nil
}

// Batch renders a sweep report for every configured dataset. Failures are
// logged and do not stop the remaining reports.
func (m *Manager) Batch(ctx context.Context) []*Result {
	m.logger.WithField("datasets", len(m.cfg.Batch)).Info("Plotting all configured datasets")

	var results []*Result
	failed := 0
	for _, entry := range m.cfg.Batch {
		res, err := m.Generate(ctx, Request{
			Dataset: entry.Dataset,
			Mode:    ModeSweep,
			X:       entry.X,
			Title:   entry.Title,
		})
		if err != nil {
			failed++
			m.logger.WithError(err).WithField("dataset", entry.Dataset).Error("Report failed")
			continue
		}
		results = append(results, res)
	}

	if failed > 0 {
		m.logger.WithFields(logrus.Fields{
			"failed": failed,
			"total":  len(m.cfg.Batch),
		}).Warn("Some reports failed")
	}
	return results
}

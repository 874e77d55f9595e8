package overlap

import (
	"bytes"
	"testing"

	"precond-report/internal/config"
	"precond-report/internal/dataset"
	"precond-report/internal/logging"
	"precond-report/internal/plot/figure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []dataset.Column{
	dataset.NumWriters,
	dataset.WriterRate,
	dataset.KeyOverlapRatio,
	dataset.PreconditionFailureRate,
	dataset.RetrySuccessRate,
	dataset.WriteTPS,
}

func row(writers, rate, overlap, failure float64) dataset.Row {
	return dataset.NewRow("", map[dataset.Column]float64{
		dataset.NumWriters:              writers,
		dataset.WriterRate:              rate,
		dataset.KeyOverlapRatio:         overlap,
		dataset.PreconditionFailureRate: failure,
		dataset.RetrySuccessRate:        1 - failure,
		dataset.WriteTPS:                0.2,
	})
}

func newGenerator(logs *bytes.Buffer) *OverlapPlotGenerator {
	return NewOverlapPlotGenerator(logging.NewTestLogger(logs))
}

func TestBuild_SweetSpotAndTarget(t *testing.T) {
	ds := dataset.New("sweep_overlap_ratio.csv", columns, []dataset.Row{
		row(2, 0.1, 0.5, 0.30),
		row(2, 0.1, 0.1, 0.05),
		row(2, 0.1, 0.2, 0.12),
	})

	var logs bytes.Buffer
	fig, err := newGenerator(&logs).Build(ds, PlotOptions{FailureTarget: 0.1})
	require.NoError(t, err)
	require.NoError(t, fig.Validate())

	assert.Equal(t, "Overlap Ratio Sweep: Finding the 10% Failure Sweet Spot", fig.Title)
	p := fig.Panels[0]
	require.Len(t, p.Series, 2)
	assert.Equal(t, []float64{0.1, 0.2, 0.5}, p.Series[0].X)
	assert.Equal(t, figure.Primary, p.Series[0].Axis)
	assert.Equal(t, figure.Secondary, p.Series[1].Axis)
	assert.InDeltaSlice(t, []float64{95, 88, 70}, p.Series[1].Y, 1e-9)

	require.Len(t, p.HLines, 1)
	assert.Equal(t, "10% Target", p.HLines[0].Label)
	assert.Equal(t, "orange", p.HLines[0].Color)

	// 12% is closer to the target than 5%.
	require.Len(t, p.Annotations, 1)
	assert.Equal(t, 0.2, p.Annotations[0].X)
	assert.InDelta(t, 12.0, p.Annotations[0].Y, 1e-9)
	assert.Contains(t, logs.String(), "overlap_ratio=0.20")

	assert.Len(t, fig.Panels[1].Series, 1)
}

func TestBuild_SweetSpotTieKeepsDatasetOrder(t *testing.T) {
	ds := dataset.New("sweep_overlap_ratio.csv", columns, []dataset.Row{
		row(2, 0.1, 0.5, 0.25),
		row(2, 0.1, 0.2, 0.75),
	})

	fig, err := newGenerator(&bytes.Buffer{}).Build(ds, PlotOptions{FailureTarget: 0.5})
	require.NoError(t, err)

	p := fig.Panels[0]
	assert.Equal(t, []float64{0.2, 0.5}, p.Series[0].X)
	require.Len(t, p.Annotations, 1)
	assert.Equal(t, 0.5, p.Annotations[0].X)
	assert.InDelta(t, 25.0, p.Annotations[0].Y, 1e-9)
}

func TestBuild_SubsetFilter(t *testing.T) {
	ds := dataset.New("comprehensive_v2.csv", columns, []dataset.Row{
		row(2, 0.1, 0.0, 0.01),
		row(2, 0.1, 0.3, 0.09),
		row(4, 0.1, 0.3, 0.40),
		row(2, 0.5, 0.3, 0.20),
		row(2, 0.1, 0.6, 0.15),
	})

	fig, err := newGenerator(&bytes.Buffer{}).Build(ds, PlotOptions{
		FailureTarget: 0.1,
		Subset:        &config.OverlapSubset{NumWriters: 2, WriterRate: 0.1},
	})
	require.NoError(t, err)

	p := fig.Panels[0]
	assert.Equal(t, []float64{0.3, 0.6}, p.Series[0].X)
	assert.Equal(t, "Overlap Ratio Impact on Failures and Retries (2 Writers @ 0.1 TPS)", p.Title)
	assert.Equal(t, 0.3, p.Annotations[0].X)
}

func TestBuild_EmptySubsetShowsNote(t *testing.T) {
	ds := dataset.New("comprehensive_v2.csv", columns, []dataset.Row{
		row(1, 0.1, 0.0, 0.01),
	})

	fig, err := newGenerator(&bytes.Buffer{}).Build(ds, PlotOptions{
		FailureTarget: 0.1,
		Subset:        &config.OverlapSubset{NumWriters: 2, WriterRate: 0.1},
	})
	require.NoError(t, err)
	require.NoError(t, fig.Validate())

	assert.Equal(t, NoData, fig.Panels[0].Note)
	assert.Empty(t, fig.Panels[0].Series)
}

func TestBuild_SubsetNeedsWriterColumns(t *testing.T) {
	ds := dataset.New("x.csv", Schema.Columns(), nil)
	_, err := newGenerator(&bytes.Buffer{}).Build(ds, PlotOptions{Subset: &config.OverlapSubset{NumWriters: 2, WriterRate: 0.1}})

	var mismatch *dataset.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []dataset.Column{dataset.NumWriters, dataset.WriterRate}, mismatch.Missing)
}

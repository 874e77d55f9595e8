package comprehensive

import (
	"bytes"
	"math"
	"testing"

	"precond-report/internal/dataset"
	"precond-report/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comprehensiveDataset() *dataset.Dataset {
	row := func(label string, writers, rate, overlap, failure float64) dataset.Row {
		return dataset.NewRow(label, map[dataset.Column]float64{
			dataset.NumWriters:              writers,
			dataset.WriterRate:              rate,
			dataset.NumReaders:              2,
			dataset.ReaderRate:              10,
			dataset.KeyOverlapRatio:         overlap,
			dataset.PreconditionFailureRate: failure,
			dataset.WriteTPS:                writers * rate,
			dataset.WriteP99:                40 * writers,
		})
	}
	cols := append([]dataset.Column{dataset.ConfigLabel, dataset.NumReaders}, Schema.Columns()...)
	return dataset.New("comprehensive_sweep.csv", cols, []dataset.Row{
		row("a", 1, 0.1, 0.0, 0.01),
		row("b", 1, 0.5, 0.5, 0.04),
		row("c", 2, 0.1, 0.0, 0.10),
		row("d", 2, 0.5, 0.5, 0.20),
		row("", 4, 0.5, 0.5, 0.60),
	})
}

func newGenerator() *ComprehensivePlotGenerator {
	return NewComprehensivePlotGenerator(logging.NewTestLogger(&bytes.Buffer{}))
}

func TestBuild_Layout(t *testing.T) {
	fig, err := newGenerator().Build(comprehensiveDataset(), PlotOptions{FailureTarget: 0.1, TopN: 3})
	require.NoError(t, err)
	require.NoError(t, fig.Validate())

	assert.Equal(t, Title, fig.Title)
	assert.Equal(t, 3, fig.Rows)
	assert.Equal(t, 3, fig.Cols)
	assert.Len(t, fig.Panels, 7)
}

func TestBuild_ScatterPerWriterCount(t *testing.T) {
	fig, err := newGenerator().Build(comprehensiveDataset(), PlotOptions{FailureTarget: 0.1, TopN: 3})
	require.NoError(t, err)

	p, ok := fig.Panel("Failure Rate vs Writer Rate")
	require.True(t, ok)
	require.Len(t, p.Series, 3)
	assert.Equal(t, "1 writers", p.Series[0].Name)
	assert.Equal(t, "4 writers", p.Series[2].Name)
	assert.InDeltaSlice(t, []float64{1, 4}, p.Series[0].Y, 1e-9)
	assert.InDelta(t, 10.0, p.HLines[0].Y, 1e-9)
}

func TestBuild_Heatmap(t *testing.T) {
	fig, err := newGenerator().Build(comprehensiveDataset(), PlotOptions{FailureTarget: 0.1, TopN: 3})
	require.NoError(t, err)

	p, ok := fig.Panel("Failure Rate Heatmap (%)")
	require.True(t, ok)
	hm := p.Heatmap
	require.NotNil(t, hm)

	assert.Equal(t, []float64{1, 2, 4}, hm.RowValues)
	assert.Equal(t, []float64{0, 0.5}, hm.ColValues)
	assert.InDelta(t, 1.0, hm.Cells[0][0], 1e-9)
	assert.InDelta(t, 20.0, hm.Cells[1][1], 1e-9)
	assert.True(t, math.IsNaN(hm.Cells[2][0]), "writers=4 never ran at overlap 0")
	assert.Equal(t, 0.0, hm.Min)
	assert.Equal(t, 100.0, hm.Max)
}

func TestBuild_RankingBestOnTop(t *testing.T) {
	fig, err := newGenerator().Build(comprehensiveDataset(), PlotOptions{FailureTarget: 0.1, TopN: 3})
	require.NoError(t, err)

	p, ok := fig.Panel("Top 3 Best Configurations (Lowest Failure Rate)")
	require.True(t, ok)
	assert.Equal(t, 3, p.Span())
	assert.True(t, p.Horizontal)
	assert.Equal(t, []string{"c", "b", "a"}, p.Categories)
	assert.InDeltaSlice(t, []float64{10, 4, 1}, p.Bars[0].Values, 1e-9)
}

func TestBuild_RankingSynthesizesLabels(t *testing.T) {
	fig, err := newGenerator().Build(comprehensiveDataset(), PlotOptions{FailureTarget: 0.1, TopN: 10})
	require.NoError(t, err)

	// Only five configurations exist, so the title counts five.
	p, ok := fig.Panel("Top 5 Best Configurations (Lowest Failure Rate)")
	require.True(t, ok)
	require.Len(t, p.Categories, 5)
	assert.Equal(t, "W4_WR0.50_RD2_RT10", p.Categories[0])
}

func TestBuild_ColorScales(t *testing.T) {
	fig, err := newGenerator().Build(comprehensiveDataset(), PlotOptions{FailureTarget: 0.1, TopN: 3})
	require.NoError(t, err)

	p, ok := fig.Panel("TPS vs Failure Rate")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1, 2, 2, 4}, p.Series[0].ColorBy)

	p, ok = fig.Panel("Latency vs Failure Rate")
	require.True(t, ok)
	assert.Equal(t, "plasma", p.Series[0].ColorMap)
}

func TestBuild_SchemaMismatch(t *testing.T) {
	ds := dataset.New("comprehensive.csv", []dataset.Column{dataset.NumWriters}, nil)
	_, err := newGenerator().Build(ds, PlotOptions{})
	var mismatch *dataset.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Missing, dataset.KeyOverlapRatio)
}

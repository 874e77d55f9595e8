package sweep

import (
	"bytes"
	"testing"

	"precond-report/internal/dataset"
	"precond-report/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepDataset() *dataset.Dataset {
	row := func(label string, writers, failure, tps float64) dataset.Row {
		return dataset.NewRow(label, map[dataset.Column]float64{
			dataset.NumWriters:              writers,
			dataset.PreconditionFailureRate: failure,
			dataset.WriteTPS:                tps,
			dataset.WriteP50:                10 * writers,
			dataset.WriteP95:                20 * writers,
			dataset.WriteP99:                30 * writers,
			dataset.PrecondP50:              5,
			dataset.PrecondP99:              9,
		})
	}
	return dataset.New("sweep_num_writers.csv", append([]dataset.Column{dataset.ConfigLabel, dataset.NumWriters}, Schema.Metrics...), []dataset.Row{
		row("w4", 4, 0.30, 3.5),
		row("w1", 1, 0.01, 1),
		row("w2", 2, 0.12, 1.9),
	})
}

func newGenerator() *SweepPlotGenerator {
	return NewSweepPlotGenerator(logging.NewTestLogger(&bytes.Buffer{}))
}

func TestBuild_OrdersByXAndScalesPercent(t *testing.T) {
	ds := sweepDataset()
	fig, err := newGenerator().Build(ds, PlotOptions{X: dataset.NumWriters, Title: "Writers", FailureTarget: 0.10})
	require.NoError(t, err)
	require.NoError(t, fig.Validate())

	assert.Equal(t, "Writers", fig.Title)
	assert.Len(t, fig.Panels, 4)

	failure := fig.Panels[0]
	require.Len(t, failure.Series, 1)
	assert.Equal(t, []float64{1, 2, 4}, failure.Series[0].X)
	assert.InDeltaSlice(t, []float64{1, 12, 30}, failure.Series[0].Y, 1e-9)

	require.Len(t, failure.HLines, 1)
	assert.InDelta(t, 10.0, failure.HLines[0].Y, 1e-9)
	assert.Equal(t, "10% threshold", failure.HLines[0].Label)

	assert.Len(t, fig.Panels[2].Series, 3)
	assert.Len(t, fig.Panels[3].Series, 2)
	assert.Equal(t, []float64{1, 1.9, 3.5}, fig.Panels[1].Series[0].Y)

	assert.Equal(t, []string{"w4", "w1", "w2"}, ds.Labels(), "source dataset must not be reordered")
}

func TestBuild_SchemaMismatch(t *testing.T) {
	ds := dataset.New("partial.csv", []dataset.Column{dataset.NumWriters, dataset.PreconditionFailureRate}, []dataset.Row{
		dataset.NewRow("a", map[dataset.Column]float64{dataset.NumWriters: 1, dataset.PreconditionFailureRate: 0.1}),
	})

	_, err := newGenerator().Build(ds, PlotOptions{X: dataset.NumWriters})
	var mismatch *dataset.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Missing, dataset.WriteTPS)
}

func TestBuild_MissingXColumn(t *testing.T) {
	_, err := newGenerator().Build(sweepDataset(), PlotOptions{X: dataset.KeyPoolSize})
	var mismatch *dataset.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []dataset.Column{dataset.KeyPoolSize}, mismatch.Missing)
}

func TestBuild_RejectsLabelAsX(t *testing.T) {
	_, err := newGenerator().Build(sweepDataset(), PlotOptions{X: dataset.ConfigLabel})
	assert.ErrorContains(t, err, "not numeric")
}

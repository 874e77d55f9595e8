package comprehensive

import (
	"bytes"
	"testing"

	"precond-report/internal/config"
	"precond-report/internal/dataset"
	"precond-report/internal/logging"
	"precond-report/internal/plot/overlap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func combinedDataset() *dataset.Dataset {
	row := func(writers, wrate, readers, rrate, overlapRatio, failure float64) dataset.Row {
		return dataset.NewRow("", map[dataset.Column]float64{
			dataset.NumWriters:              writers,
			dataset.WriterRate:              wrate,
			dataset.NumReaders:              readers,
			dataset.ReaderRate:              rrate,
			dataset.KeyOverlapRatio:         overlapRatio,
			dataset.ReadP50:                 readers,
			dataset.ReadP99:                 3 * readers,
			dataset.WriteP50:                10 * writers,
			dataset.WriteP99:                30 * writers,
			dataset.PreconditionFailureRate: failure,
			dataset.RetrySuccessRate:        1 - failure,
		})
	}
	return dataset.New("comprehensive_v2.csv", CombinedSchema.Columns(), []dataset.Row{
		row(1, 0.1, 1, 10, 0.0, 0.01),
		row(2, 0.1, 1, 10, 0.0, 0.05),
		row(2, 0.1, 1, 10, 0.3, 0.08),
		row(2, 0.1, 1, 10, 0.6, 0.20),
		row(4, 0.5, 2, 5, 0.0, 0.40),
	})
}

func newCombinedGenerator() *CombinedPlotGenerator {
	return NewCombinedPlotGenerator(logging.NewTestLogger(&bytes.Buffer{}))
}

func TestCombined_Layout(t *testing.T) {
	fig, err := newCombinedGenerator().Build(combinedDataset(), CombinedOptions{FailureTarget: 0.1})
	require.NoError(t, err)
	require.NoError(t, fig.Validate())

	assert.Equal(t, Title, fig.Title)
	assert.Equal(t, 4, fig.Rows)
	assert.Equal(t, 1, fig.Cols)
	require.Len(t, fig.Panels, 4)

	titles := make([]string, len(fig.Panels))
	for i, p := range fig.Panels {
		assert.Equal(t, i, p.Row)
		titles[i] = p.Title
	}
	assert.Equal(t, []string{
		"Read Latency vs Configuration",
		"Write Latency vs Configuration",
		"Precondition Failure Rate vs Writer Configuration",
		"Overlap Ratio Impact on Failures and Retries (2 Writers @ 0.1 TPS)",
	}, titles)

	// Default subset: two writers at 0.1 with overlap above zero.
	ov := fig.Panels[3]
	assert.Equal(t, []float64{0.3, 0.6}, ov.Series[0].X)
	require.Len(t, ov.Annotations, 1)
	assert.Equal(t, 0.3, ov.Annotations[0].X)
}

func TestCombined_BaselineLines(t *testing.T) {
	baseline := dataset.NewRow("baseline", map[dataset.Column]float64{
		dataset.NumWriters:              1,
		dataset.WriterRate:              0.1,
		dataset.ReadP50:                 0.5,
		dataset.ReadP99:                 1.5,
		dataset.WriteP50:                4,
		dataset.WriteP99:                9,
		dataset.PreconditionFailureRate: 0.02,
	})

	fig, err := newCombinedGenerator().Build(combinedDataset(), CombinedOptions{FailureTarget: 0.1, Baseline: &baseline})
	require.NoError(t, err)

	assert.Len(t, fig.Panels[0].HLines, 2)
	assert.Len(t, fig.Panels[1].HLines, 2)
	require.Len(t, fig.Panels[2].HLines, 1)
	assert.Equal(t, "Baseline (W1@0.10): 2.00%", fig.Panels[2].HLines[0].Label)
}

func TestCombined_MissingOverlapSubsetShowsNote(t *testing.T) {
	fig, err := newCombinedGenerator().Build(combinedDataset(), CombinedOptions{
		FailureTarget: 0.1,
		Subset:        &config.OverlapSubset{NumWriters: 8, WriterRate: 0.1},
	})
	require.NoError(t, err)
	require.NoError(t, fig.Validate())

	p := fig.Panels[3]
	assert.Equal(t, 3, p.Row)
	assert.Equal(t, "Overlap Ratio Analysis (Not Available)", p.Title)
	assert.Equal(t, overlap.NoData, p.Note)
}

func TestCombined_SchemaMismatch(t *testing.T) {
	ds := dataset.New("comprehensive_v2.csv", Schema.Columns(), nil)
	_, err := newCombinedGenerator().Build(ds, CombinedOptions{})

	var mismatch *dataset.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Missing, dataset.ReadP50)
}

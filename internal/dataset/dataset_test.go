package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Dataset {
	cols := []Column{ConfigLabel, NumWriters, WriterRate, PreconditionFailureRate}
	rows := []Row{
		NewRow("c", map[Column]float64{NumWriters: 4, WriterRate: 0.5, PreconditionFailureRate: 0.3}),
		NewRow("a", map[Column]float64{NumWriters: 1, WriterRate: 0.5, PreconditionFailureRate: 0.1}),
		NewRow("b", map[Column]float64{NumWriters: 4, WriterRate: 0.1, PreconditionFailureRate: 0.2}),
		NewRow("d", map[Column]float64{NumWriters: 1, WriterRate: 0.5, PreconditionFailureRate: 0.05}),
	}
	return New("sample.csv", cols, rows)
}

func TestParseColumn(t *testing.T) {
	for _, c := range AllColumns() {
		parsed, err := ParseColumn(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseColumn("nope")
	assert.Error(t, err)
}

func TestColumnKinds(t *testing.T) {
	assert.Equal(t, KindLabel, ConfigLabel.Kind())
	assert.Equal(t, KindDimension, KeyOverlapRatio.Kind())
	assert.Equal(t, KindMetric, WriteP99.Kind())
	assert.True(t, PreconditionFailureRate.IsFraction())
	assert.True(t, RetrySuccessRate.IsFraction())
	assert.False(t, WriteTPS.IsFraction())
	assert.False(t, ConfigLabel.IsNumeric())
}

func TestRow_MissingValuesAreNaN(t *testing.T) {
	r := NewRow("x", map[Column]float64{WriteTPS: 12})
	assert.Equal(t, 12.0, r.Value(WriteTPS))
	assert.True(t, math.IsNaN(r.Value(ReadTPS)))
	assert.True(t, math.IsNaN(r.Value(ConfigLabel)))
}

func TestRow_Percent(t *testing.T) {
	r := NewRow("x", map[Column]float64{PreconditionFailureRate: 0.25, WriteP99: 7})
	assert.InDelta(t, 25.0, r.Percent(PreconditionFailureRate), 1e-9)
	assert.Equal(t, 7.0, r.Percent(WriteP99))
}

func TestDataset_SortedByIsStableCopy(t *testing.T) {
	ds := sample()
	sorted := ds.SortedBy(NumWriters)

	assert.Equal(t, []string{"a", "d", "c", "b"}, sorted.Labels())
	assert.Equal(t, []string{"c", "a", "b", "d"}, ds.Labels(), "source must not be reordered")

	sorted = ds.SortedBy(NumWriters, WriterRate)
	assert.Equal(t, []string{"a", "d", "b", "c"}, sorted.Labels())
	assert.True(t, sorted.Has(PreconditionFailureRate))
}

func TestDataset_SortedByNaNLast(t *testing.T) {
	ds := New("x", []Column{NumWriters}, []Row{
		NewRow("nan", nil),
		NewRow("two", map[Column]float64{NumWriters: 2}),
		NewRow("one", map[Column]float64{NumWriters: 1}),
	})
	assert.Equal(t, []string{"one", "two", "nan"}, ds.SortedBy(NumWriters).Labels())
}

func TestDataset_FilterAndHead(t *testing.T) {
	ds := sample()
	filtered := ds.Filter(func(r Row) bool { return r.Value(NumWriters) == 4 })
	assert.Equal(t, []string{"c", "b"}, filtered.Labels())
	assert.Equal(t, 4, ds.Len())

	assert.Equal(t, 2, ds.Head(2).Len())
	assert.Equal(t, 4, ds.Head(10).Len())
	assert.Equal(t, 0, ds.Head(-1).Len())
}

func TestDataset_Distinct(t *testing.T) {
	assert.Equal(t, []float64{1, 4}, sample().Distinct(NumWriters))
	assert.Equal(t, []float64{0.1, 0.5}, sample().Distinct(WriterRate))
}

func TestDataset_NilIsEmpty(t *testing.T) {
	var ds *Dataset
	assert.True(t, ds.Empty())
}

func TestSchema_Validate(t *testing.T) {
	ds := sample()
	schema := Schema{
		Name:       "sweep",
		Dimensions: []Column{NumWriters},
		Metrics:    []Column{PreconditionFailureRate, WriteTPS, WriteP99},
	}

	err := schema.Validate(ds)
	require.Error(t, err)

	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []Column{WriteTPS, WriteP99}, mismatch.Missing)
	assert.Contains(t, err.Error(), "write_tps, write_p99_ms")

	ok := Schema{Name: "ok", Dimensions: []Column{NumWriters, WriterRate}}
	assert.NoError(t, ok.Validate(ds))
}

func TestSchema_With(t *testing.T) {
	base := Schema{Name: "sweep", Metrics: []Column{WriteTPS}}
	ext := base.With(KeyPoolSize, ReadP99)

	assert.Equal(t, []Column{KeyPoolSize}, ext.Dimensions)
	assert.Equal(t, []Column{WriteTPS, ReadP99}, ext.Metrics)
	assert.Empty(t, base.Dimensions)
}

func TestArtifactPath(t *testing.T) {
	cases := []struct {
		id, suffix, format, dir, want string
	}{
		{"results/sweep_num_writers.csv", "", "png", "", "results/sweep_num_writers.png"},
		{"chaos_results.csv", "", "svg", "", "chaos_results.svg"},
		{"v2.csv", "_read_latency", "png", "", "v2_read_latency.png"},
		{"file://data/v2.csv", "_latency", "PNG", "", "data/v2_latency.png"},
		{"s3://bench/runs/overlap_ratio.csv", "", "png", "", "overlap_ratio.png"},
		{"s3://bench/runs/overlap_ratio.csv", "", "png", "out", "out/overlap_ratio.png"},
		{"influx://bench/sweep", "_write_latency", "pdf", "out", "out/sweep_write_latency.pdf"},
		{"results/x.csv", "", "png", "out", "out/x.png"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ArtifactPath(tc.id, tc.suffix, tc.format, tc.dir), tc.id)
	}
}

func TestRow_DisplayLabel(t *testing.T) {
	r := NewRow("", map[Column]float64{NumWriters: 4, WriterRate: 0.5, NumReaders: 2, ReaderRate: 10})
	assert.Equal(t, "W4_WR0.50_RD2_RT10", r.DisplayLabel())

	r.Label = "custom"
	assert.Equal(t, "custom", r.DisplayLabel())
}

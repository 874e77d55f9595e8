package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"precond-report/internal/dataset"
	"precond-report/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	objects map[string]string
	calls   []string
	err     error
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source_Fetch(t *testing.T) {
	getter := &fakeGetter{objects: map[string]string{
		"bench/runs/sweep.csv": "num_writers,write_tps\n1,10\n2,18\n",
	}}
	src := newS3SourceWithClient(getter, logging.NewTestLogger(&bytes.Buffer{}))

	table, err := src.Fetch(context.Background(), "s3://bench/runs/sweep.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"bench/runs/sweep.csv"}, getter.calls)
	assert.Equal(t, []string{"num_writers", "write_tps"}, table.Header)
	assert.Len(t, table.Records, 2)
}

func TestS3Source_NoSuchKeyIsMissingSource(t *testing.T) {
	src := newS3SourceWithClient(&fakeGetter{}, logging.NewTestLogger(&bytes.Buffer{}))

	_, err := src.Fetch(context.Background(), "s3://bench/missing.csv")
	assert.ErrorIs(t, err, dataset.ErrMissingSource)
}

func TestS3Source_OtherErrorsAreWrapped(t *testing.T) {
	boom := errors.New("access denied")
	src := newS3SourceWithClient(&fakeGetter{err: boom}, logging.NewTestLogger(&bytes.Buffer{}))

	_, err := src.Fetch(context.Background(), "s3://bench/x.csv")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, dataset.ErrMissingSource)
}

func TestS3Source_ThroughLoader(t *testing.T) {
	getter := &fakeGetter{objects: map[string]string{
		"bench/chaos.csv": "config_label,write_p99_ms\nbaseline,12\n",
	}}
	logger := logging.NewTestLogger(&bytes.Buffer{})
	loader := dataset.NewLoader(logger)
	loader.Register("s3", newS3SourceWithClient(getter, logger))

	ds, err := loader.Load(context.Background(), "s3://bench/chaos.csv")
	require.NoError(t, err)
	assert.Equal(t, "baseline", ds.Rows[0].Label)
	assert.Equal(t, 12.0, ds.Rows[0].Value(dataset.WriteP99))
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := parseS3URI("s3://bench/a/b.csv")
	require.NoError(t, err)
	assert.Equal(t, "bench", bucket)
	assert.Equal(t, "a/b.csv", key)

	_, _, err = parseS3URI("s3://bench")
	assert.Error(t, err)
	_, _, err = parseS3URI("/tmp/x.csv")
	assert.Error(t, err)
}

func TestParseInfluxURI(t *testing.T) {
	bucket, m, err := parseInfluxURI("influx://results/sweep", "default")
	require.NoError(t, err)
	assert.Equal(t, "results", bucket)
	assert.Equal(t, "sweep", m)

	bucket, m, err = parseInfluxURI("influx://sweep", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", bucket)
	assert.Equal(t, "sweep", m)

	_, _, err = parseInfluxURI("influx://sweep", "")
	assert.Error(t, err)

	for _, id := range []string{
		`influx://results/sweep") |> drop(columns: ["x"]`,
		`influx://res"ults/sweep`,
		`influx://results/sweep\`,
		`influx://results/${token}`,
	} {
		_, _, err = parseInfluxURI(id, "default")
		assert.Error(t, err, id)
	}
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery("results", "chaos")
	assert.Contains(t, q, `from(bucket: "results")`)
	assert.Contains(t, q, `r["_measurement"] == "chaos"`)
	assert.Contains(t, q, `pivot(rowKey:["_time", "config_label"]`)
}

func TestRecordsToTable(t *testing.T) {
	records := []map[string]interface{}{
		{"_time": "t0", "_measurement": "sweep", "config_label": "W1", "num_writers": int64(1), "write_tps": 10.5},
		{"_time": "t1", "_measurement": "sweep", "config_label": "W2", "num_writers": uint64(2), "write_tps": nil, "read_p99_ms": 3.25},
	}

	table := recordsToTable(records)
	assert.Equal(t, []string{"config_label", "num_writers", "write_tps", "read_p99_ms"}, table.Header)
	assert.Equal(t, [][]string{
		{"W1", "1", "10.5", ""},
		{"W2", "2", "", "3.25"},
	}, table.Records)

	ds, err := dataset.Decode("influx://results/sweep", table)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.True(t, ds.Has(dataset.ReadP99))
}

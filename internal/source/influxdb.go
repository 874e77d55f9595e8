package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"precond-report/internal/config"
	"precond-report/internal/dataset"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"
)

// InfluxSource reads datasets addressed as influx://bucket/measurement. Each
// benchmark configuration is one point; fields map to dataset columns and the
// config_label tag names the row.
type InfluxSource struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	bucket   string
	logger   *logrus.Logger
}

func NewInfluxSource(cfg config.InfluxDBConfig, logger *logrus.Logger) (*InfluxSource, error) {
	if cfg.Host == "" || cfg.Token == "" || cfg.Org == "" {
		return nil, fmt.Errorf("missing required InfluxDB connection settings")
	}

	client := influxdb2.NewClient(cfg.Host, cfg.Token)

	return &InfluxSource{
		client:   client,
		queryAPI: client.QueryAPI(cfg.Org),
		bucket:   cfg.Bucket,
		logger:   logger,
	}, nil
}

func (s *InfluxSource) Close() {
	s.client.Close()
}

const fluxUnsafe = "\"\\$\n\r"

func parseInfluxURI(id, defaultBucket string) (bucket, measurement string, err error) {
	rest, ok := strings.CutPrefix(id, "influx://")
	if !ok {
		return "", "", fmt.Errorf("not an influx uri: %s", id)
	}
	bucket, measurement, found := strings.Cut(rest, "/")
	if !found {
		bucket, measurement = defaultBucket, rest
	}
	if bucket == "" || measurement == "" {
		return "", "", fmt.Errorf("influx uri must name a bucket and measurement: %s", id)
	}
	// Both names are embedded in Flux string literals.
	if strings.ContainsAny(bucket+measurement, fluxUnsafe) {
		return "", "", fmt.Errorf("influx bucket and measurement must not contain any of %q: %s", fluxUnsafe, id)
	}
	return bucket, measurement, nil
}

func buildQuery(bucket, measurement string) string {
	return fmt.Sprintf(`
		from(bucket: "%s")
		|> range(start: 0)
		|> filter(fn: (r) => r["_measurement"] == "%s")
		|> pivot(rowKey:["_time", "config_label"], columnKey: ["_field"], valueColumn: "_value")
		|> sort(columns: ["_time"])
	`, bucket, measurement)
}

func (s *InfluxSource) Fetch(ctx context.Context, id string) (*dataset.Table, error) {
	bucket, measurement, err := parseInfluxURI(id, s.bucket)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bucket":      bucket,
		"measurement": measurement,
	}).Debug("Querying benchmark results")

	result, err := s.queryAPI.Query(ctx, buildQuery(bucket, measurement))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var records []map[string]interface{}
	for result.Next() {
		records = append(records, result.Record().Values())
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query parsing failed: %w", result.Err())
	}

	s.logger.WithField("records", len(records)).Debug("Query completed")

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", id, dataset.ErrMissingSource)
	}
	return recordsToTable(records), nil
}

// recordsToTable keeps only keys that name a dataset column, in column order.
func recordsToTable(records []map[string]interface{}) *dataset.Table {
	var header []dataset.Column
	for _, c := range dataset.AllColumns() {
		for _, rec := range records {
			if _, ok := rec[c.String()]; ok {
				header = append(header, c)
				break
			}
		}
	}

	table := &dataset.Table{Header: make([]string, len(header))}
	for i, c := range header {
		table.Header[i] = c.String()
	}

	for _, rec := range records {
		cells := make([]string, len(header))
		for i, c := range header {
			cells[i] = formatCell(rec[c.String()])
		}
		table.Records = append(table.Records, cells)
	}
	return table
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

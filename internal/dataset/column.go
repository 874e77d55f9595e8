package dataset

import "fmt"

type Column int

const (
	ConfigLabel Column = iota

	// Dimensions
	NumWriters
	WriterRate
	NumReaders
	ReaderRate
	KeyPoolSize
	KeyOverlapRatio
	MaxRetryCount
	DurationSecs

	// Metrics
	PreconditionFailureRate
	WriteTPS
	ReadTPS
	WriteP50
	WriteP95
	WriteP99
	PrecondP50
	PrecondP99
	ReadP50
	ReadP95
	ReadP99
	AvgRetryCount
	TotalRetryFailures
	TotalMaxRetriesExceeded
	RetryFailureRate
	RetrySuccessRate

	numColumns
)

type ColumnKind int

const (
	KindLabel ColumnKind = iota
	KindDimension
	KindMetric
)

func (k ColumnKind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindDimension:
		return "dimension"
	case KindMetric:
		return "metric"
	default:
		return "unknown"
	}
}

type columnInfo struct {
	name     string
	kind     ColumnKind
	fraction bool
}

// Names match the CSV header written by the benchmark harness.
var columns = [numColumns]columnInfo{
	ConfigLabel:             {"config_label", KindLabel, false},
	NumWriters:              {"num_writers", KindDimension, false},
	WriterRate:              {"writer_rate", KindDimension, false},
	NumReaders:              {"num_readers", KindDimension, false},
	ReaderRate:              {"reader_rate", KindDimension, false},
	KeyPoolSize:             {"key_pool_size", KindDimension, false},
	KeyOverlapRatio:         {"key_overlap_ratio", KindDimension, false},
	MaxRetryCount:           {"max_retry_count", KindDimension, false},
	DurationSecs:            {"duration_secs", KindDimension, false},
	PreconditionFailureRate: {"precondition_failure_rate", KindMetric, true},
	WriteTPS:                {"write_tps", KindMetric, false},
	ReadTPS:                 {"read_tps", KindMetric, false},
	WriteP50:                {"write_p50_ms", KindMetric, false},
	WriteP95:                {"write_p95_ms", KindMetric, false},
	WriteP99:                {"write_p99_ms", KindMetric, false},
	PrecondP50:              {"precond_p50_ms", KindMetric, false},
	PrecondP99:              {"precond_p99_ms", KindMetric, false},
	ReadP50:                 {"read_p50_ms", KindMetric, false},
	ReadP95:                 {"read_p95_ms", KindMetric, false},
	ReadP99:                 {"read_p99_ms", KindMetric, false},
	AvgRetryCount:           {"avg_retry_count", KindMetric, false},
	TotalRetryFailures:      {"total_retry_failures", KindMetric, false},
	TotalMaxRetriesExceeded: {"total_max_retries_exceeded", KindMetric, false},
	RetryFailureRate:        {"retry_failure_rate", KindMetric, true},
	RetrySuccessRate:        {"retry_success_rate", KindMetric, true},
}

var columnsByName = func() map[string]Column {
	m := make(map[string]Column, numColumns)
	for c := Column(0); c < numColumns; c++ {
		m[columns[c].name] = c
	}
	return m
}()

func (c Column) String() string {
	if !c.Valid() {
		return fmt.Sprintf("column(%d)", int(c))
	}
	return columns[c].name
}

func (c Column) Valid() bool {
	return c >= 0 && c < numColumns
}

func (c Column) Kind() ColumnKind {
	return columns[c].kind
}

// IsFraction reports whether values of c are stored as fractions in [0,1].
func (c Column) IsFraction() bool {
	return c.Valid() && columns[c].fraction
}

func (c Column) IsNumeric() bool {
	return c.Valid() && c != ConfigLabel
}

// ParseColumn resolves a CSV header name to its Column.
func ParseColumn(name string) (Column, error) {
	c, ok := columnsByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown column %q", name)
	}
	return c, nil
}

// AllColumns returns every known column in declaration order.
func AllColumns() []Column {
	out := make([]Column, 0, numColumns)
	for c := Column(0); c < numColumns; c++ {
		out = append(out, c)
	}
	return out
}

package mappings

import "precond-report/internal/dataset"

type MetricMapping struct {
	Label      string
	ShortLabel string
	Min        interface{}
	Max        interface{}
}

// Fraction columns are labelled in percent; callers scale them with Row.Percent.
var MetricMappings = map[dataset.Column]MetricMapping{
	dataset.NumWriters: {
		Label:      "Number of Writers",
		ShortLabel: "Writers",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.WriterRate: {
		Label:      "Writer Rate (ops/s per writer)",
		ShortLabel: "Writer Rate",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.NumReaders: {
		Label:      "Number of Readers",
		ShortLabel: "Readers",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.ReaderRate: {
		Label:      "Reader Rate (ops/s per reader)",
		ShortLabel: "Reader Rate",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.KeyPoolSize: {
		Label:      "Key Pool Size",
		ShortLabel: "Key Pool",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.KeyOverlapRatio: {
		Label:      "Key Overlap Ratio",
		ShortLabel: "Overlap",
		Min:        0.0,
		Max:        1.0,
	},
	dataset.MaxRetryCount: {
		Label:      "Max Retry Count",
		ShortLabel: "Max Retries",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.DurationSecs: {
		Label:      "Duration (s)",
		ShortLabel: "Duration",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.PreconditionFailureRate: {
		Label:      "Precondition Failure Rate (%)",
		ShortLabel: "Failure %",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.WriteTPS: {
		Label:      "Write Throughput (TPS)",
		ShortLabel: "Write TPS",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.ReadTPS: {
		Label:      "Read Throughput (TPS)",
		ShortLabel: "Read TPS",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.WriteP50: {
		Label:      "Write Latency p50 (ms)",
		ShortLabel: "Write p50",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.WriteP95: {
		Label:      "Write Latency p95 (ms)",
		ShortLabel: "Write p95",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.WriteP99: {
		Label:      "Write Latency p99 (ms)",
		ShortLabel: "Write p99",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.PrecondP50: {
		Label:      "Precondition Failure Latency p50 (ms)",
		ShortLabel: "Precond p50",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.PrecondP99: {
		Label:      "Precondition Failure Latency p99 (ms)",
		ShortLabel: "Precond p99",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.ReadP50: {
		Label:      "Read Latency p50 (ms)",
		ShortLabel: "Read p50",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.ReadP95: {
		Label:      "Read Latency p95 (ms)",
		ShortLabel: "Read p95",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.ReadP99: {
		Label:      "Read Latency p99 (ms)",
		ShortLabel: "Read p99",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.AvgRetryCount: {
		Label:      "Average Retry Count",
		ShortLabel: "Avg Retries",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.TotalRetryFailures: {
		Label:      "Retry Failures",
		ShortLabel: "Retry Fail",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.TotalMaxRetriesExceeded: {
		Label:      "Max Retries Exceeded",
		ShortLabel: "Retries Exceeded",
		Min:        0.0,
		Max:        "auto",
	},
	dataset.RetryFailureRate: {
		Label:      "Retry Failure Rate (%)",
		ShortLabel: "Retry Failure",
		Min:        0.0,
		Max:        100.0,
	},
	dataset.RetrySuccessRate: {
		Label:      "Retry Success Rate (%)",
		ShortLabel: "Retry Success",
		Min:        0.0,
		Max:        100.0,
	},
}

func GetMetricMapping(c dataset.Column) (MetricMapping, bool) {
	mapping, exists := MetricMappings[c]
	return mapping, exists
}

// Label returns the axis label for c, falling back to the column name.
func Label(c dataset.Column) string {
	if m, ok := MetricMappings[c]; ok {
		return m.Label
	}
	return c.String()
}

func ShortLabel(c dataset.Column) string {
	if m, ok := MetricMappings[c]; ok {
		return m.ShortLabel
	}
	return c.String()
}

// Limits resolves Min and Max to numbers. "auto" reports ok=false for that end.
func (m MetricMapping) Limits() (min float64, minOK bool, max float64, maxOK bool) {
	min, minOK = m.Min.(float64)
	max, maxOK = m.Max.(float64)
	return
}

package config

type ReportConfig struct {
	LogLevel      string          `yaml:"log_level"`
	LogFormat     string          `yaml:"log_format"`
	Baseline      string          `yaml:"baseline"`
	Output        OutputConfig    `yaml:"output"`
	Thresholds    ThresholdConfig `yaml:"thresholds"`
	OverlapSubset *OverlapSubset  `yaml:"overlap_subset,omitempty"`
	Chaos         ChaosConfig     `yaml:"chaos"`
	Batch         []BatchEntry    `yaml:"batch"`
	Sources       SourcesConfig   `yaml:"sources"`
}

type OutputConfig struct {
	Format   string  `yaml:"format"`
	Dir      string  `yaml:"dir"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	DPI      int     `yaml:"dpi"`
}

type ThresholdConfig struct {
	// FailureTarget is a fraction, the threshold and sweet-spot target. Zero
	// is a valid target.
	FailureTarget float64 `yaml:"failure_target"`
	TopN          int     `yaml:"top_n"`
}

// OverlapSubset selects the overlap sweep rows out of a larger dataset.
type OverlapSubset struct {
	NumWriters int     `yaml:"num_writers"`
	WriterRate float64 `yaml:"writer_rate"`
}

// DefaultOverlapSubset is the overlap sweep the harness embeds in a
// comprehensive dataset.
var DefaultOverlapSubset = OverlapSubset{NumWriters: 2, WriterRate: 0.1}

type ChaosConfig struct {
	Scenarios []string `yaml:"scenarios"`
}

type BatchEntry struct {
	Dataset string `yaml:"dataset"`
	X       string `yaml:"x"`
	Title   string `yaml:"title"`
}

type SourcesConfig struct {
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	S3       S3Config       `yaml:"s3"`
}

type InfluxDBConfig struct {
	Host   string `yaml:"host"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

var DefaultChaosScenarios = []string{
	"Baseline",
	"Net Delay 100ms",
	"Net Delay 200ms",
	"Net Delay 500ms",
	"Net Block 10s×3",
	"CPU 4T@80%",
	"Combined",
}

var DefaultBatch = []BatchEntry{
	{Dataset: "test_baseline.csv", X: "num_writers", Title: "Baseline Test Results"},
	{Dataset: "sweep_num_writers.csv", X: "num_writers", Title: "Precondition Failure vs Number of Writers"},
	{Dataset: "sweep_writer_tps.csv", X: "writer_rate", Title: "Precondition Failure vs Writer Rate"},
	{Dataset: "sweep_key_pool.csv", X: "key_pool_size", Title: "Precondition Failure vs Key Pool Size"},
	{Dataset: "sweep_overlap.csv", X: "key_overlap_ratio", Title: "Precondition Failure vs Key Overlap Ratio"},
}

// Default returns the configuration used when no config file is given.
func Default() *ReportConfig {
	cfg := newConfig()
	applyDefaults(cfg)
	return cfg
}

// newConfig presets the fields whose zero value is meaningful, so a file
// that sets them to zero keeps that value after decoding.
func newConfig() *ReportConfig {
	return &ReportConfig{
		Thresholds: ThresholdConfig{
			FailureTarget: 0.10,
			TopN:          10,
		},
	}
}

func applyDefaults(cfg *ReportConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Baseline == "" {
		cfg.Baseline = "test_baseline.csv"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "png"
	}
	if cfg.Output.WidthIn == 0 {
		cfg.Output.WidthIn = 14
	}
	if cfg.Output.HeightIn == 0 {
		cfg.Output.HeightIn = 10
	}
	if cfg.Output.DPI == 0 {
		cfg.Output.DPI = 300
	}
	if len(cfg.Chaos.Scenarios) == 0 {
		cfg.Chaos.Scenarios = append([]string(nil), DefaultChaosScenarios...)
	}
	if len(cfg.Batch) == 0 {
		cfg.Batch = append([]BatchEntry(nil), DefaultBatch...)
	}
	for i := range cfg.Batch {
		if cfg.Batch[i].X == "" {
			cfg.Batch[i].X = "num_writers"
		}
		if cfg.Batch[i].Title == "" {
			cfg.Batch[i].Title = "Test Results"
		}
	}
}

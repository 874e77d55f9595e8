package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"precond-report/internal/logging"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func LoadConfig(filepath string) (*ReportConfig, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, err
	}

	config, err := Parse([]byte(expandEnvVars(string(data))))
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, err
	}

	return config, nil
}

// Parse decodes an already expanded YAML document and fills in defaults.
func Parse(data []byte) (*ReportConfig, error) {
	config := newConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Unset variables are left in place so validation can point at them.
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

var supportedFormats = map[string]bool{
	"png":  true,
	"svg":  true,
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"tif":  true,
	"tiff": true,
	"eps":  true,
}

func SupportedFormat(format string) bool {
	return supportedFormats[strings.ToLower(format)]
}

func validateConfig(config *ReportConfig) error {
	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if config.LogFormat != "text" && config.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", config.LogFormat)
	}

	if !SupportedFormat(config.Output.Format) {
		return fmt.Errorf("output format %q is not supported", config.Output.Format)
	}
	if config.Output.WidthIn <= 0 || config.Output.HeightIn <= 0 {
		return fmt.Errorf("output width_in and height_in must be greater than 0")
	}
	if config.Output.DPI <= 0 {
		return fmt.Errorf("output dpi must be greater than 0")
	}

	if config.Thresholds.FailureTarget < 0 || config.Thresholds.FailureTarget > 1 {
		return fmt.Errorf("failure_target must be a fraction in [0,1], got %v", config.Thresholds.FailureTarget)
	}
	if config.Thresholds.TopN <= 0 {
		return fmt.Errorf("top_n must be greater than 0")
	}

	if s := config.OverlapSubset; s != nil {
		if s.NumWriters <= 0 {
			return fmt.Errorf("overlap_subset: num_writers must be greater than 0")
		}
		if s.WriterRate <= 0 {
			return fmt.Errorf("overlap_subset: writer_rate must be greater than 0")
		}
	}

	for i, entry := range config.Batch {
		if entry.Dataset == "" {
			return fmt.Errorf("batch entry %d: dataset is required", i)
		}
	}

	influx := config.Sources.InfluxDB
	if influx.Host != "" && (influx.Token == "" || influx.Org == "") {
		return fmt.Errorf("incomplete influxdb configuration")
	}
	if strings.Contains(influx.Token, "${") {
		return fmt.Errorf("influxdb token references an unset environment variable")
	}

	return nil
}

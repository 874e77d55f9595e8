package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"precond-report/internal/config"
	"precond-report/internal/logging"
	"precond-report/internal/plot"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

var modeFlags = []struct {
	name  string
	mode  plot.Mode
	usage string
}{
	{"comprehensive", plot.ModeComprehensiveCombined, "Render read/write latency, failure rate and overlap analysis in one report"},
	{"comprehensive-grid", plot.ModeComprehensive, "Render the comprehensive sweep dashboard"},
	{"chaos", plot.ModeChaos, "Render the chaos scenario report"},
	{"overlap-ratio", plot.ModeOverlapRatio, "Render the overlap ratio sweet spot report"},
	{"latency", plot.ModeLatency, "Render latency trends across writer configurations"},
	{"read-latency", plot.ModeReadLatency, "Render reader latency per configuration"},
	{"write-latency", plot.ModeWriteLatency, "Render writer latency per configuration"},
	{"precondition-failure", plot.ModePreconditionFailure, "Render mean failure rate per writer configuration"},
}

type rootOptions struct {
	configFile string
	logLevel   string
	baseline   string
	format     string
	modes      map[string]*bool
}

// mode returns the variant chosen by flag and the flag's name, ModeAuto when
// none is set.
func (o *rootOptions) mode() (plot.Mode, string) {
	for _, f := range modeFlags {
		if *o.modes[f.name] {
			return f.mode, f.name
		}
	}
	return plot.ModeAuto, ""
}

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{modes: make(map[string]*bool)}

	rootCmd := &cobra.Command{
		Use:   "report [dataset] [x-column] [title]",
		Short: "Benchmark result report renderer",
		Long: "Aggregate precondition benchmark results and render them as report images.\n" +
			"Without arguments every configured dataset is rendered as a sweep report.",
		Version:      Version,
		Args:         cobra.MaximumNArgs(3),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadEnvironment()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to report configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.baseline, "baseline", "", "Baseline dataset (default test_baseline.csv)")
	flags.StringVar(&opts.format, "format", "", "Output format (png, svg, pdf, jpg, tif, eps)")

	names := make([]string, 0, len(modeFlags))
	for _, f := range modeFlags {
		opts.modes[f.name] = flags.Bool(f.name, false, f.usage)
		names = append(names, f.name)
	}
	rootCmd.MarkFlagsMutuallyExclusive(names...)

	validateCmd := &cobra.Command{
		Use:   "validate [dataset]",
		Short: "Validate the configuration and optionally a dataset's columns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args)
		},
	}
	rootCmd.AddCommand(validateCmd)

	return rootCmd
}

func loadEnvironment() {
	logger := logging.GetLogger()

	envFile := ".env"
	if _, err := os.Stat(envFile); err != nil {
		execPath, err := os.Executable()
		if err != nil {
			return
		}
		envFile = filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(envFile); err != nil {
			return
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		return
	}
	logger.WithField("file", envFile).Debug("Loaded environment variables")
}

// loadConfig reads the configuration file, or the defaults when none is
// given, and applies command line overrides.
func loadConfig(opts *rootOptions) (*config.ReportConfig, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		loaded, err := config.LoadConfig(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.baseline != "" {
		cfg.Baseline = opts.baseline
	}
	if opts.format != "" {
		format := strings.ToLower(opts.format)
		if !config.SupportedFormat(format) {
			return nil, fmt.Errorf("unsupported output format %q", opts.format)
		}
		cfg.Output.Format = format
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	if err := logging.SetLogLevel(level); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if cfg.LogFormat == "json" {
		logging.SetFormatter(&logrus.JSONFormatter{})
	}
	return cfg, nil
}

func runReport(ctx context.Context, opts *rootOptions, args []string) error {
	logger := logging.GetLogger()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	manager, err := plot.NewManager(cfg, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	mode, flag := opts.mode()
	if len(args) == 0 {
		if mode != plot.ModeAuto {
			return fmt.Errorf("--%s requires a dataset", flag)
		}
		manager.Batch(ctx)
		return nil
	}

	req := plot.Request{Dataset: args[0], Mode: mode}
	if len(args) > 1 {
		req.X = args[1]
	}
	if len(args) > 2 {
		req.Title = args[2]
	}

	_, err = manager.Generate(ctx, req)
	return err
}

func runValidate(ctx context.Context, opts *rootOptions, args []string) error {
	logger := logging.GetLogger()

	cfg, err := loadConfig(opts)
	if err != nil {
		logger.WithField("config_file", opts.configFile).WithError(err).Error("Configuration validation failed")
		return err
	}
	logger.WithField("config_file", opts.configFile).Info("Configuration is valid")

	if len(args) == 0 {
		return nil
	}

	manager, err := plot.NewManager(cfg, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	mode, _ := opts.mode()
	return manager.Validate(ctx, plot.Request{Dataset: args[0], Mode: mode})
}

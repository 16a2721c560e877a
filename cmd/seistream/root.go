package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/volcwatch/seistream/pkg/pipeline"
	"github.com/volcwatch/seistream/pkg/resample"
)

// fileConfig is the on-disk configuration. Only the host is usually
// needed; threshold and delta fall back to the pipeline defaults.
type fileConfig struct {
	Host         string `yaml:"host"`
	GapThreshold string `yaml:"gap_threshold"`
	Delta        string `yaml:"delta"`
}

type rootOptions struct {
	configPath string
	threshold  time.Duration
	delta      time.Duration
	resample   bool
	method     string
	strict     bool
	verbose    bool

	host   string
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "seistream",
		Short:         "Condition gap-prone time series into contiguous segments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "seistream.yaml", "configuration file")
	pf.DurationVar(&opts.threshold, "threshold", 2*time.Minute, "gap detection threshold")
	pf.DurationVar(&opts.delta, "delta", time.Minute, "target sample interval")
	pf.BoolVar(&opts.resample, "resample", true, "resample segments onto a uniform grid")
	pf.StringVar(&opts.method, "method", string(resample.Linear), "interpolation method (linear or nearest)")
	pf.BoolVar(&opts.strict, "strict", false, "validate timestamp monotonicity")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newFetchCmd(opts))
	root.AddCommand(newConditionCmd(opts))
	root.AddCommand(newInfoCmd(opts))
	return root
}

// load reads the config file and applies flag overrides. A missing file
// is only an error when --config was set explicitly.
func (o *rootOptions) load(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	data, err := os.ReadFile(o.configPath)
	if err != nil {
		if os.IsNotExist(err) && !cmd.Flags().Changed("config") {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config %s: %w", o.configPath, err)
	}
	o.host = fc.Host

	if fc.GapThreshold != "" && !cmd.Flags().Changed("threshold") {
		d, err := time.ParseDuration(fc.GapThreshold)
		if err != nil {
			return fmt.Errorf("config gap_threshold: %w", err)
		}
		o.threshold = d
	}
	if fc.Delta != "" && !cmd.Flags().Changed("delta") {
		d, err := time.ParseDuration(fc.Delta)
		if err != nil {
			return fmt.Errorf("config delta: %w", err)
		}
		o.delta = d
	}
	return nil
}

// assembler builds the pipeline from the resolved options.
func (o *rootOptions) assembler() (*pipeline.Assembler, error) {
	cfg := pipeline.Config{
		GapThreshold: o.threshold,
		Resample:     o.resample,
		Delta:        o.delta,
		Method:       resample.Method(o.method),
		Strict:       o.strict,
	}
	return pipeline.New(cfg, pipeline.WithLogger(o.logger))
}

package main

import (
	"fmt"

	"github.com/KevinKickass/OpenIOLink/internal/config"
	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/KevinKickass/OpenIOLink/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options shared by all subcommands
type options struct {
	configFile  string
	searchPaths []string
	output      string
	verbose     bool
}

// NewRootCommand builds the pdidecode command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "pdidecode",
		Short: "Decode IO-Link process data with device specs",
		Long: `pdidecode decodes IO-Link process data (PDI) hex strings using declarative
device specifications and validates spec files.

Examples:
  # Decode with a spec from the search paths
  pdidecode decode --spec ifm-135-humidity-temperature 01A1FF00000CFF03

  # Decode with the spec registered for an attached device
  pdidecode decode --vendor-id 310 --device-id 48 00640FA0

  # Validate spec files
  pdidecode validate device-specs/ifm/*.json`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (search paths and logging)")
	rootCmd.PersistentFlags().StringSliceVarP(&opts.searchPaths, "specs", "s", nil, "device spec search paths (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(newDecodeCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newMastersCommand(opts))
	rootCmd.AddCommand(newHashPasswordCommand())

	return rootCmd
}

// load reads the config and applies flag overrides.
func (o *options) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	if len(o.searchPaths) > 0 {
		cfg.DeviceSpecs.SearchPaths = o.searchPaths
	}

	// the CLI keeps stdout for results
	cfg.Log.File = ""
	cfg.Log.Format = "console"
	cfg.Log.Level = "warn"
	if o.verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func (o *options) manager() (*devices.Manager, *zap.Logger, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, nil, err
	}

	m, err := devices.NewManager(cfg.DeviceSpecs.SearchPaths, nil, log)
	if err != nil {
		return nil, nil, err
	}
	return m, log, nil
}

func (o *options) formatter(cmd *cobra.Command) (*formatter, error) {
	switch o.output {
	case formatTable, formatJSON:
		return &formatter{format: o.output, writer: cmd.OutOrStdout()}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", o.output)
	}
}

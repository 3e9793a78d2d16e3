// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/rfpmatch/internal/config"
	"github.com/tomtom215/rfpmatch/internal/logging"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "rfpmatch",
		Short: "Hybrid product recommendation for RFP quotations",
		Long: `rfpmatch ranks candidate products against a request for proposal.

Each candidate is scored by collaborative filtering over purchase history,
content similarity, a tool/task knowledge graph and a language-model
judgment. The weighted scores are fused into one ranked, explainable list.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: $CONFIG_PATH, ./config.yaml, /etc/rfpmatch/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override logging.format (json, console)")

	root.AddCommand(newRecommendCmd(opts))
	root.AddCommand(newCheckConfigCmd(opts))

	return root
}

// loadConfig loads configuration, applies flag overrides and initializes
// the global logger.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(cfg.LoggingSettings())
	return cfg, nil
}

// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/rfpmatch/internal/logging"
)

func newCheckConfigCmd(opts *globalOptions) *cobra.Command {
	var ping bool

	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and print the effective values",
		Long: `Loads configuration from all layers, validates it and prints the result
as YAML with credentials masked. Exits non-zero on the first invalid key.
With --ping it also opens the order and graph stores and checks both answer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			out, err := cfg.RedactedYAML()
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			if !ping {
				return nil
			}

			a := &app{}
			defer a.Close() //nolint:errcheck // read-only check
			if err := a.openStores(cfg, logging.Logger()); err != nil {
				return err
			}
			if err := a.ping(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "stores: ok")
			return err
		},
	}

	cmd.Flags().BoolVar(&ping, "ping", false, "also open and ping the order and graph stores")
	return cmd
}

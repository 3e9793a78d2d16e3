// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/rfpmatch/internal/logging"
	"github.com/tomtom215/rfpmatch/internal/metrics"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

type recommendOptions struct {
	rfpPath        string
	candidatesPath string
	userID         string
	seedPath       string
	outputPath     string
	metricsPath    string
}

func newRecommendCmd(global *globalOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank candidate products against an RFP",
		Long: `Ranks the candidate products in --candidates against the RFP text and prints
the ranked result as JSON. Each item carries its fused score, the per-signal
breakdown and the LLM rationale when available.

The RFP is read from --rfp, or from stdin when --rfp is "-" or omitted.`,
		Example: `  rfpmatch recommend --rfp rfp.txt --candidates products.json --user buyer-42
  echo "need waterproof safety gloves size L" | rfpmatch recommend --candidates products.json
  rfpmatch recommend --rfp rfp.txt --candidates products.json --seed fixtures.json --metrics-out run.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.rfpPath, "rfp", "-", "RFP text file (\"-\" for stdin)")
	cmd.Flags().StringVar(&opts.candidatesPath, "candidates", "", "JSON array of candidate products (required)")
	cmd.Flags().StringVar(&opts.userID, "user", "", "buyer ID for collaborative filtering (empty = cold start)")
	cmd.Flags().StringVar(&opts.seedPath, "seed", "", "JSON fixture with purchases, graph nodes and edges to load first")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().StringVar(&opts.metricsPath, "metrics-out", "", "write Prometheus metrics to a file after the run")
	_ = cmd.MarkFlagRequired("candidates")

	return cmd
}

func runRecommend(cmd *cobra.Command, global *globalOptions, opts *recommendOptions) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}

	ctx := logging.ContextWithNewCorrelationID(cmd.Context())
	base := logging.Logger()
	logger := logging.WithContext(ctx, logging.WithComponent("cli"))

	rfpText, err := readRFP(opts.rfpPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	candidates, err := loadCandidates(opts.candidatesPath)
	if err != nil {
		return err
	}

	a := &app{}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close resources")
		}
	}()

	if err := a.openStores(cfg, base); err != nil {
		return err
	}
	if opts.seedPath != "" {
		seed, err := loadSeedFile(opts.seedPath)
		if err != nil {
			return err
		}
		if err := seed.apply(ctx, a.orders, a.graph); err != nil {
			return err
		}
		logger.Info().
			Int("purchases", len(seed.Purchases)).
			Int("nodes", len(seed.Nodes)).
			Int("edges", len(seed.Edges)).
			Msg("seed data loaded")
	}
	if err := a.buildEngine(cfg, base); err != nil {
		return err
	}

	if opts.metricsPath != "" {
		defer func() {
			if merr := writeMetricsFile(opts.metricsPath); merr != nil {
				logger.Warn().Err(merr).Str("path", opts.metricsPath).Msg("failed to write metrics")
			}
		}()
	}

	result, recErr := a.engine.Recommend(ctx, recommend.Request{
		RFPText:    rfpText,
		Candidates: candidates,
		UserID:     opts.userID,
	})
	a.logCacheStats(logger)
	if result == nil {
		return recErr
	}

	// An interrupted run still prints what completed.
	if err := writeResult(cmd.OutOrStdout(), opts.outputPath, result); err != nil {
		return err
	}
	if isInterrupted(recErr) {
		logger.Warn().Err(recErr).Int("completed", len(result.Items)).Msg("recommendation interrupted, result is partial")
	}
	return recErr
}

// isInterrupted reports whether err ended a run early through cancellation
// or a deadline.
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func readRFP(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path is an operator-supplied CLI flag
	}
	if err != nil {
		return "", fmt.Errorf("failed to read RFP: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", recommend.NewValidationError("rfp", "RFP text is empty")
	}
	return text, nil
}

func loadCandidates(path string) ([]recommend.Product, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an operator-supplied CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	var products []recommend.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse candidates %s: %w", path, err)
	}
	if len(products) == 0 {
		return nil, recommend.NewValidationError("candidates", "no candidate products in "+path)
	}
	return products, nil
}

func writeResult(stdout io.Writer, path string, result *recommend.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func writeMetricsFile(path string) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is an operator-supplied CLI flag
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return metrics.WriteText(f, nil)
}

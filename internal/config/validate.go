// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/rfpmatch/internal/logging"
	"github.com/tomtom215/rfpmatch/internal/recommend"
	"github.com/tomtom215/rfpmatch/internal/validation"
)

// Validate checks the configuration. Every failure is a
// *recommend.ConfigurationError naming the offending key.
//
// Struct tags are checked first, then the rules that span fields:
//   - the four weights sum to 1.0 within recommend.WeightTolerance
//   - logging.level is a known level
//   - openai requires models.api_key
//   - the badger cache backend requires cache.path
//   - chat_model and embedding_model are set
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return structError(err)
	}

	if _, err := c.FusionWeights(); err != nil {
		return err
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return recommend.NewConfigurationError("logging.level",
			fmt.Sprintf("unknown level %q (use trace, debug, info, warn, error or disabled)", c.Logging.Level))
	}

	if c.Models.Provider == "openai" && c.Models.APIKey == "" {
		return recommend.NewConfigurationError("models.api_key",
			"required for the openai provider (set OPENAI_API_KEY or RFPMATCH_MODELS__API_KEY)")
	}

	if c.Cache.Backend == "badger" && c.Cache.Path == "" {
		return recommend.NewConfigurationError("cache.path", "required for the badger backend")
	}

	if c.Models.ChatModel == "" {
		return recommend.NewConfigurationError("models.chat_model", "required by the llm scorer")
	}
	if c.Models.EmbeddingModel == "" {
		return recommend.NewConfigurationError("models.embedding_model", "required by the content scorer")
	}

	return nil
}

// structError converts a validation failure into a ConfigurationError for
// the first offending field, keeping the full report as the cause.
func structError(err error) error {
	var se *validation.StructError
	if !errors.As(err, &se) || len(se.Errors()) == 0 {
		return &recommend.ConfigurationError{Reason: "invalid configuration", Err: err}
	}
	return &recommend.ConfigurationError{
		Field: se.Errors()[0].Field(),
		Err:   se,
	}
}

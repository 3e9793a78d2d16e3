// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator caches struct metadata across calls.
// Field names in errors follow the koanf tag (then the json tag, then the Go
// field name) and are reported as dotted paths without the root type, so
// they match the keys a user writes in config.yaml:
//
//	type ModelsConfig struct {
//	    Provider string `koanf:"provider" validate:"oneof=openai ollama"`
//	}
//
//	err := validation.ValidateStruct(&cfg)
//	// models.provider must be one of: openai ollama
//
// # Error Types
//
// ValidateStruct returns nil or a *StructError. Each FieldError exposes the
// path, the failed tag and its parameter:
//
//	var se *validation.StructError
//	if errors.As(err, &se) {
//	    for _, fe := range se.Errors() {
//	        fmt.Println(fe.Field(), fe.Tag(), fe.Param())
//	    }
//	}
//
// # Supported Messages
//
// required, url, http_url, oneof, gt, gte, lt, lte, min and max have
// dedicated messages. Other tags report "<field> failed <tag> validation".
package validation

// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is matching against the typed errors below.
var (
	ErrConfiguration         = errors.New("configuration error")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrValidation            = errors.New("validation error")
	ErrInsufficientSignals   = errors.New("insufficient signals")
)

// Error kinds reported in signal breakdowns and metrics labels.
const (
	KindConfiguration         = "configuration"
	KindDependencyUnavailable = "dependency_unavailable"
	KindValidation            = "validation"
	KindCanceled              = "canceled"
	KindInternal              = "internal"
)

// ConfigurationError reports missing or invalid configuration.
// It is fatal at construction time and never recovered.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

// NewConfigurationError creates a ConfigurationError for a field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DependencyUnavailableError reports that a backing store or model provider
// could not be reached, rejected the call, or timed out.
type DependencyUnavailableError struct {
	Dependency string
	Err        error
}

func (e *DependencyUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dependency unavailable: %s", e.Dependency)
	}
	return fmt.Sprintf("dependency unavailable: %s: %v", e.Dependency, e.Err)
}

func (e *DependencyUnavailableError) Unwrap() error { return e.Err }

// Is matches ErrDependencyUnavailable.
func (e *DependencyUnavailableError) Is(target error) bool { return target == ErrDependencyUnavailable }

// Unavailable wraps err as a DependencyUnavailableError for the named
// dependency. Errors that already carry a DependencyUnavailableError are
// returned unchanged so the original dependency name is preserved.
func Unavailable(dependency string, err error) error {
	var due *DependencyUnavailableError
	if errors.As(err, &due) {
		return err
	}
	return &DependencyUnavailableError{Dependency: dependency, Err: err}
}

// ValidationError reports invalid input: empty text, a malformed model
// response, or a malformed request.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InsufficientSignalsError is returned by Engine.Recommend when no candidate
// had a single computable signal. Causes maps "signal" to the distinct error
// messages observed for it.
type InsufficientSignalsError struct {
	Candidates int
	Causes     map[string][]string
}

func (e *InsufficientSignalsError) Error() string {
	signals := make([]string, 0, len(e.Causes))
	for s := range e.Causes {
		signals = append(signals, s)
	}
	sort.Strings(signals)

	parts := make([]string, 0, len(signals))
	for _, s := range signals {
		parts = append(parts, fmt.Sprintf("%s: %s", s, strings.Join(e.Causes[s], "; ")))
	}
	return fmt.Sprintf("cannot generate recommendation: no signal available for any of %d candidates (%s)",
		e.Candidates, strings.Join(parts, " | "))
}

// Is matches ErrInsufficientSignals.
func (e *InsufficientSignalsError) Is(target error) bool { return target == ErrInsufficientSignals }

// ErrorKind classifies err into one of the Kind* constants.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDependencyUnavailable):
		return KindDependencyUnavailable
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindDependencyUnavailable
	default:
		return KindInternal
	}
}

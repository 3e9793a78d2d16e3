// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// maxResponseBytes caps provider response bodies.
const maxResponseBytes = 8 << 20

// postJSON sends body as JSON to url and decodes a 200 response into out.
// Failures are classified so the engine can tell outages from bad input:
// transport errors, 408, 429 and 5xx are DependencyUnavailable unless the
// caller canceled ctx, in which case ctx.Err() is returned; 401/403
// are ConfigurationError; any other status or an undecodable body is a
// ValidationError.
func postJSON(ctx context.Context, client *http.Client, providerName, url string, headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return recommend.NewConfigurationError("models.base_url", fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if canceled(ctx) {
			return ctx.Err()
		}
		return recommend.Unavailable(providerName, fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if canceled(ctx) {
			return ctx.Err()
		}
		return recommend.Unavailable(providerName, fmt.Errorf("read response: %w", err))
	}

	if err := classifyStatus(providerName, resp.StatusCode, respBody); err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &recommend.ValidationError{Field: "response", Reason: "undecodable provider response", Err: err}
	}
	return nil
}

// canceled reports whether the caller gave up on ctx. Such errors are
// returned bare so the breaker does not count them. An expired deadline is
// still an outage: the provider did not answer in time.
func canceled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func classifyStatus(providerName string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return recommend.NewConfigurationError("models.api_key", fmt.Sprintf("%s rejected credentials (status %d)", providerName, status))
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return recommend.Unavailable(providerName, fmt.Errorf("status %d: %s", status, snippet(body)))
	default:
		return recommend.NewValidationError("request", fmt.Sprintf("%s returned status %d: %s", providerName, status, snippet(body)))
	}
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

// Package extract turns RFP free text into a list of requirements.
//
// Splitter is the default extractor: it breaks text on line breaks, list
// bullets, semicolons and sentence boundaries. Production deployments may
// substitute any recommend.RequirementExtractor.
package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// DefaultMinLength is the shortest fragment kept as a requirement.
const DefaultMinLength = 3

// trimCutset is stripped from both ends of each fragment; brackets are not.
const trimCutset = " .,:!?-*•·"

var (
	// sentenceEnd splits after ., ! or ? followed by whitespace. Decimal
	// numbers such as "0.5 mm" are not split because no space follows the dot.
	sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

	// bulletPrefix matches "-", "*", "•", "1.", "2)", "a)" list markers.
	bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•·]+|\d+[.)]|[a-zA-Z][)])\s*`)
)

// Splitter is a rule-based RequirementExtractor.
type Splitter struct {
	MinLength int
}

// NewSplitter returns a Splitter with default settings.
func NewSplitter() *Splitter {
	return &Splitter{MinLength: DefaultMinLength}
}

// Extract splits text into requirements in document order, dropping
// duplicates (case-insensitive) and fragments without letters or digits.
// Empty text is a *recommend.ValidationError; text yielding no fragments
// returns an empty slice.
func (s *Splitter) Extract(ctx context.Context, text string) ([]recommend.Requirement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, recommend.NewValidationError("rfp_text", "must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	minLen := s.MinLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}

	var reqs []recommend.Requirement
	seen := make(map[string]struct{})
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' || r == ';' }) {
		line = bulletPrefix.ReplaceAllString(line, "")
		for _, frag := range sentenceEnd.Split(line, -1) {
			frag = strings.Join(strings.Fields(frag), " ")
			frag = strings.Trim(frag, trimCutset)
			if len([]rune(frag)) < minLen || !hasAlnum(frag) {
				continue
			}
			key := strings.ToLower(frag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			reqs = append(reqs, recommend.Requirement{Text: frag})
		}
	}

	if reqs == nil {
		reqs = []recommend.Requirement{}
	}
	return reqs, nil
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

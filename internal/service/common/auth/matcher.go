/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"fmt"
	"slices"
	"strings"
)

// Supported values of the match mode setting
const (
	MatchModeExact      = "exact"
	MatchModeNormalized = "normalized"
)

// SubjectMatcher compares a distinguished name from the trust list with the one presented by the
// caller.
type SubjectMatcher interface {
	Name() string
	Match(expected, actual string) bool
}

// ExactMatcher requires both names to be identical
type ExactMatcher struct{}

func (ExactMatcher) Name() string {
	return MatchModeExact
}

func (ExactMatcher) Match(expected, actual string) bool {
	return expected == actual
}

// NormalizedMatcher ignores the order of the attributes and the whitespace around them.
type NormalizedMatcher struct{}

func (NormalizedMatcher) Name() string {
	return MatchModeNormalized
}

func (NormalizedMatcher) Match(expected, actual string) bool {
	return normalize(expected) == normalize(actual)
}

func normalize(name string) string {
	parts := strings.Split(name, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	slices.Sort(parts)
	return strings.Join(parts, ",")
}

// NewSubjectMatcher returns the matcher for the given mode. An empty mode selects exact matching.
func NewSubjectMatcher(mode string) (SubjectMatcher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", MatchModeExact:
		return ExactMatcher{}, nil
	case MatchModeNormalized:
		return NormalizedMatcher{}, nil
	default:
		return nil, fmt.Errorf("unsupported certificate match mode '%s'", mode)
	}
}

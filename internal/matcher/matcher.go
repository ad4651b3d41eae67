// Package matcher finds snapshot records whose names appear in a message.
//
// Matching is deliberately first-match: collections are scanned in snapshot
// order and the first record whose normalized name occurs in the message wins.
package matcher

import (
	"strings"

	"github.com/hyperjump/asistan/internal/keyword"
	"github.com/hyperjump/asistan/pkg/utils"
)

// FindFirstByName returns the first item whose normalized name is a substring
// of the normalized message. Items with an empty name never match.
func FindFirstByName[T any](items []T, nameOf func(*T) string, message string) (*T, bool) {
	msg := utils.Normalize(message)
	if msg == "" {
		return nil, false
	}
	for i := range items {
		name := utils.Normalize(nameOf(&items[i]))
		if name != "" && strings.Contains(msg, name) {
			return &items[i], true
		}
	}
	return nil, false
}

// FindFirstFuzzy behaves like FindFirstByName and, when nothing matches
// exactly, retries allowing typos. A name of n words is compared against every
// window of n consecutive message tokens within keyword.Tolerance of the name length.
func FindFirstFuzzy[T any](items []T, nameOf func(*T) string, message string) (*T, bool) {
	if item, ok := FindFirstByName(items, nameOf, message); ok {
		return item, true
	}

	tokens := utils.Tokens(utils.Normalize(message))
	if len(tokens) == 0 {
		return nil, false
	}
	for i := range items {
		name := utils.Normalize(nameOf(&items[i]))
		words := strings.Fields(name)
		if len(words) == 0 || len(words) > len(tokens) {
			continue
		}
		for start := 0; start+len(words) <= len(tokens); start++ {
			window := strings.Join(tokens[start:start+len(words)], " ")
			if keyword.WithinTolerance(window, name) {
				return &items[i], true
			}
		}
	}
	return nil, false
}

// Matcher bundles the name-matching policy used by the resolvers.
type Matcher struct {
	fuzzyClinics bool
	regions      *RegionMap
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithFuzzyClinics enables typo-tolerant clinic name matching.
func WithFuzzyClinics(enabled bool) Option {
	return func(m *Matcher) {
		m.fuzzyClinics = enabled
	}
}

// WithRegionMap sets the province to region lookup.
func WithRegionMap(rm *RegionMap) Option {
	return func(m *Matcher) {
		if rm != nil {
			m.regions = rm
		}
	}
}

// New creates a Matcher with the default region map.
func New(opts ...Option) *Matcher {
	m := &Matcher{regions: NewRegionMap(DefaultProvinces())}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Regions returns the province to region lookup in use.
func (m *Matcher) Regions() *RegionMap {
	return m.regions
}

/*
 * Copyright (c) 2024, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package lex implements the pure port-name lexer (PortLex): splitting a
// physical port or bus-signal name into lowercase word tokens, plus the
// coarser n-gram token set fcost uses as an edit-distance proxy.
package lex

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

var (
	camelRunRE   *regexp.Regexp
	camelBoundRE *regexp.Regexp
	digitBoundRE *regexp.Regexp
)

func init() {
	// 1. letter followed by an uppercase+lowercase run (camelCase boundary)
	camelRunRE = regexp.MustCompile(`([a-zA-Z])([A-Z][a-z]+)`)
	// 2. lowercase letter or digit followed by an uppercase letter (an
	// all-caps run such as "AWADDR" stays one token)
	camelBoundRE = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	// 3. letter followed by a run of digits
	digitBoundRE = regexp.MustCompile(`([a-zA-Z])([0-9]+)`)
}

// Words splits a port or bus-signal name into lowercase tokens per spec.md
// §4.1: camelCase boundaries and letter/digit boundaries are turned into
// separators before the name is lowercased and split on underscore.
func Words(name string) []string {
	s := camelRunRE.ReplaceAllString(name, "${1}_${2}")
	s = camelBoundRE.ReplaceAllString(s, "${1}_${2}")
	s = digitBoundRE.ReplaceAllString(s, "${1}_${2}")
	s = strings.ToLower(s)

	parts := strings.Split(s, "_")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// WordSet is the deduplicated set form of Words, used throughout the
// matching code for Jaccard-style comparisons.
func WordSet(name string) map[string]struct{} {
	words := Words(name)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// NGramTokens implements the fcost-specific token definition from spec.md
// §4.3: the set of all 1-, 2- and 3-character substrings of the lowercased
// name with underscores removed. This is a cheap edit-distance proxy,
// distinct from the word-level tokens Words/WordSet produce.
func NGramTokens(name string) map[string]struct{} {
	s := strings.ReplaceAll(strings.ToLower(name), "_", "")
	tokens := make(map[string]struct{})
	for n := 1; n <= 3 && n <= len(s); n++ {
		for i := 0; i+n <= len(s); i++ {
			tokens[s[i:i+n]] = struct{}{}
		}
	}
	return tokens
}

// Cache memoizes Words/WordSet lookups by name. Port and bus-signal names
// recur across every (interface, bus-def) pair the pipeline evaluates, so a
// bounded LRU avoids re-tokenizing the same strings thousands of times on a
// large component.
type Cache struct {
	words *lru.Cache
}

// NewCache constructs a token cache holding up to size distinct names.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 4096
	}
	c, err := lru.New(size)
	if err != nil {
		// lru.New only errors for size <= 0, already guarded above.
		panic(err)
	}
	return &Cache{words: c}
}

// WordSet returns the cached WordSet for name, computing and storing it on
// first use.
func (c *Cache) WordSet(name string) map[string]struct{} {
	if v, ok := c.words.Get(name); ok {
		return v.(map[string]struct{})
	}
	set := WordSet(name)
	c.words.Add(name, set)
	return set
}

// JaccardDist returns the Jaccard distance (1 - |intersection|/|union|)
// between two token sets. An empty union is defined as a distance of 0:
// two nameless entities are trivially indistinguishable, not maximally far
// apart.
func JaccardDist(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return 1 - float64(inter)/float64(union)
}

// FracMissing returns the fraction of tokens in target that are absent
// from have — used by the fcost "local" flavor (spec.md §4.3).
func FracMissing(target, have map[string]struct{}) float64 {
	if len(target) == 0 {
		return 0
	}
	missing := 0
	for w := range target {
		if _, ok := have[w]; !ok {
			missing++
		}
	}
	return float64(missing) / float64(len(target))
}

// NumMissingTokens counts how many word tokens of name are absent from the
// tokens of other — used by the sideband median cutoff (spec.md §4.5).
func NumMissingTokens(name, other string) int {
	nameWords := WordSet(name)
	otherWords := WordSet(other)
	missing := 0
	for w := range nameWords {
		if _, ok := otherWords[w]; !ok {
			missing++
		}
	}
	return missing
}

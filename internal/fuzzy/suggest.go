// Package fuzzy builds approximate string matchers used to suggest
// corrections for misspelled identifiers ("did you mean ...").
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxQueryLen caps query length; longer queries are truncated rather
// than rejected, since an identifier that long is already suspect.
const maxQueryLen = 32

// Suggester returns up to a fixed number of best matches for a query,
// ordered best-first. An empty slice means no candidate was close
// enough.
type Suggester func(query string) []string

type candidate struct {
	name  string // original spelling
	lower string // lower-cased form used for matching
}

// Build returns a Suggester over the candidate names produced by
// enumerate. Enumeration and index construction are deferred to the
// first query, because candidate sets are often derived lazily from a
// parsed tree that may never be consulted.
//
// Matching is case-insensitive. Results are ranked by edit distance,
// ties broken by enumeration order, so repeated queries against one
// build are stable.
func Build(enumerate func() []string, limit int) Suggester {
	if limit < 1 {
		limit = 1
	}

	var candidates []candidate
	built := false

	return func(query string) []string {
		if !built {
			built = true
			for _, name := range enumerate() {
				candidates = append(candidates, candidate{name: name, lower: strings.ToLower(name)})
			}
		}
		if len(candidates) == 0 {
			return nil
		}
		if len(query) > maxQueryLen {
			query = query[:maxQueryLen]
		}
		return rank(strings.ToLower(query), candidates, limit)
	}
}

// BuildFromSlice is Build over an already-materialized candidate list.
func BuildFromSlice(names []string, limit int) Suggester {
	return Build(func() []string { return names }, limit)
}

type scored struct {
	name string
	dist int
	pos  int
}

// rank scores every candidate against the query and keeps the closest
// ones. A candidate only qualifies when its edit distance is at most
// half the longer of the two strings; anything further is noise, not a
// plausible typo.
func rank(query string, candidates []candidate, limit int) []string {
	var matches []scored
	for i, c := range candidates {
		dist := levenshtein.ComputeDistance(query, c.lower)
		if dist > max(len(query), len(c.lower))/2 {
			continue
		}
		matches = append(matches, scored{name: c.name, dist: dist, pos: i})
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].pos < matches[j].pos
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

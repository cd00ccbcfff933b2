// Package fuzzy maps free-text cell values onto closed option lists.
package fuzzy

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Threshold is the minimum similarity accepted by the edit-distance step.
const Threshold = 0.8

// Distance returns the Levenshtein distance between a and b, counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity scores value against candidate as
// (len(candidate) - Distance) / len(candidate).
func Similarity(value, candidate string) float64 {
	n := len([]rune(candidate))
	if n == 0 {
		return 0
	}
	return float64(n-Distance(value, candidate)) / float64(n)
}

// Match returns the canonical candidate for value:
//
//  1. a case-insensitive exact match, else
//  2. the first candidate that contains value or is contained in it
//     (case-insensitive), else
//  3. the first candidate whose Similarity to value is at least Threshold.
//     Unlike the first two steps this one is case sensitive.
//
// An empty value never matches.
func Match(value string, candidates []string) (string, bool) {
	if value == "" || len(candidates) == 0 {
		return "", false
	}
	lower := strings.ToLower(value)

	for _, c := range candidates {
		if strings.ToLower(c) == lower {
			return c, true
		}
	}
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if strings.Contains(lc, lower) || strings.Contains(lower, lc) {
			return c, true
		}
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if Similarity(value, c) >= Threshold {
			return c, true
		}
	}
	return "", false
}

type result struct {
	match string
	ok    bool
}

// Cache memoizes Match per (option set, value). It is meant to live for one
// validation pass; callers create a fresh one each pass.
type Cache struct {
	entries *lru.Cache[string, result]
}

// DefaultCacheSize bounds a Cache when no size is given.
const DefaultCacheSize = 4096

// NewCache creates a cache holding at most size results.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, result](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Cache{entries: entries}
}

// Match is Match with memoization keyed by set and value. A nil Cache falls
// through to the uncached lookup.
func (c *Cache) Match(set, value string, candidates []string) (string, bool) {
	if c == nil {
		return Match(value, candidates)
	}
	key := set + "\x00" + value
	if r, ok := c.entries.Get(key); ok {
		return r.match, r.ok
	}
	m, ok := Match(value, candidates)
	c.entries.Add(key, result{match: m, ok: ok})
	return m, ok
}

// Len returns the number of memoized results.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

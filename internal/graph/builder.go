// Package graph extracts ticker co-occurrence edges from text and spreads
// impact values across the resulting graph.
package graph

import (
	"regexp"
	"sort"
	"strings"
)

// Edge links two co-mentioned tickers. Endpoints are canonically ordered
// (A < B lexicographically) so reversed duplicates cannot exist, and the two
// endpoints are never equal.
type Edge struct {
	A      string
	B      string
	Weight float64
}

// NewEdge canonicalizes the endpoint order.
func NewEdge(a, b string, weight float64) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{A: a, B: b, Weight: weight}
}

// Builder scans text for mentions of a fixed ticker vocabulary.
type Builder struct {
	vocab   map[string]struct{}
	pattern *regexp.Regexp
}

// NewBuilder compiles a word-boundary matcher over the vocabulary. Matching is
// case-sensitive: tickers are uppercase symbols and "APE" must not match "grape".
func NewBuilder(vocabulary []string) *Builder {
	vocab := make(map[string]struct{}, len(vocabulary))
	quoted := make([]string, 0, len(vocabulary))
	for _, sym := range vocabulary {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		if _, dup := vocab[sym]; dup {
			continue
		}
		vocab[sym] = struct{}{}
		quoted = append(quoted, regexp.QuoteMeta(sym))
	}
	b := &Builder{vocab: vocab}
	if len(quoted) > 0 {
		b.pattern = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return b
}

// Mentions returns the sorted set of vocabulary tickers found in text.
func (b *Builder) Mentions(text string) []string {
	if b.pattern == nil || text == "" {
		return nil
	}
	seen := make(map[string]struct{})
	for _, m := range b.pattern.FindAllString(text, -1) {
		seen[m] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// ExtractEdges emits the complete graph over the tickers mentioned in text,
// each edge at weight 1.0. Fewer than two mentions yield no edges. The result
// is a one-shot extraction; feed it to NewSnapshot, which replaces (never
// merges with) any prior graph state.
func (b *Builder) ExtractEdges(text string) []Edge {
	mentions := b.Mentions(text)
	if len(mentions) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(mentions)*(len(mentions)-1)/2)
	for i := 0; i < len(mentions); i++ {
		for j := i + 1; j < len(mentions); j++ {
			edges = append(edges, NewEdge(mentions[i], mentions[j], 1.0))
		}
	}
	return edges
}

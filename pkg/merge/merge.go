// Package merge implements the retrieval merge policy: turning one ranked
// result stream into a fixed-size, source-balanced citation set.
package merge

import (
	"github.com/openregulatory/regkb/pkg/types"
)

// DefaultPerSource is the per-source citation quota.
const DefaultPerSource = 2

// SearchK comfortably exceeds the combined quota across the two known
// sources, so a balanced set is usually available.
const SearchK = 6

// Policy selects a source-balanced subset of ranked search results. It is
// parameterized rather than hard-coded to two sources, so a third corpus
// is a configuration change, not a rewrite.
type Policy struct {
	// PerSource is how many results to keep per source.
	PerSource int
	// Order lists the sources in output order.
	Order []types.Source
}

// DefaultPolicy balances the two known corpora, GFR first.
func DefaultPolicy() Policy {
	return Policy{
		PerSource: DefaultPerSource,
		Order:     []types.Source{types.SourceGFR, types.SourcePM},
	}
}

// Citations partitions results by source, preserving rank order within
// each bucket, takes the top PerSource from each source in Order, and
// concatenates the buckets. A source with fewer results than the quota
// contributes what it has; there is no padding and no error. Results from
// sources outside Order are ignored.
func (p Policy) Citations(results []types.SearchResult) []types.Citation {
	buckets := make(map[types.Source][]types.SearchResult, len(p.Order))
	for _, result := range results {
		buckets[result.Rule.Source] = append(buckets[result.Rule.Source], result)
	}

	var citations []types.Citation
	for _, source := range p.Order {
		bucket := buckets[source]
		if len(bucket) > p.PerSource {
			bucket = bucket[:p.PerSource]
		}
		for _, result := range bucket {
			citations = append(citations, types.CitationFromRule(result.Rule))
		}
	}
	return citations
}

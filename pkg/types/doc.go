// Package types defines the core data structures shared across the regkb
// library: rules extracted from regulatory documents, search results,
// citations, and knowledge base statistics.
//
// A Rule is the atomic unit of the system. Rules are immutable once
// created; the embedding index references them by position and never
// mutates them in place.
package types

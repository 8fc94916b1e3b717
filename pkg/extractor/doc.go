// Package extractor converts raw regulatory PDFs into structured rule
// records.
//
// Extraction is a two-stage pipeline: best-effort per-page text extraction
// from the PDF, then pattern-based segmentation of each page into numbered
// rule candidates. Candidates flow through validation and first-wins
// deduplication before they are accepted; both accepted and rejected
// candidates are counted for diagnostic reporting.
//
// Segmentation works by marker scanning: each pattern locates rule-number
// markers in the page text, and the rule body is everything between one
// marker and the next (or the end of the page). This yields the same
// number-plus-greedy-body behavior as lookahead-based segmentation while
// staying within RE2.
package extractor

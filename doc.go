// Package regkb builds and queries a retrieval knowledge base over
// regulatory documents: the General Financial Rules 2017 and the
// Procurement Manual 2025.
//
// The pipeline extracts numbered rules from PDFs with per-corpus marker
// patterns, validates them, embeds their display text into a flat L2
// vector index, and persists the index for fast restarts. Queries return
// similarity-ranked rules; conversational answers carry a source-balanced
// citation set selected independently of the generated text.
//
// The KnowledgeBase coordinator owns the lifecycle: empty until documents
// are processed or a persisted index is loaded, then ready for queries.
//
//	kb, err := regkb.New(embedderClient, generator, logger, regkb.Options{
//	    DataDir:  "./data",
//	    IndexDir: "./vector_store",
//	})
//	stats, err := kb.ProcessDocuments(ctx, false)
//	results, err := kb.Search(ctx, "who may sanction expenditure?", 5)
package regkb

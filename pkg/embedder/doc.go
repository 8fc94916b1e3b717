// Package embedder provides text embedding clients for vector
// representations of rules and queries.
//
// The index and the query path must share one Client instance: vectors are
// only comparable when produced by the same model and version. This is a
// hard invariant of the retrieval pipeline.
//
// # Supported Providers
//
//   - Local: sentence-transformer models via go-embedeverything
//     (all-MiniLM-L6-v2 by default, matching the deployed index)
//   - OpenAI: text-embedding-3-small, text-embedding-3-large,
//     text-embedding-ada-002
//
// # Usage
//
//	client, err := embedder.NewLocalEmbedder(embedder.Config{
//	    Model: "all-MiniLM-L6-v2",
//	})
//
//	vectors, err := client.Embed(ctx, []string{"3.12: payment terms"})
//
// Wrap any client with NewRetryClient to add bounded retry with
// exponential backoff around the network boundary.
package embedder

// Package index implements the embedding index at the heart of the
// retrieval pipeline: a growable collection of rules paired with dense
// vectors, supporting append, persistence, reload and k-nearest-neighbor
// search by L2 distance.
//
// The index owns three parallel sequences — vectors, rules and the display
// texts embedded at build time — and keeping them co-indexed is the core
// invariant of the whole system. Rows are appended only; a full rebuild is
// the only path to removal.
//
// Mutation (Add, Load) is serialized by a write lock. Searches against a
// stable index run concurrently under a read lock.
package index

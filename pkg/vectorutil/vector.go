// Package vectorutil provides vector math and k-nearest selection used by
// the embedding index.
package vectorutil

import (
	"container/heap"
	"math"
)

// L2DistanceSquared calculates the squared Euclidean distance between two
// float32 vectors. Returns +Inf if the vectors have different lengths so a
// mismatched row can never rank as a neighbor.
func L2DistanceSquared(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// L2Distance calculates the Euclidean distance between two float32
// vectors. Returns +Inf if the vectors have different lengths.
func L2Distance(a, b []float32) float64 {
	return math.Sqrt(L2DistanceSquared(a, b))
}

// CosineSimilarity calculates the cosine similarity between two float32
// vectors. Returns 0 if vectors have different lengths, are empty, or
// either has zero magnitude. The result is in [-1, 1].
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Neighbor pairs a row position with its distance to the query.
type Neighbor struct {
	Index    int
	Distance float64
}

// maxHeap keeps the k nearest candidates seen so far with the farthest at
// the root, so a closer candidate can evict it in O(log k).
type maxHeap []Neighbor

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)         { *h = append(*h, x.(Neighbor)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// NearestK scans rows and returns the k nearest neighbors to query by L2
// distance, in ascending-distance order. When k exceeds the number of
// rows, all rows are returned. This is O(n log k), which beats sorting
// when k << n.
func NearestK(query []float32, rows [][]float32, k int) []Neighbor {
	if k <= 0 || len(rows) == 0 {
		return nil
	}
	if k > len(rows) {
		k = len(rows)
	}

	h := make(maxHeap, 0, k)
	heap.Init(&h)

	for i, row := range rows {
		d := L2DistanceSquared(query, row)
		if h.Len() < k {
			heap.Push(&h, Neighbor{Index: i, Distance: d})
		} else if d < h[0].Distance {
			heap.Pop(&h)
			heap.Push(&h, Neighbor{Index: i, Distance: d})
		}
	}

	// Drain the heap backwards to get ascending distance.
	result := make([]Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(Neighbor)
	}
	for i := range result {
		result[i].Distance = math.Sqrt(result[i].Distance)
	}
	return result
}

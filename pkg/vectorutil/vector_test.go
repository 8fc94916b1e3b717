package vectorutil_test

import (
	"math"
	"testing"

	"github.com/openregulatory/regkb/pkg/vectorutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL2Distance(t *testing.T) {
	assert.InDelta(t, 5.0, vectorutil.L2Distance([]float32{0, 0}, []float32{3, 4}), 1e-9)
	assert.InDelta(t, 0.0, vectorutil.L2Distance([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.True(t, math.IsInf(vectorutil.L2Distance([]float32{1}, []float32{1, 2}), 1))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, vectorutil.CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, vectorutil.CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, vectorutil.CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, vectorutil.CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, vectorutil.CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestNearestK(t *testing.T) {
	rows := [][]float32{
		{10, 0}, // distance 10
		{1, 0},  // distance 1
		{5, 0},  // distance 5
		{2, 0},  // distance 2
	}
	query := []float32{0, 0}

	got := vectorutil.NearestK(query, rows, 3)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 3, got[1].Index)
	assert.Equal(t, 2, got[2].Index)
	assert.InDelta(t, 1.0, got[0].Distance, 1e-9)
	assert.InDelta(t, 2.0, got[1].Distance, 1e-9)
	assert.InDelta(t, 5.0, got[2].Distance, 1e-9)
}

func TestNearestKOverflow(t *testing.T) {
	rows := [][]float32{{1}, {2}}
	got := vectorutil.NearestK([]float32{0}, rows, 100)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
}

func TestNearestKEdgeCases(t *testing.T) {
	assert.Nil(t, vectorutil.NearestK([]float32{0}, nil, 5))
	assert.Nil(t, vectorutil.NearestK([]float32{0}, [][]float32{{1}}, 0))
}

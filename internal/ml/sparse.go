package ml

import (
	"math"
	"sort"
)

// SparseVector is a fixed-length vector storing only its non-zero entries.
// Indices are strictly increasing.
type SparseVector struct {
	Dim     int       `json:"dim"`
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// At returns the value stored at column idx, or 0.
func (v SparseVector) At(idx int) float64 {
	i := sort.SearchInts(v.Indices, idx)
	if i < len(v.Indices) && v.Indices[i] == idx {
		return v.Values[i]
	}
	return 0
}

// NNZ is the number of stored entries.
func (v SparseVector) NNZ() int {
	return len(v.Indices)
}

// Dense expands the vector; used by tests and diagnostics.
func (v SparseVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for i, idx := range v.Indices {
		out[idx] = v.Values[i]
	}
	return out
}

func (v SparseVector) l2Norm() float64 {
	var sum float64
	for _, value := range v.Values {
		sum += value * value
	}
	return math.Sqrt(sum)
}

// newSparseVector builds a vector from an unordered column → value map.
func newSparseVector(dim int, entries map[int]float64) SparseVector {
	indices := make([]int, 0, len(entries))
	for idx, value := range entries {
		if value != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = entries[idx]
	}
	return SparseVector{Dim: dim, Indices: indices, Values: values}
}

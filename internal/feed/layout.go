package feed

import "github.com/yourorg/photofeed/unsplash"

// columnWidth is the fixed render width the admin grid gives each column.
// Heights accumulate as columnWidth * ratio per photo; only relative heights
// matter for balancing.
const columnWidth = 300

// ColumnSet distributes photos across a fixed number of columns. Every photo
// lands in exactly one column: always the currently shortest, ties going to
// the lowest index.
type ColumnSet struct {
	cols    [][]unsplash.Photo
	heights []float64
}

func NewColumnSet(n int) *ColumnSet {
	if n < 1 {
		n = 1
	}
	return &ColumnSet{
		cols:    make([][]unsplash.Photo, n),
		heights: make([]float64, n),
	}
}

func (cs *ColumnSet) Add(p unsplash.Photo) {
	shortest := 0
	for i := 1; i < len(cs.heights); i++ {
		if cs.heights[i] < cs.heights[shortest] {
			shortest = i
		}
	}
	cs.cols[shortest] = append(cs.cols[shortest], p)
	cs.heights[shortest] += columnWidth * p.Ratio()
}

// Columns returns a deep-enough copy for rendering; callers must not rely on
// sharing with the live set.
func (cs *ColumnSet) Columns() [][]unsplash.Photo {
	out := make([][]unsplash.Photo, len(cs.cols))
	for i, col := range cs.cols {
		out[i] = append([]unsplash.Photo(nil), col...)
	}
	return out
}

func (cs *ColumnSet) Heights() []float64 {
	return append([]float64(nil), cs.heights...)
}

func (cs *ColumnSet) Len() int {
	total := 0
	for _, col := range cs.cols {
		total += len(col)
	}
	return total
}

// Rebuild redistributes photos into a fresh set of n columns, in order.
// Column-count changes recompute from scratch rather than shuffling in place.
func Rebuild(photos []unsplash.Photo, n int) *ColumnSet {
	cs := NewColumnSet(n)
	for _, p := range photos {
		cs.Add(p)
	}
	return cs
}

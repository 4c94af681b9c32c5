package aura

import "github.com/tidwall/rtree"

// RStarTree is the R*-tree aura backend, backed by github.com/tidwall/rtree.
// Adopted in place of the pack's buntdb-internal rtred (not independently
// importable) as the standalone published member of the same tidwall
// spatial-index family (see github.com/ghjramos-aistore's dependency on
// tidwall/rtred, tidwall/btree, tidwall/buntdb). Preferable to the grid
// backend when agents cluster unevenly across the simulated area.
type RStarTree struct {
	tree *rtree.RTree
}

// NewRStarTree returns an empty R*-tree backend.
func NewRStarTree() *RStarTree {
	return &RStarTree{tree: &rtree.RTree{}}
}

// Build discards the previous tree and inserts every point fresh. The
// underlying library has no bulk-load API, so Build allocates a new tree
// rather than deleting member-by-member, which would be O(n log n) for no
// benefit since the whole set changes every tick anyway.
func (t *RStarTree) Build(points []Positioned) {
	tree := &rtree.RTree{}
	for _, p := range points {
		min := [2]float64{float64(p.X), float64(p.Y)}
		tree.Insert(min, min, p)
	}
	t.tree = tree
}

// RangeQuery returns every indexed point within the rectangle.
func (t *RStarTree) RangeQuery(x1, y1, x2, y2 int32) []Positioned {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	min := [2]float64{float64(x1), float64(y1)}
	max := [2]float64{float64(x2), float64(y2)}
	var out []Positioned
	t.tree.Search(min, max, func(_, _ [2]float64, value interface{}) bool {
		out = append(out, value.(Positioned))
		return true
	})
	return out
}

// Nearest performs a bounded rectangular search around (x,y) and sorts the
// result by squared distance, same strategy as the grid backend: the
// library's own nearest-neighbor iterator orders by distance to a point
// but doesn't support a radius cutoff directly, so a rectangle bound plus
// a client-side sort covers both needs with one code path.
func (t *RStarTree) Nearest(x, y int32, radiusCM int32, limit int) []Positioned {
	candidates := t.RangeQuery(x-radiusCM, y-radiusCM, x+radiusCM, y+radiusCM)
	r2 := int64(radiusCM) * int64(radiusCM)
	filtered := candidates[:0]
	for _, p := range candidates {
		dx, dy := int64(p.X-x), int64(p.Y-y)
		if dx*dx+dy*dy <= r2 {
			filtered = append(filtered, p)
		}
	}
	for i := 1; i < len(filtered); i++ {
		for j := i; j > 0 && sqDist(filtered[j], x, y) < sqDist(filtered[j-1], x, y); j-- {
			filtered[j], filtered[j-1] = filtered[j-1], filtered[j]
		}
	}
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered
}

func sqDist(p Positioned, x, y int32) int64 {
	dx, dy := int64(p.X-x), int64(p.Y-y)
	return dx*dx + dy*dy
}

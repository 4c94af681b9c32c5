package aura

// SimTree is the third aura backend: a fixed-depth quadtree-style partition
// tree, recursively splitting the simulated bounding box rather than
// hashing into uniform cells (Grid) or balancing by insertion (RStarTree).
// Named after SimMobility's custom "SimTree" partition structure
// (original_source/dev/Basic/medium/geospatial/...), which this backend
// reproduces in spirit: static bounds decided once at construction, split
// evenly to a fixed depth, well suited to road networks whose agent
// density is roughly uniform across the simulated extent.
type SimTree struct {
	bounds   [4]int32 // x1, y1, x2, y2
	maxDepth int
	root     *simNode
}

type simNode struct {
	bounds   [4]int32
	points   []Positioned
	children [4]*simNode // nil until split
}

const simTreeLeafCapacity = 16

// NewSimTree returns a SimTree covering the given bounding box, split to
// maxDepth levels as points accumulate.
func NewSimTree(x1, y1, x2, y2 int32, maxDepth int) *SimTree {
	if maxDepth <= 0 {
		maxDepth = 8
	}
	return &SimTree{bounds: [4]int32{x1, y1, x2, y2}, maxDepth: maxDepth}
}

// Build discards the previous partition and re-inserts every point.
func (t *SimTree) Build(points []Positioned) {
	root := &simNode{bounds: t.bounds}
	for _, p := range points {
		root.insert(p, t.maxDepth)
	}
	t.root = root
}

func (n *simNode) insert(p Positioned, depthBudget int) {
	if n.children[0] == nil {
		n.points = append(n.points, p)
		if len(n.points) > simTreeLeafCapacity && depthBudget > 0 {
			n.split(depthBudget)
		}
		return
	}
	n.childFor(p).insert(p, depthBudget-1)
}

func (n *simNode) split(depthBudget int) {
	x1, y1, x2, y2 := n.bounds[0], n.bounds[1], n.bounds[2], n.bounds[3]
	mx, my := x1+(x2-x1)/2, y1+(y2-y1)/2
	n.children[0] = &simNode{bounds: [4]int32{x1, y1, mx, my}}
	n.children[1] = &simNode{bounds: [4]int32{mx, y1, x2, my}}
	n.children[2] = &simNode{bounds: [4]int32{x1, my, mx, y2}}
	n.children[3] = &simNode{bounds: [4]int32{mx, my, x2, y2}}
	pts := n.points
	n.points = nil
	for _, p := range pts {
		n.childFor(p).insert(p, depthBudget-1)
	}
}

func (n *simNode) childFor(p Positioned) *simNode {
	mx := n.bounds[0] + (n.bounds[2]-n.bounds[0])/2
	my := n.bounds[1] + (n.bounds[3]-n.bounds[1])/2
	idx := 0
	if p.X >= mx {
		idx |= 1
	}
	if p.Y >= my {
		idx |= 2
	}
	return n.children[idx]
}

func rectsOverlap(a [4]int32, x1, y1, x2, y2 int32) bool {
	return a[0] <= x2 && a[2] >= x1 && a[1] <= y2 && a[3] >= y1
}

func (n *simNode) rangeQuery(x1, y1, x2, y2 int32, out *[]Positioned) {
	if n == nil || !rectsOverlap(n.bounds, x1, y1, x2, y2) {
		return
	}
	for _, p := range n.points {
		if p.X >= x1 && p.X <= x2 && p.Y >= y1 && p.Y <= y2 {
			*out = append(*out, p)
		}
	}
	for _, c := range n.children {
		c.rangeQuery(x1, y1, x2, y2, out)
	}
}

// RangeQuery descends only into child quadrants overlapping the rectangle.
func (t *SimTree) RangeQuery(x1, y1, x2, y2 int32) []Positioned {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	var out []Positioned
	t.root.rangeQuery(x1, y1, x2, y2, &out)
	return out
}

// Nearest performs a bounded range query and sorts by squared distance,
// the same strategy used by the other two backends.
func (t *SimTree) Nearest(x, y int32, radiusCM int32, limit int) []Positioned {
	candidates := t.RangeQuery(x-radiusCM, y-radiusCM, x+radiusCM, y+radiusCM)
	r2 := int64(radiusCM) * int64(radiusCM)
	filtered := candidates[:0]
	for _, p := range candidates {
		if sqDist(p, x, y) <= r2 {
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

package label

// disjointset implements a union–find forest over integer label identifiers
// with path compression and union by rank. It is flat-array scratch space:
// one forest is built per labelling call and discarded afterwards.

// DisjointSet is a union–find forest over the label ids 0..n-1.
type DisjointSet struct {
	parent []int32
	rank   []int8
}

// NewDisjointSet creates a forest of n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	d := &DisjointSet{
		parent: make([]int32, n),
		rank:   make([]int8, n),
	}
	for i := range d.parent {
		d.parent[i] = int32(i)
	}
	return d
}

// Find returns the root of x's set, compressing the path as it goes.
func (d *DisjointSet) Find(x int) int {
	root := int32(x)
	for d.parent[root] != root {
		root = d.parent[root]
	}
	// Second pass: point every node on the path at the root.
	for cur := int32(x); cur != root; {
		next := d.parent[cur]
		d.parent[cur] = root
		cur = next
	}
	return int(root)
}

// Union merges the sets containing a and b, attaching the lower-rank root
// under the higher-rank one.
func (d *DisjointSet) Union(a, b int) {
	ra, rb := int32(d.Find(a)), int32(d.Find(b))
	if ra == rb {
		return
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
}

// Size returns the number of elements in the forest.
func (d *DisjointSet) Size() int { return len(d.parent) }

package label

import "testing"

func TestDisjointSetBasic(t *testing.T) {
	d := NewDisjointSet(10)

	for i := 0; i < 10; i++ {
		if d.Find(i) != i {
			t.Fatalf("fresh forest: Find(%d) = %d", i, d.Find(i))
		}
	}

	d.Union(0, 1)
	d.Union(2, 3)
	d.Union(1, 3)

	root := d.Find(0)
	for _, x := range []int{1, 2, 3} {
		if d.Find(x) != root {
			t.Errorf("Find(%d) = %d, want %d", x, d.Find(x), root)
		}
	}
	if d.Find(4) == root {
		t.Error("element 4 should remain a singleton")
	}
}

func TestDisjointSetChainCompression(t *testing.T) {
	const n = 1000
	d := NewDisjointSet(n)
	for i := 1; i < n; i++ {
		d.Union(i-1, i)
	}
	root := d.Find(0)
	for i := 0; i < n; i++ {
		if d.Find(i) != root {
			t.Fatalf("chain not fully merged at %d", i)
		}
	}
	// After Find, paths are compressed to point straight at the root.
	for i := 0; i < n; i++ {
		if d.parent[i] != int32(root) {
			t.Fatalf("path at %d not compressed", i)
		}
	}
}

func TestDisjointSetUnionIdempotent(t *testing.T) {
	d := NewDisjointSet(4)
	d.Union(0, 1)
	d.Union(0, 1)
	d.Union(1, 0)
	if d.Find(0) != d.Find(1) {
		t.Error("0 and 1 should share a root")
	}
	if d.Size() != 4 {
		t.Errorf("Size() = %d, want 4", d.Size())
	}
}

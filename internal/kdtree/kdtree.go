/*
Package kdtree implements an exact nearest-neighbour index over VAD space.

The tree is a balanced 3-d tree built once from the catalogue by median
partitioning, with the split axis cycling valence, arousal, dominance by
depth. Nodes live in one contiguous slice addressed by int32 handles, and
both construction and search use explicit stacks, so deep or degenerate
catalogues never grow the goroutine stack.

A built Tree is never mutated; every method is safe for concurrent use.
Ties on distance are broken by catalogue insertion index, so results are
identical to a brute-force scan with the same ordering.
*/
package kdtree

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// none marks an absent child.
const none int32 = -1

// minAxisScale floors the per-axis standard deviation.
const minAxisScale = 1e-6

type node struct {
	entry       int32
	axis        uint8
	left, right int32
}

// Tree is an immutable KD-tree over catalogue entries.
type Tree struct {
	entries []vad.Entry
	points  []vad.Vec3
	nodes   []node
	root    int32
	depth   int
	scale   vad.Vec3
}

// Neighbor is a search hit: the entry index and its squared distance.
type Neighbor struct {
	Index int
	Dist2 float64
}

// Distance returns the Euclidean distance of the hit.
func (n Neighbor) Distance() float64 {
	return math.Sqrt(n.Dist2)
}

// before orders hits by distance, then by insertion index.
func (n Neighbor) before(o Neighbor) bool {
	if n.Dist2 != o.Dist2 {
		return n.Dist2 < o.Dist2
	}
	return n.Index < o.Index
}

// buildFrame is one pending range of the construction work stack.
type buildFrame struct {
	lo, hi int
	depth  int
	parent int32
	left   bool
}

// Build constructs a balanced tree in O(N log N). Building the same entries
// in the same order always yields the same tree.
func Build(entries []vad.Entry) *Tree {
	t := &Tree{
		entries: make([]vad.Entry, len(entries)),
		points:  make([]vad.Vec3, len(entries)),
		nodes:   make([]node, 0, len(entries)),
		root:    none,
	}
	copy(t.entries, entries)
	for i, e := range t.entries {
		t.points[i] = e.Vec()
	}
	t.scale = axisScale(t.points)

	if len(entries) == 0 {
		return t
	}

	order := make([]int32, len(entries))
	for i := range order {
		order[i] = int32(i)
	}

	stack := []buildFrame{{lo: 0, hi: len(order), depth: 0, parent: none}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.lo >= f.hi {
			continue
		}

		axis := f.depth % 3
		mid := f.lo + (f.hi-f.lo)/2
		selectNth(order[f.lo:f.hi], mid-f.lo, func(a, b int32) bool {
			pa, pb := t.points[a].At(axis), t.points[b].At(axis)
			if pa != pb {
				return pa < pb
			}
			return a < b
		})

		handle := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{entry: order[mid], axis: uint8(axis), left: none, right: none})
		switch {
		case f.parent == none:
			t.root = handle
		case f.left:
			t.nodes[f.parent].left = handle
		default:
			t.nodes[f.parent].right = handle
		}
		if f.depth+1 > t.depth {
			t.depth = f.depth + 1
		}

		stack = append(stack,
			buildFrame{lo: mid + 1, hi: f.hi, depth: f.depth + 1, parent: handle, left: false},
			buildFrame{lo: f.lo, hi: mid, depth: f.depth + 1, parent: handle, left: true},
		)
	}

	return t
}

// selectNth reorders idx so that idx[k] holds the element of rank k and
// everything before it ranks lower. less must be a strict total order.
func selectNth(idx []int32, k int, less func(a, b int32) bool) {
	lo, hi := 0, len(idx)-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		if less(idx[mid], idx[lo]) {
			idx[mid], idx[lo] = idx[lo], idx[mid]
		}
		if less(idx[hi], idx[lo]) {
			idx[hi], idx[lo] = idx[lo], idx[hi]
		}
		if less(idx[mid], idx[hi]) {
			idx[mid], idx[hi] = idx[hi], idx[mid]
		}

		pivot := idx[hi]
		store := lo
		for i := lo; i < hi; i++ {
			if less(idx[i], pivot) {
				idx[i], idx[store] = idx[store], idx[i]
				store++
			}
		}
		idx[store], idx[hi] = idx[hi], idx[store]

		switch {
		case k == store:
			return
		case k < store:
			hi = store - 1
		default:
			lo = store + 1
		}
	}
}

// axisScale returns the sample standard deviation of each axis.
func axisScale(points []vad.Vec3) vad.Vec3 {
	var out [3]float64
	column := make([]float64, len(points))
	for axis := 0; axis < 3; axis++ {
		for i, p := range points {
			column[i] = p.At(axis)
		}
		sd := minAxisScale
		if len(points) > 1 {
			if s := stat.StdDev(column, nil); s > minAxisScale && !math.IsNaN(s) {
				sd = s
			}
		}
		out[axis] = sd
	}
	return vad.Vec3{X: out[0], Y: out[1], Z: out[2]}
}

// Len returns the number of indexed entries.
func (t *Tree) Len() int {
	return len(t.entries)
}

// Entry returns the i-th entry in catalogue order.
func (t *Tree) Entry(i int) vad.Entry {
	return t.entries[i]
}

// Depth returns the number of levels in the tree.
func (t *Tree) Depth() int {
	return t.depth
}

// AxisScale returns the per-axis sample standard deviation of the catalogue,
// floored at 1e-6.
func (t *Tree) AxisScale() vad.Vec3 {
	return t.scale
}

// Scan visits every entry in insertion order.
func (t *Tree) Scan(fn func(i int, e vad.Entry)) {
	for i, e := range t.entries {
		fn(i, e)
	}
}

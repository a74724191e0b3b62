package kdtree

import (
	"container/heap"
	"math"
	"sort"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// Nearest returns the k entries closest to q, closest first.
// k larger than the catalogue is clamped; k <= 0 returns nil.
func (t *Tree) Nearest(q vad.Vec3, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	return t.search(q, k, math.Inf(1))
}

// Within returns every entry whose distance to q is at most radius, closest
// first. When limit > 0 only the limit closest are kept.
func (t *Tree) Within(q vad.Vec3, radius float64, limit int) []Neighbor {
	if radius < 0 || math.IsNaN(radius) {
		return nil
	}
	if limit <= 0 {
		limit = len(t.entries)
	}
	return t.search(q, limit, radius*radius)
}

// visit is a pending subtree with a lower bound on its squared distance.
type visit struct {
	node  int32
	bound float64
}

// search keeps the k best hits with Dist2 <= maxDist2 in a bounded max-heap.
// A subtree is skipped only when its bound strictly exceeds the current
// threshold, so candidates tied with the worst kept hit are still compared.
func (t *Tree) search(q vad.Vec3, k int, maxDist2 float64) []Neighbor {
	if t.root == none {
		return nil
	}
	if k > len(t.entries) {
		k = len(t.entries)
	}

	best := make(neighborHeap, 0, k)
	threshold := func() float64 {
		if len(best) == k && best[0].Dist2 < maxDist2 {
			return best[0].Dist2
		}
		return maxDist2
	}

	stack := []visit{{node: t.root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v.bound > threshold() {
			continue
		}

		n := t.nodes[v.node]
		p := t.points[n.entry]
		cand := Neighbor{Index: int(n.entry), Dist2: q.Dist2(p)}
		if cand.Dist2 <= maxDist2 {
			switch {
			case len(best) < k:
				heap.Push(&best, cand)
			case cand.before(best[0]):
				best[0] = cand
				heap.Fix(&best, 0)
			}
		}

		delta := q.At(int(n.axis)) - p.At(int(n.axis))
		near, far := n.left, n.right
		if delta > 0 {
			near, far = n.right, n.left
		}

		// Far side first so the near side is popped next.
		if far != none {
			bound := delta * delta
			if v.bound > bound {
				bound = v.bound
			}
			if bound <= threshold() {
				stack = append(stack, visit{node: far, bound: bound})
			}
		}
		if near != none {
			stack = append(stack, visit{node: near, bound: v.bound})
		}
	}

	out := []Neighbor(best)
	sort.Slice(out, func(i, j int) bool { return out[i].before(out[j]) })
	return out
}

// neighborHeap is a max-heap: the worst kept hit sits at index 0.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return h[j].before(h[i]) }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

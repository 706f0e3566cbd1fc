package smiles

import "sort"

// collectRingPath returns the atoms on the cycle closed between start and
// end, in traversal order from start.
//
// The cycle is the bonded path between the two atoms through the branch
// tree: up from start to the lowest common ancestor, then down to end.
// Atoms in unrelated sibling branches never lie on that path. Rings closed
// earlier from the same depth whose ends both lie on the path act as
// shortcuts: their closure edge replaces the atoms between them, so two
// rings sharing an edge do not both claim the inner atoms.
func (l *atomList) collectRingPath(start, end, depth int, closed []int) []int {
	upFromEnd := make(map[int]int)
	var endChain []int
	for a := end; a >= 0; a = l.pred(a) {
		upFromEnd[a] = len(endChain)
		endChain = append(endChain, a)
	}

	var path []int
	a := start
	for a >= 0 {
		if _, ok := upFromEnd[a]; ok {
			break
		}
		path = append(path, a)
		a = l.pred(a)
	}
	if a < 0 {
		// Unreachable for a single connected input; fall back to the
		// closing side alone.
		for i := len(endChain) - 1; i >= 0; i-- {
			path = append(path, endChain[i])
		}
		return path
	}
	path = append(path, a)
	for i := upFromEnd[a] - 1; i >= 0; i-- {
		path = append(path, endChain[i])
	}

	return l.applyShortcuts(path, start, end, depth, closed)
}

func (l *atomList) applyShortcuts(path []int, start, end, depth int, closed []int) []int {
	var inner []RingBoundary
	for _, id := range closed {
		rb := l.rings[id]
		if rb.Depth != depth || rb.Start < start || rb.End > end {
			continue
		}
		if rb.Start == start && rb.End == end {
			continue
		}
		inner = append(inner, rb)
	}
	// Widest first so a nested inner ring cannot split a wider shortcut.
	sort.SliceStable(inner, func(i, j int) bool {
		wi, wj := inner[i].End-inner[i].Start, inner[j].End-inner[j].Start
		if wi != wj {
			return wi > wj
		}
		return inner[i].Start < inner[j].Start
	})

	for _, rb := range inner {
		i, j := indexOf(path, rb.Start), indexOf(path, rb.End)
		if i < 0 || j < 0 {
			continue
		}
		if i > j {
			i, j = j, i
		}
		if j-i <= 1 {
			continue
		}
		out := make([]int, 0, len(path)-(j-i-1))
		out = append(out, path[:i+1]...)
		out = append(out, path[j:]...)
		path = out
	}
	return path
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

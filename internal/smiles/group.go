package smiles

import "sort"

// ringGroup is a set of rings that share atoms, plus everything folded
// into it for inline emission.
type ringGroup struct {
	members    []int // ring IDs, base first
	offsets    []int // parallel to members
	sequential []int // ring IDs folded in without sharing atoms
	layout     []int // every atom emitted inline, ascending; multi-ring groups only
	home       int   // branch ID of the scope the group is written in, -1 for top level
	entry      int   // first atom of the group in the home scope
	last       int   // last atom of the group in the home scope
}

func (g *ringGroup) fused() bool { return len(g.members) > 1 }

// groupRings partitions the closed rings into fused groups. Groups come out
// ordered by their base ring's start atom.
func (l *atomList) groupRings(scopes map[int][]int) []*ringGroup {
	order := make([]int, len(l.rings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return l.rings[order[i]].Start < l.rings[order[j]].Start
	})

	assigned := make([]bool, len(l.rings))
	var groups []*ringGroup
	for _, seed := range order {
		if assigned[seed] {
			continue
		}
		assigned[seed] = true
		g := &ringGroup{members: []int{seed}}
		covered := make(map[int]bool)
		for _, p := range l.rings[seed].Positions {
			covered[p] = true
		}

		// Transitive closure. No depth filter, so rings opened inside a
		// branch that share atoms with the system are folded in too.
		for changed := true; changed; {
			changed = false
			for _, id := range order {
				if assigned[id] || !l.intersects(id, covered) {
					continue
				}
				assigned[id] = true
				g.members = append(g.members, id)
				for _, p := range l.rings[id].Positions {
					covered[p] = true
				}
				changed = true
			}
		}

		sort.SliceStable(g.members, func(i, j int) bool {
			return l.rings[g.members[i]].Start < l.rings[g.members[j]].Start
		})
		g.offsets = l.fusionOffsets(g.members)
		if g.fused() {
			l.fold(g, scopes, assigned)
		} else {
			l.setHome(g, l.rings[seed].Positions)
		}
		groups = append(groups, g)
	}
	return groups
}

func (l *atomList) intersects(id int, set map[int]bool) bool {
	for _, p := range l.rings[id].Positions {
		if set[p] {
			return true
		}
	}
	return false
}

// fusionOffsets returns, for each member, the index in the base ring's
// positions of the first atom it shares with the base. The base and any
// member sharing nothing with it get 0.
func (l *atomList) fusionOffsets(members []int) []int {
	offsets := make([]int, len(members))
	base := l.rings[members[0]].Positions
	for k := 1; k < len(members); k++ {
		other := make(map[int]bool)
		for _, p := range l.rings[members[k]].Positions {
			other[p] = true
		}
		for i, p := range base {
			if other[p] {
				offsets[k] = i
				break
			}
		}
	}
	return offsets
}

// setHome picks the scope of the shallowest atom, lowest index first, and
// the first and last group atoms within it.
func (l *atomList) setHome(g *ringGroup, atoms []int) {
	best := -1
	for _, a := range atoms {
		if best < 0 || l.atoms[a].Depth < l.atoms[best].Depth ||
			(l.atoms[a].Depth == l.atoms[best].Depth && a < best) {
			best = a
		}
	}
	g.home = l.atoms[best].BranchID
	g.entry, g.last = -1, -1
	for _, a := range atoms {
		if l.atoms[a].BranchID != g.home {
			continue
		}
		if g.entry < 0 || a < g.entry {
			g.entry = a
		}
		if a > g.last {
			g.last = a
		}
	}
}

// fold grows a fused group's atom set until it can be written inline: gaps
// in the home scope are filled, every other scope the group touches is
// taken whole along with its anchor, and rings touching the set become
// sequential members. Each fold can expose more, so it runs to a fixpoint.
func (l *atomList) fold(g *ringGroup, scopes map[int][]int, taken []bool) {
	in := make([]bool, len(l.atoms))
	for _, id := range g.members {
		for _, p := range l.rings[id].Positions {
			in[p] = true
		}
	}
	collect := func() []int {
		var out []int
		for a, ok := range in {
			if ok {
				out = append(out, a)
			}
		}
		return out
	}

	for changed := true; changed; {
		changed = false
		add := func(a int) {
			if a >= 0 && !in[a] {
				in[a] = true
				changed = true
			}
		}

		atoms := collect()
		l.setHome(g, atoms)

		for _, a := range scopes[g.home] {
			if a > g.entry && a < g.last {
				add(a)
			}
		}

		seen := make(map[int]bool)
		for _, a := range atoms {
			scope := l.atoms[a].BranchID
			if scope == g.home || seen[scope] {
				continue
			}
			seen[scope] = true
			list := scopes[scope]
			for _, b := range list {
				add(b)
			}
			if len(list) > 0 {
				add(l.atoms[list[0]].Parent)
			}
		}

		for id := range l.rings {
			if taken[id] {
				continue
			}
			hit := false
			for _, p := range l.rings[id].Positions {
				if in[p] {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
			taken[id] = true
			g.sequential = append(g.sequential, id)
			for _, p := range l.rings[id].Positions {
				add(p)
			}
		}
	}

	g.layout = collect()
	l.setHome(g, g.layout)
}

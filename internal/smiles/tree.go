package smiles

import "github.com/dgallion1/molgest/internal/molecule"

// exclusion marks atoms an enclosing ring system already emits. It is
// passed down explicitly so attachment collection never re-emits them.
type exclusion []bool

func (x exclusion) has(a int) bool { return a >= 0 && a < len(x) && x[a] }

// treeBuilder runs the second pass over an atom list.
type treeBuilder struct {
	list     *atomList
	groups   []*ringGroup
	groupOf  []int // atom -> group index, -1 outside every ring system
	built    []bool
	scopes   map[int][]int // branch ID -> atoms in order, -1 for top level
	scopeIdx []int         // atom -> index within its scope
	branches [][]int       // atom -> branch IDs rooted there, in order
}

func newTreeBuilder(l *atomList) *treeBuilder {
	n := len(l.atoms)
	b := &treeBuilder{
		list:     l,
		groupOf:  make([]int, n),
		scopes:   make(map[int][]int),
		scopeIdx: make([]int, n),
		branches: make([][]int, n),
	}
	for i := range l.atoms {
		rec := &l.atoms[i]
		scope, seen := b.scopes[rec.BranchID]
		if !seen && rec.BranchID >= 0 {
			b.branches[rec.Parent] = append(b.branches[rec.Parent], rec.BranchID)
		}
		b.scopeIdx[i] = len(scope)
		b.scopes[rec.BranchID] = append(scope, i)
		b.groupOf[i] = -1
	}

	b.groups = l.groupRings(b.scopes)
	b.built = make([]bool, len(b.groups))
	for gi, g := range b.groups {
		atoms := g.layout
		if !g.fused() {
			atoms = l.rings[g.members[0]].Positions
		}
		for _, a := range atoms {
			if b.groupOf[a] < 0 {
				b.groupOf[a] = gi
			}
		}
	}
	return b
}

func (b *treeBuilder) build() molecule.Node {
	return b.buildScope(b.scopes[-1], false)
}

// buildScope turns a run of same-scope atoms into a node. Branch content
// keeps the bond written after its opening parenthesis on its first chain.
func (b *treeBuilder) buildScope(scope []int, inBranch bool) molecule.Node {
	var comps []molecule.Node
	var pending []int
	flush := func() {
		if len(pending) == 0 {
			return
		}
		retain := inBranch && pending[0] == scope[0]
		comps = append(comps, b.chain(pending, retain))
		pending = nil
	}

	for i := 0; i < len(scope); {
		a := scope[i]
		gi := b.groupOf[a]
		if gi < 0 || b.built[gi] || b.groups[gi].home != b.list.atoms[a].BranchID {
			pending = append(pending, a)
			i++
			continue
		}

		flush()
		b.built[gi] = true
		g := b.groups[gi]
		j := i
		for j < len(scope) && scope[j] <= g.last {
			j++
		}
		if g.fused() {
			comps = append(comps, b.fusedRing(g))
			i = j
			continue
		}
		ring, tookRest := b.ring(g, scope[j:])
		comps = append(comps, ring)
		if tookRest {
			break
		}
		i = j
	}
	flush()
	return molecule.Concat(comps...)
}

func (b *treeBuilder) chain(atoms []int, retain bool) *molecule.Chain {
	c := &molecule.Chain{}
	for i, a := range atoms {
		rec := &b.list.atoms[a]
		c.Atoms = append(c.Atoms, rec.Symbol)
		if i > 0 || retain {
			c.Bonds = append(c.Bonds, rec.Bond)
		}
		for _, br := range b.branches[a] {
			c.Attachments = attach(c.Attachments, i+1, b.buildScope(b.scopes[br], true))
		}
	}
	if !retain {
		c.LeadingBond = b.list.atoms[atoms[0]].Bond
	}
	return c
}

// ring builds a lone ring, rotated so it starts at its first atom in the
// home scope. rest is the home scope after the ring; when the ring does not
// end where rest continues, rest becomes an attachment and tookRest is set.
func (b *treeBuilder) ring(g *ringGroup, rest []int) (molecule.Node, bool) {
	rb := &b.list.rings[g.members[0]]
	pos, bonds := b.list.rotate(rb, g.entry)

	skip := make(exclusion, len(b.list.atoms))
	for _, a := range pos {
		skip[a] = true
	}
	r := b.ringNode(rb.Number, pos, bonds, skip, nil, g.home)
	r.LeadingBond = b.list.atoms[g.entry].Bond

	if len(rest) == 0 || g.last == pos[len(pos)-1] {
		return r, false
	}
	at := indexOf(pos, g.last) + 1
	r.Attachments = attach(r.Attachments, at, b.buildScope(rest, true))
	return r, true
}

// fusedRing builds a multi-ring system with the layout the serializer
// needs to write it back inline.
func (b *treeBuilder) fusedRing(g *ringGroup) *molecule.FusedRing {
	l := b.list
	skip := make(exclusion, len(l.atoms))
	for _, a := range g.layout {
		skip[a] = true
	}

	all := append(append([]int(nil), g.members...), g.sequential...)
	slot := make(map[int]int, len(all)) // ring ID -> index in all
	owner := make(map[int]int)          // atom -> index in all
	for k, id := range all {
		slot[id] = k
		for _, a := range l.rings[id].Positions {
			if _, ok := owner[a]; !ok {
				owner[a] = k
			}
		}
	}

	layout := &molecule.Layout{}
	f := &molecule.FusedRing{Layout: layout, LeadingBond: l.atoms[g.layout[0]].Bond}
	for k, id := range all {
		rb := &l.rings[id]
		owns := func(a int) bool { return owner[a] == k }
		r := b.ringNode(rb.Number, rb.Positions, l.edgeBonds(rb), skip, owns, noTail)
		positions := append([]int(nil), rb.Positions...)
		if k < len(g.members) {
			r.FusionOffset = g.offsets[k]
			f.Rings = append(f.Rings, r)
			layout.RingPositions = append(layout.RingPositions, positions)
		} else {
			layout.Sequential = append(layout.Sequential, r)
			layout.SequentialPositions = append(layout.SequentialPositions, positions)
		}
	}

	for _, a := range g.layout {
		rec := &l.atoms[a]
		la := molecule.LayoutAtom{
			Index:    a,
			Depth:    rec.Depth,
			Parent:   rec.Parent,
			BranchID: rec.BranchID,
			Symbol:   rec.Symbol,
			Bond:     rec.Bond,
		}
		for _, m := range rec.marks {
			k, ok := slot[m.ring]
			if !ok {
				continue
			}
			mark := molecule.RingMark{Ring: k, Number: l.rings[m.ring].Number, Closing: m.closing}
			if m.closing {
				mark.Bond = l.rings[m.ring].Bond
			}
			la.Marks = append(la.Marks, mark)
		}
		layout.Atoms = append(layout.Atoms, la)

		if _, ok := owner[a]; ok {
			continue
		}
		for _, br := range b.branches[a] {
			sc := b.scopes[br]
			if skip.has(sc[0]) {
				continue
			}
			if layout.Extra == nil {
				layout.Extra = make(map[int][]molecule.Node)
			}
			layout.Extra[a] = append(layout.Extra[a], b.buildScope(sc, true))
		}
	}
	return f
}

// noTail disables continuation attachments; fused layouts carry their
// non-home scopes inline.
const noTail = -2

// ringNode builds a Ring over pos. Attachments are collected for the
// positions owns accepts (all when nil), skipping excluded atoms. For atoms
// outside the home scope the rest of their scope also hangs off them,
// unless home is noTail.
func (b *treeBuilder) ringNode(number int, pos []int, bonds []string, skip exclusion, owns func(int) bool, home int) *molecule.Ring {
	l := b.list
	syms := make([]string, len(pos))
	for i, a := range pos {
		syms[i] = l.atoms[a].Symbol
	}
	r := &molecule.Ring{
		BaseSymbol: baseSymbol(syms),
		Size:       len(pos),
		RingNumber: number,
		Bonds:      bonds,
	}
	for i, s := range syms {
		if s == r.BaseSymbol {
			continue
		}
		if r.Substitutions == nil {
			r.Substitutions = make(map[int]string)
		}
		r.Substitutions[i+1] = s
	}

	for i, a := range pos {
		if owns != nil && !owns(a) {
			continue
		}
		for _, br := range b.branches[a] {
			sc := b.scopes[br]
			if skip.has(sc[0]) {
				continue
			}
			r.Attachments = attach(r.Attachments, i+1, b.buildScope(sc, true))
		}
		scope := l.atoms[a].BranchID
		if home == noTail || scope == home {
			continue
		}
		sc := b.scopes[scope]
		if k := b.scopeIdx[a] + 1; k < len(sc) && !skip.has(sc[k]) {
			r.Attachments = attach(r.Attachments, i+1, b.buildScope(sc[k:], true))
		}
	}
	return r
}

// baseSymbol returns the most frequent symbol; on a tie the one reaching
// the count last wins.
func baseSymbol(syms []string) string {
	counts := make(map[string]int, len(syms))
	best, bestN := "", 0
	for _, s := range syms {
		counts[s]++
		if counts[s] >= bestN {
			best, bestN = s, counts[s]
		}
	}
	return best
}

// edgeBond returns the bond written between two bonded atoms.
func (l *atomList) edgeBond(u, v int) string {
	if l.pred(v) == u {
		return l.atoms[v].Bond
	}
	if l.pred(u) == v {
		return l.atoms[u].Bond
	}
	return l.closures[edgeOf(u, v)]
}

// edgeBonds returns per-position bonds for a ring: entry 0 is the closure,
// entry i the bond into position i+1.
func (l *atomList) edgeBonds(rb *RingBoundary) []string {
	bonds := make([]string, len(rb.Positions))
	bonds[0] = rb.Bond
	for i := 1; i < len(rb.Positions); i++ {
		bonds[i] = l.edgeBond(rb.Positions[i-1], rb.Positions[i])
	}
	return bonds
}

// rotate returns the ring's positions and bonds starting at atom first.
func (l *atomList) rotate(rb *RingBoundary, first int) ([]int, []string) {
	bonds := l.edgeBonds(rb)
	r := indexOf(rb.Positions, first)
	if r <= 0 {
		return append([]int(nil), rb.Positions...), bonds
	}
	n := len(rb.Positions)
	pos := make([]int, n)
	rot := make([]string, n)
	for k := 0; k < n; k++ {
		pos[k] = rb.Positions[(k+r)%n]
		rot[k] = bonds[(k+r)%n]
	}
	return pos, rot
}

func attach(m molecule.Attachments, pos int, n molecule.Node) molecule.Attachments {
	if m == nil {
		m = make(molecule.Attachments)
	}
	m[pos] = append(m[pos], n)
	return m
}

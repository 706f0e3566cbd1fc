package smiles

import (
	"sort"

	"github.com/dgallion1/molgest/internal/token"
)

// AtomRecord is one atom in scan order. Records are addressed by Index;
// links to other atoms are indexes, -1 meaning none.
type AtomRecord struct {
	Index            int
	Symbol           string
	Bond             string // bond written before the atom
	Depth            int
	Parent           int
	BranchID         int
	Prev             int // previous atom at the same depth in the same branch
	AfterBranchClose bool
	Rings            []int // ring numbers the atom belongs to
	marks            []atomMark
}

type atomMark struct {
	ring    int // RingBoundary.ID
	closing bool
}

// RingBoundary is a closed ring: the numbered marker pair plus the atoms
// on the cycle in traversal order.
type RingBoundary struct {
	ID        int // order of opening, unique within a parse
	Number    int
	Start     int
	End       int
	Positions []int
	Depth     int // depth of the opening atom
	BranchID  int // branch of the opening atom
	Bond      string
}

type edge [2]int

func edgeOf(u, v int) edge {
	if u > v {
		u, v = v, u
	}
	return edge{u, v}
}

// atomList is the output of the first pass.
type atomList struct {
	atoms []AtomRecord
	rings []RingBoundary // indexed by ID
	// closures maps every ring-closure edge to its bond.
	closures map[edge]string
}

// pred returns the atom a is bonded to by the chain it was written in.
func (l *atomList) pred(a int) int {
	rec := &l.atoms[a]
	if rec.Prev >= 0 {
		return rec.Prev
	}
	return rec.Parent
}

type branchFrame struct {
	parent   int
	branchID int
	pos      int
	atoms    int // atom count when the branch opened
}

type pendingRing struct {
	id       int
	start    int
	depth    int
	branchID int
	bond     string
}

type listBuilder struct {
	list        *atomList
	stack       []branchFrame
	lastAtDepth []int
	closedAt    []bool
	open        map[int]pendingRing
	closed      []int // ring IDs in closing order
	pending     string
	pendingPos  int
}

// buildAtomList runs the first pass over the token stream.
func buildAtomList(toks []token.Token) (*atomList, error) {
	b := &listBuilder{
		list:        &atomList{closures: make(map[edge]string)},
		lastAtDepth: []int{-1},
		closedAt:    []bool{false},
		open:        make(map[int]pendingRing),
	}

	for _, tok := range toks {
		var err error
		switch tok.Kind {
		case token.Atom:
			b.atom(tok)
		case token.Bond:
			err = b.bond(tok)
		case token.RingMarker:
			err = b.ringMarker(tok)
		case token.BranchOpen:
			err = b.branchOpen(tok)
		case token.BranchClose:
			err = b.branchClose(tok)
		case token.Dot:
			err = &SyntaxError{Pos: tok.Pos, Msg: "disconnected fragments ('.') are not supported"}
		}
		if err != nil {
			return nil, err
		}
	}

	if len(b.open) > 0 {
		nums := make([]int, 0, len(b.open))
		for n := range b.open {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		return nil, &RingBalanceError{Unclosed: nums}
	}
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		return nil, &SyntaxError{Pos: top.pos, Msg: "unclosed branch"}
	}
	if b.pending != "" {
		return nil, &SyntaxError{Pos: b.pendingPos, Msg: "bond without a following atom"}
	}
	return b.list, nil
}

func (b *listBuilder) depth() int { return len(b.stack) }

func (b *listBuilder) atom(tok token.Token) {
	d := b.depth()
	rec := AtomRecord{
		Index:    len(b.list.atoms),
		Symbol:   tok.Text,
		Bond:     b.pending,
		Depth:    d,
		Parent:   -1,
		BranchID: -1,
		Prev:     b.lastAtDepth[d],
	}
	if d > 0 {
		top := b.stack[d-1]
		rec.Parent = top.parent
		rec.BranchID = top.branchID
	}
	rec.AfterBranchClose = b.closedAt[d]
	b.closedAt[d] = false

	b.list.atoms = append(b.list.atoms, rec)
	b.lastAtDepth[d] = rec.Index
	b.pending = ""
}

func (b *listBuilder) bond(tok token.Token) error {
	if len(b.list.atoms) == 0 {
		return &SyntaxError{Pos: tok.Pos, Msg: "bond before the first atom"}
	}
	if b.pending != "" {
		return &SyntaxError{Pos: tok.Pos, Msg: "two bonds in a row"}
	}
	b.pending = tok.Text
	b.pendingPos = tok.Pos
	return nil
}

func (b *listBuilder) ringMarker(tok token.Token) error {
	cur := b.lastAtDepth[b.depth()]
	if cur < 0 {
		return &SyntaxError{Pos: tok.Pos, Msg: "ring marker without a preceding atom"}
	}
	bond := b.pending
	b.pending = ""

	o, isOpen := b.open[tok.Ring]
	if !isOpen {
		id := len(b.list.rings)
		b.list.rings = append(b.list.rings, RingBoundary{ID: id, Number: tok.Ring, Start: cur, End: -1})
		b.open[tok.Ring] = pendingRing{
			id:       id,
			start:    cur,
			depth:    b.list.atoms[cur].Depth,
			branchID: b.list.atoms[cur].BranchID,
			bond:     bond,
		}
		b.list.atoms[cur].marks = append(b.list.atoms[cur].marks, atomMark{ring: id})
		return nil
	}

	if cur == o.start {
		return &SyntaxError{Pos: tok.Pos, Msg: "ring closes on its opening atom"}
	}
	if bond != "" && o.bond != "" && bond != o.bond {
		return &SyntaxError{Pos: tok.Pos, Msg: "conflicting ring-closure bonds"}
	}
	if bond == "" {
		bond = o.bond
	}

	l := b.list
	l.closures[edgeOf(o.start, cur)] = bond
	positions := l.collectRingPath(o.start, cur, o.depth, b.closed)

	l.rings[o.id] = RingBoundary{
		ID:        o.id,
		Number:    tok.Ring,
		Start:     o.start,
		End:       cur,
		Positions: positions,
		Depth:     o.depth,
		BranchID:  o.branchID,
		Bond:      bond,
	}
	for _, p := range positions {
		l.atoms[p].Rings = append(l.atoms[p].Rings, tok.Ring)
	}
	l.atoms[cur].marks = append(l.atoms[cur].marks, atomMark{ring: o.id, closing: true})

	delete(b.open, tok.Ring)
	b.closed = append(b.closed, o.id)
	return nil
}

func (b *listBuilder) branchOpen(tok token.Token) error {
	d := b.depth()
	parent := b.lastAtDepth[d]
	if parent < 0 {
		return &SyntaxError{Pos: tok.Pos, Msg: "branch without an anchor atom"}
	}
	if b.pending != "" {
		return &SyntaxError{Pos: tok.Pos, Msg: "bond before a branch"}
	}
	b.stack = append(b.stack, branchFrame{
		parent:   parent,
		branchID: tok.Pos,
		pos:      tok.Pos,
		atoms:    len(b.list.atoms),
	})
	if len(b.lastAtDepth) <= d+1 {
		b.lastAtDepth = append(b.lastAtDepth, -1)
		b.closedAt = append(b.closedAt, false)
	}
	// A new branch never continues a sibling branch's chain.
	b.lastAtDepth[d+1] = -1
	b.closedAt[d+1] = false
	return nil
}

func (b *listBuilder) branchClose(tok token.Token) error {
	if len(b.stack) == 0 {
		return &SyntaxError{Pos: tok.Pos, Msg: "unmatched ')'"}
	}
	if b.pending != "" {
		return &SyntaxError{Pos: b.pendingPos, Msg: "bond without a following atom"}
	}
	top := b.stack[len(b.stack)-1]
	if top.atoms == len(b.list.atoms) {
		return &SyntaxError{Pos: top.pos, Msg: "empty branch"}
	}
	b.stack = b.stack[:len(b.stack)-1]
	b.closedAt[b.depth()] = true
	return nil
}

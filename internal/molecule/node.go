// Package molecule defines the structure tree produced by the notation
// parser and consumed by the serializer.
package molecule

// Kind names a tree node variant.
type Kind string

const (
	KindChain     Kind = "chain"
	KindRing      Kind = "ring"
	KindFusedRing Kind = "fused_ring"
	KindSequence  Kind = "sequence"
)

// Node is one of *Chain, *Ring, *FusedRing or *Sequence. Nodes are never
// modified after construction.
type Node interface {
	Kind() Kind
	// Leading returns the bond that joins this node to whatever precedes it
	// inside a Sequence or attachment, or "".
	Leading() string
}

// Attachments maps a 1-indexed position to the branches rooted there, in
// encounter order.
type Attachments map[int][]Node

// Chain is a run of atoms without ring closures.
//
// Bonds holds len(Atoms)-1 entries when the chain stands on its own. A
// chain that is the content of a branch keeps the bond written right
// after the opening parenthesis, so Bonds then has len(Atoms) entries.
type Chain struct {
	Atoms       []string
	Bonds       []string
	Attachments Attachments
	LeadingBond string
}

func (c *Chain) Kind() Kind      { return KindChain }
func (c *Chain) Leading() string { return c.LeadingBond }

// HasLeadingBond reports whether Bonds[0] is the bond before the first atom.
func (c *Chain) HasLeadingBond() bool {
	return len(c.Atoms) > 0 && len(c.Bonds) == len(c.Atoms)
}

// MaxRingSize is the largest Ring.Size the serializer accepts.
const MaxRingSize = 1 << 16

// Ring is a single cycle of Size atoms. Every position carries BaseSymbol
// unless Substitutions overrides it. Bonds[0] is the ring-closure bond;
// Bonds[i] is the bond into position i+1.
type Ring struct {
	BaseSymbol    string
	Size          int
	RingNumber    int
	FusionOffset  int
	Substitutions map[int]string
	Attachments   Attachments
	Bonds         []string
	LeadingBond   string
}

func (r *Ring) Kind() Kind      { return KindRing }
func (r *Ring) Leading() string { return r.LeadingBond }

// Symbol returns the atom at 1-indexed position pos.
func (r *Ring) Symbol(pos int) string {
	if s, ok := r.Substitutions[pos]; ok {
		return s
	}
	return r.BaseSymbol
}

// Bond returns the bond into 1-indexed position pos; position 1 yields the
// closure bond.
func (r *Ring) Bond(pos int) string {
	if pos < 1 || pos > len(r.Bonds) {
		return ""
	}
	return r.Bonds[pos-1]
}

// FusedRing is two or more rings sharing atoms. Rings[0] is the base ring.
type FusedRing struct {
	Rings       []*Ring
	Layout      *Layout
	LeadingBond string
}

func (f *FusedRing) Kind() Kind      { return KindFusedRing }
func (f *FusedRing) Leading() string { return f.LeadingBond }

// Sequence juxtaposes components that follow one another in the notation.
type Sequence struct {
	Components []Node
}

func (s *Sequence) Kind() Kind      { return KindSequence }
func (s *Sequence) Leading() string { return "" }

// Layout records how a parsed fused system was written so the serializer
// can emit it in its original interleaving. It only exists on trees that
// came from the parser.
type Layout struct {
	// Atoms lists every atom of the system in scan order: member ring
	// atoms plus folded bridge and continuation atoms.
	Atoms []LayoutAtom
	// RingPositions[i] holds the scan indexes of Rings[i], in ring order.
	RingPositions [][]int
	// Sequential rings were folded in because they continue a branch of
	// the system without sharing atoms with it.
	Sequential          []*Ring
	SequentialPositions [][]int
	// Extra holds attachments of folded atoms that belong to no ring.
	Extra map[int][]Node
}

// LayoutAtom is one atom of a fused system as it appeared in the input.
type LayoutAtom struct {
	Index    int        `json:"index"`
	Depth    int        `json:"depth"`
	Parent   int        `json:"parent"`    // -1 at depth 0
	BranchID int        `json:"branch_id"` // -1 at depth 0
	Symbol   string     `json:"symbol"`
	Bond     string     `json:"bond,omitempty"`
	Marks    []RingMark `json:"marks,omitempty"`
}

// RingMark is a ring opening or closure written after an atom. Ring indexes
// Rings, then Sequential (len(Rings)+k).
type RingMark struct {
	Ring    int    `json:"ring"`
	Number  int    `json:"number"`
	Closing bool   `json:"closing,omitempty"`
	Bond    string `json:"bond,omitempty"`
}

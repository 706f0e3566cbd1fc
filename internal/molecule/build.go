package molecule

import "fmt"

// NewChain builds a chain of atoms joined by default bonds.
func NewChain(atoms ...string) *Chain {
	c := &Chain{Atoms: append([]string(nil), atoms...)}
	if len(atoms) > 1 {
		c.Bonds = make([]string, len(atoms)-1)
	}
	return c
}

// NewRing builds a ring of size atoms of one element with default bonds.
func NewRing(base string, size int) *Ring {
	return &Ring{
		BaseSymbol: base,
		Size:       size,
		Bonds:      make([]string, size),
	}
}

// NewSequence joins nodes, flattening nested sequences.
func NewSequence(nodes ...Node) *Sequence {
	s := &Sequence{}
	for _, n := range nodes {
		if inner, ok := n.(*Sequence); ok {
			s.Components = append(s.Components, inner.Components...)
			continue
		}
		s.Components = append(s.Components, n)
	}
	return s
}

// Concat returns the juxtaposition of nodes: an empty Chain for none, the
// node itself for one, a Sequence otherwise.
func Concat(nodes ...Node) Node {
	seq := NewSequence(nodes...)
	switch len(seq.Components) {
	case 0:
		return &Chain{}
	case 1:
		return seq.Components[0]
	}
	return seq
}

// WithLeadingBond returns a copy of n joined to its predecessor by bond.
func WithLeadingBond(n Node, bond string) (Node, error) {
	switch v := n.(type) {
	case *Chain:
		c := cloneChain(v)
		c.LeadingBond = bond
		return c, nil
	case *Ring:
		r := cloneRing(v)
		r.LeadingBond = bond
		return r, nil
	case *FusedRing:
		f := *v
		f.LeadingBond = bond
		return &f, nil
	case *Sequence:
		if len(v.Components) == 0 {
			return nil, fmt.Errorf("leading bond on empty sequence")
		}
		first, err := WithLeadingBond(v.Components[0], bond)
		if err != nil {
			return nil, err
		}
		comps := append([]Node{first}, v.Components[1:]...)
		return &Sequence{Components: comps}, nil
	}
	return nil, fmt.Errorf("unsupported node %T", n)
}

// Attach returns a copy of n with child appended to the branches at the
// 1-indexed position pos. Attaching to a FusedRing attaches to its base
// ring.
func Attach(n Node, pos int, child Node) (Node, error) {
	if child == nil {
		return nil, fmt.Errorf("attach: nil child")
	}
	switch v := n.(type) {
	case *Chain:
		if pos < 1 || pos > len(v.Atoms) {
			return nil, fmt.Errorf("attach: position %d outside chain of %d", pos, len(v.Atoms))
		}
		c := cloneChain(v)
		c.Attachments = appendAttachment(c.Attachments, pos, child)
		return c, nil
	case *Ring:
		if pos < 1 || pos > v.Size {
			return nil, fmt.Errorf("attach: position %d outside ring of %d", pos, v.Size)
		}
		r := cloneRing(v)
		r.Attachments = appendAttachment(r.Attachments, pos, child)
		return r, nil
	case *FusedRing:
		if len(v.Rings) == 0 {
			return nil, fmt.Errorf("attach: fused ring has no rings")
		}
		base, err := Attach(v.Rings[0], pos, child)
		if err != nil {
			return nil, err
		}
		f := &FusedRing{Layout: v.Layout, LeadingBond: v.LeadingBond}
		f.Rings = append([]*Ring{base.(*Ring)}, v.Rings[1:]...)
		return f, nil
	}
	return nil, fmt.Errorf("attach: unsupported node %T", n)
}

// Substitute returns a copy of r with the atom at pos replaced by sym.
func Substitute(r *Ring, pos int, sym string) (*Ring, error) {
	if pos < 1 || pos > r.Size {
		return nil, fmt.Errorf("substitute: position %d outside ring of %d", pos, r.Size)
	}
	out := cloneRing(r)
	out.Substitutions = make(map[int]string, len(r.Substitutions)+1)
	for k, v := range r.Substitutions {
		out.Substitutions[k] = v
	}
	if sym == r.BaseSymbol {
		delete(out.Substitutions, pos)
	} else {
		out.Substitutions[pos] = sym
	}
	return out, nil
}

// Fuse adds other to base, sharing an edge that starts offset atoms into
// the base ring. base may be a Ring or an existing FusedRing.
func Fuse(base Node, other *Ring, offset int) (*FusedRing, error) {
	if other == nil {
		return nil, fmt.Errorf("fuse: nil ring")
	}
	var rings []*Ring
	leading := ""
	switch v := base.(type) {
	case *Ring:
		rings = []*Ring{cloneRing(v)}
		leading = v.LeadingBond
	case *FusedRing:
		rings = append(rings, v.Rings...)
		leading = v.LeadingBond
	default:
		return nil, fmt.Errorf("fuse: unsupported base %T", base)
	}
	if offset < 0 || offset >= rings[0].Size {
		return nil, fmt.Errorf("fuse: offset %d outside base ring of %d", offset, rings[0].Size)
	}
	added := cloneRing(other)
	added.FusionOffset = offset
	added.LeadingBond = ""
	return &FusedRing{Rings: append(rings, added), LeadingBond: leading}, nil
}

func appendAttachment(a Attachments, pos int, child Node) Attachments {
	out := make(Attachments, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	list := make([]Node, 0, len(a[pos])+1)
	list = append(list, a[pos]...)
	out[pos] = append(list, child)
	return out
}

func cloneChain(c *Chain) *Chain {
	out := *c
	return &out
}

func cloneRing(r *Ring) *Ring {
	out := *r
	out.Bonds = append([]string(nil), r.Bonds...)
	return &out
}

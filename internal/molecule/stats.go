package molecule

// Stats summarizes a tree: atom and ring counts plus how often each symbol
// occurs.
type Stats struct {
	Atoms       int            `json:"atoms"`
	Rings       int            `json:"rings"`
	Composition map[string]int `json:"composition"`
}

// Count walks n and returns its Stats. Nil nodes count as empty.
func Count(n Node) Stats {
	s := Stats{Composition: make(map[string]int)}
	s.add(n)
	return s
}

func (s *Stats) atom(sym string) {
	s.Atoms++
	s.Composition[sym]++
}

func (s *Stats) attachments(a Attachments) {
	for _, list := range a {
		for _, child := range list {
			s.add(child)
		}
	}
}

func (s *Stats) add(n Node) {
	switch v := n.(type) {
	case *Chain:
		if v == nil {
			return
		}
		for _, a := range v.Atoms {
			s.atom(a)
		}
		s.attachments(v.Attachments)
	case *Ring:
		if v == nil {
			return
		}
		s.Rings++
		for p := 1; p <= v.Size; p++ {
			s.atom(v.Symbol(p))
		}
		s.attachments(v.Attachments)
	case *FusedRing:
		if v == nil || len(v.Rings) == 0 {
			return
		}
		s.Rings += len(v.Rings)
		if v.Layout != nil {
			for _, la := range v.Layout.Atoms {
				s.atom(la.Symbol)
			}
			s.Rings += len(v.Layout.Sequential)
			for _, r := range v.Layout.Sequential {
				s.attachments(r.Attachments)
			}
			s.attachments(Attachments(v.Layout.Extra))
		} else {
			base := v.Rings[0]
			for p := 1; p <= base.Size; p++ {
				s.atom(base.Symbol(p))
			}
			// Each other ring shares an edge with the system.
			for _, r := range v.Rings[1:] {
				for p := 2; p < r.Size; p++ {
					s.atom(r.Symbol(p))
				}
			}
		}
		for _, r := range v.Rings {
			s.attachments(r.Attachments)
		}
	case *Sequence:
		if v == nil {
			return
		}
		for _, c := range v.Components {
			s.add(c)
		}
	}
}

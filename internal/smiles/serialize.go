package smiles

import (
	"fmt"
	"strings"

	"github.com/dgallion1/molgest/internal/molecule"
)

// maxRingNumber is the highest number the notation can write (%99).
const maxRingNumber = 99

// maxOutputBytes bounds the notation Serialize will build.
const maxOutputBytes = 1 << 20

// Serialize writes a tree back to line notation.
func Serialize(n molecule.Node) (string, error) {
	w := &writer{}
	if err := w.node(n); err != nil {
		return "", err
	}
	return w.sb.String(), nil
}

// writer accumulates output and hands out ring numbers so nested and
// adjacent rings never reuse a number that is still open.
type writer struct {
	sb    strings.Builder
	inUse [maxRingNumber + 1]bool
}

func (w *writer) alloc(preferred int) (int, error) {
	if preferred > 0 && preferred <= maxRingNumber && !w.inUse[preferred] {
		w.inUse[preferred] = true
		return preferred, nil
	}
	for n := 1; n <= maxRingNumber; n++ {
		if !w.inUse[n] {
			w.inUse[n] = true
			return n, nil
		}
	}
	return 0, structuralf("more than %d rings open at once", maxRingNumber)
}

func (w *writer) release(n int) { w.inUse[n] = false }

func (w *writer) room() error {
	if w.sb.Len() > maxOutputBytes {
		return structuralf("notation exceeds %d bytes", maxOutputBytes)
	}
	return nil
}

func (w *writer) ringNumber(n int) {
	if n < 10 {
		w.sb.WriteByte(byte('0' + n))
		return
	}
	fmt.Fprintf(&w.sb, "%%%02d", n)
}

func (w *writer) node(n molecule.Node) error {
	switch v := n.(type) {
	case *molecule.Chain:
		if v != nil {
			return w.chain(v)
		}
	case *molecule.Ring:
		if v != nil {
			return w.ring(v)
		}
	case *molecule.FusedRing:
		if v != nil {
			return w.fused(v)
		}
	case *molecule.Sequence:
		if v != nil {
			return w.sequence(v)
		}
	}
	return structuralf("unknown node type %T", n)
}

func (w *writer) attachments(list []molecule.Node) error {
	for _, child := range list {
		if child == nil {
			return structuralf("nil attachment")
		}
		w.sb.WriteByte('(')
		w.sb.WriteString(child.Leading())
		if err := w.node(child); err != nil {
			return err
		}
		w.sb.WriteByte(')')
	}
	return nil
}

func (w *writer) chain(c *molecule.Chain) error {
	lead := c.HasLeadingBond()
	if len(c.Atoms) > 0 && !lead && len(c.Bonds) != len(c.Atoms)-1 {
		return structuralf("chain has %d bonds for %d atoms", len(c.Bonds), len(c.Atoms))
	}
	if err := checkKeys("chain attachment", c.Attachments, len(c.Atoms)); err != nil {
		return err
	}
	for i, atom := range c.Atoms {
		if err := w.room(); err != nil {
			return err
		}
		switch {
		case lead:
			w.sb.WriteString(c.Bonds[i])
		case i > 0:
			w.sb.WriteString(c.Bonds[i-1])
		}
		w.sb.WriteString(atom)
		if err := w.attachments(c.Attachments[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func checkRing(r *molecule.Ring) error {
	if r == nil {
		return structuralf("nil ring")
	}
	if r.Size < 2 || r.Size > molecule.MaxRingSize {
		return structuralf("ring of size %d", r.Size)
	}
	if len(r.Bonds) != 0 && len(r.Bonds) != r.Size {
		return structuralf("ring of size %d has %d bonds", r.Size, len(r.Bonds))
	}
	if err := checkKeys("ring attachment", r.Attachments, r.Size); err != nil {
		return err
	}
	for pos := range r.Substitutions {
		if pos < 1 || pos > r.Size {
			return structuralf("ring substitution at position %d outside 1..%d", pos, r.Size)
		}
	}
	return nil
}

// checkKeys rejects non-empty attachment lists at positions the writer never
// visits.
func checkKeys(what string, att molecule.Attachments, size int) error {
	for pos, list := range att {
		if len(list) > 0 && (pos < 1 || pos > size) {
			return structuralf("%s at position %d outside 1..%d", what, pos, size)
		}
	}
	return nil
}

func (w *writer) ring(r *molecule.Ring) error {
	if err := checkRing(r); err != nil {
		return err
	}
	num, err := w.alloc(r.RingNumber)
	if err != nil {
		return err
	}
	for p := 1; p <= r.Size; p++ {
		if err := w.room(); err != nil {
			return err
		}
		if p > 1 {
			w.sb.WriteString(r.Bond(p))
		}
		w.sb.WriteString(r.Symbol(p))
		if p == 1 {
			w.ringNumber(num)
		}
		if p == r.Size {
			w.sb.WriteString(r.Bond(1))
			w.ringNumber(num)
			w.release(num)
		}
		if err := w.attachments(r.Attachments[p]); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) sequence(s *molecule.Sequence) error {
	for _, c := range s.Components {
		if c == nil {
			return structuralf("nil sequence component")
		}
		w.sb.WriteString(c.Leading())
		if err := w.node(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) fused(f *molecule.FusedRing) error {
	if len(f.Rings) < 2 {
		return structuralf("fused ring with %d member rings", len(f.Rings))
	}
	for _, r := range f.Rings {
		if err := checkRing(r); err != nil {
			return err
		}
	}
	if f.Layout != nil {
		for _, r := range f.Layout.Sequential {
			if err := checkRing(r); err != nil {
				return err
			}
		}
		return w.layout(f)
	}
	return w.splice(f)
}

type ringSlot struct {
	ring *molecule.Ring
	pos  int
}

// layout writes a parsed fused system in its original interleaving.
func (w *writer) layout(f *molecule.FusedRing) error {
	l := f.Layout
	if len(l.Atoms) == 0 {
		return structuralf("fused ring layout has no atoms")
	}

	place := make(map[int]int, len(l.Atoms)) // atom index -> place in l.Atoms
	for i := range l.Atoms {
		place[l.Atoms[i].Index] = i
	}
	owner := make(map[int]ringSlot)
	claim := func(rings []*molecule.Ring, positions [][]int) {
		for k, pos := range positions {
			if k >= len(rings) {
				return
			}
			for i, a := range pos {
				if _, ok := owner[a]; !ok {
					owner[a] = ringSlot{ring: rings[k], pos: i + 1}
				}
			}
		}
	}
	claim(f.Rings, l.RingPositions)
	claim(l.Sequential, l.SequentialPositions)

	// Every attachment must sit on an atom the walk below writes for it.
	emitted := func(rings []*molecule.Ring, positions [][]int) error {
		for k, r := range rings {
			for pos, list := range r.Attachments {
				if len(list) == 0 {
					continue
				}
				if k >= len(positions) || pos > len(positions[k]) {
					return structuralf("ring %d attachment at position %d has no layout atom", k, pos)
				}
				a := positions[k][pos-1]
				if _, ok := place[a]; !ok {
					return structuralf("ring %d attachment on atom %d outside the layout", k, a)
				}
				if slot := owner[a]; slot.ring != r || slot.pos != pos {
					return structuralf("ring %d attachment on atom %d owned by another ring", k, a)
				}
			}
		}
		return nil
	}
	if err := emitted(f.Rings, l.RingPositions); err != nil {
		return err
	}
	if err := emitted(l.Sequential, l.SequentialPositions); err != nil {
		return err
	}
	for a, list := range l.Extra {
		if len(list) == 0 {
			continue
		}
		if _, ok := place[a]; !ok {
			return structuralf("extra attachment on atom %d outside the layout", a)
		}
		if _, ok := owner[a]; ok {
			return structuralf("extra attachment on ring atom %d", a)
		}
	}

	// A branch path lists the branch IDs from the home scope down to an
	// atom. Parents must come before their children.
	home := l.Atoms[0].Depth
	paths := make([][]int, len(l.Atoms))

	numbers := make(map[int]int) // ring slot -> number written
	var open []int
	for i := range l.Atoms {
		if err := w.room(); err != nil {
			return err
		}
		la := &l.Atoms[i]
		var p []int
		if la.Depth > home {
			if j, ok := place[la.Parent]; ok {
				if j >= i {
					return structuralf("layout parent cycle at atom %d", la.Index)
				}
				p = append(p, paths[j]...)
			}
			p = append(p, la.BranchID)
		}
		paths[i] = p
		k := 0
		for k < len(open) && k < len(p) && open[k] == p[k] {
			k++
		}
		for j := len(open); j > k; j-- {
			w.sb.WriteByte(')')
		}
		for j := k; j < len(p); j++ {
			w.sb.WriteByte('(')
		}
		open = p

		if i > 0 {
			w.sb.WriteString(la.Bond)
		}
		w.sb.WriteString(la.Symbol)
		for _, m := range la.Marks {
			if m.Closing {
				num, ok := numbers[m.Ring]
				if !ok {
					return structuralf("ring %d closes before it opens", m.Number)
				}
				w.sb.WriteString(m.Bond)
				w.ringNumber(num)
				w.release(num)
				delete(numbers, m.Ring)
				continue
			}
			num, err := w.alloc(m.Number)
			if err != nil {
				return err
			}
			numbers[m.Ring] = num
			w.ringNumber(num)
		}

		var att []molecule.Node
		if slot, ok := owner[la.Index]; ok {
			att = slot.ring.Attachments[slot.pos]
		} else {
			att = l.Extra[la.Index]
		}
		if err := w.attachments(att); err != nil {
			return err
		}
	}
	for range open {
		w.sb.WriteByte(')')
	}
	if len(numbers) > 0 {
		return structuralf("fused ring layout leaves %d ring(s) open", len(numbers))
	}
	return nil
}

// splice writes a fused system built without a layout: the base ring, with
// each other ring's unshared atoms inserted after base position offset+1
// and closed on the next base atom.
func (w *writer) splice(f *molecule.FusedRing) error {
	base := f.Rings[0]
	opens := make(map[int][]int) // base position -> member indexes
	for k := 1; k < len(f.Rings); k++ {
		at := f.Rings[k].FusionOffset + 1
		if at < 1 {
			at = 1
		}
		if at >= base.Size {
			at = base.Size - 1
		}
		opens[at] = append(opens[at], k)
	}

	baseNum, err := w.alloc(base.RingNumber)
	if err != nil {
		return err
	}
	closes := make(map[int][]int)
	nums := make(map[int]int)
	for p := 1; p <= base.Size; p++ {
		if err := w.room(); err != nil {
			return err
		}
		if p > 1 {
			if ks := closes[p]; len(ks) > 0 {
				w.sb.WriteString(f.Rings[ks[len(ks)-1]].Bond(f.Rings[ks[len(ks)-1]].Size))
			} else {
				w.sb.WriteString(base.Bond(p))
			}
		}
		w.sb.WriteString(base.Symbol(p))
		if p == 1 {
			w.ringNumber(baseNum)
		}
		for _, k := range closes[p] {
			w.sb.WriteString(base.Bond(p))
			w.ringNumber(nums[k])
			w.release(nums[k])
		}
		for _, k := range opens[p] {
			num, err := w.alloc(f.Rings[k].RingNumber)
			if err != nil {
				return err
			}
			nums[k] = num
			w.ringNumber(num)
			closes[p+1] = append(closes[p+1], k)
		}
		if p == base.Size {
			w.sb.WriteString(base.Bond(1))
			w.ringNumber(baseNum)
			w.release(baseNum)
		}
		if err := w.attachments(base.Attachments[p]); err != nil {
			return err
		}
		// Shared atoms also carry the member rings' end positions.
		for _, k := range closes[p] {
			if err := w.attachments(f.Rings[k].Attachments[f.Rings[k].Size]); err != nil {
				return err
			}
		}
		for _, k := range opens[p] {
			if err := w.attachments(f.Rings[k].Attachments[1]); err != nil {
				return err
			}
		}
		for _, k := range opens[p] {
			r := f.Rings[k]
			for q := 2; q < r.Size; q++ {
				if err := w.room(); err != nil {
					return err
				}
				w.sb.WriteString(r.Bond(q))
				w.sb.WriteString(r.Symbol(q))
				if err := w.attachments(r.Attachments[q]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

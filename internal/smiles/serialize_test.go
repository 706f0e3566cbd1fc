package smiles

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/molgest/internal/molecule"
)

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"C",
		"CCO",
		"CC(=O)O",
		"CC#N",
		"C(F)(Cl)Br",
		"c1ccccc1",
		"n1ccccc1",
		"c1ccccc1O",
		"Cc1ccccc1",
		"OC(=O)c1ccccc1",
		"C=C1CCCCC1",
		"C1=CC=CC=C1",
		"C1CCCCC=1",
		"[NH4+]",
		"[13CH3]C",
		"C%10CCCCC%10",
		"c1ccc(c2ccccc2)cc1",
		"C1CC2CCCCC2CC1",
		"c1ccc2cc3ccccc3cc2c1",
		"c1ccc2c(c1)cccc2",
		"C1CCC2(CC1)CCCC2",
		"CC1(C)CC2CC(C1)c1ccccc1C2(O)C",
		"CC12CCC3C(C1CCC2O)CCC4=CC(=O)CCC34C",
		"CN1CC[C@]23c4c5ccc(O)c4O[C@H]2[C@@H](O)C=C[C@H]3[C@H]1C5",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			n, err := Parse(in)
			require.NoError(t, err)
			out, err := Serialize(n)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestWeakRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"C1CC(CC1)CC", "C1CC(CC)CC1"},
		{"C(C1CC)CC1", "C1CCC1(CC)"},
		{"C=1CCCCC1", "C1CCCCC=1"},
		{"c1ccc(cc1)C(=O)c1ccccc1", "c1ccc(C(=O)c2ccccc2)cc1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			first, err := Parse(tt.in)
			require.NoError(t, err)
			out, err := Serialize(first)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)

			second, err := Parse(out)
			require.NoError(t, err)
			assert.Equal(t, molecule.Count(first), molecule.Count(second))
		})
	}
}

func TestRoundTrip_ThroughJSON(t *testing.T) {
	for _, in := range []string{"CC(=O)O", "c1ccc(c2ccccc2)cc1", "C1CCC2(CC1)CCCC2", "CC1(C)CC2CC(C1)c1ccccc1C2(O)C"} {
		t.Run(in, func(t *testing.T) {
			n, err := Parse(in)
			require.NoError(t, err)
			data, err := json.Marshal(n)
			require.NoError(t, err)

			decoded, err := molecule.DecodeNode(data)
			require.NoError(t, err)
			out, err := Serialize(decoded)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestSerialize_Programmatic(t *testing.T) {
	pyridine, err := molecule.Substitute(molecule.NewRing("c", 6), 1, "n")
	require.NoError(t, err)

	phenol, err := molecule.Attach(molecule.NewRing("c", 6), 1, molecule.NewChain("O"))
	require.NoError(t, err)

	decalin, err := molecule.Fuse(molecule.NewRing("C", 6), molecule.NewRing("C", 6), 2)
	require.NoError(t, err)

	hydroxy, err := molecule.Attach(molecule.NewRing("C", 6), 1, molecule.NewChain("O"))
	require.NoError(t, err)
	hydroxy, err = molecule.Attach(hydroxy, 6, molecule.NewChain("N"))
	require.NoError(t, err)
	decalinol, err := molecule.Fuse(molecule.NewRing("C", 6), hydroxy.(*molecule.Ring), 2)
	require.NoError(t, err)

	methylene, err := molecule.WithLeadingBond(molecule.NewRing("C", 6), "=")
	require.NoError(t, err)

	numbered := molecule.NewRing("C", 6)
	numbered.RingNumber = 12

	tests := []struct {
		name string
		node molecule.Node
		want string
	}{
		{"chain", molecule.NewChain("C", "C", "O"), "CCO"},
		{"ring", molecule.NewRing("c", 6), "c1ccccc1"},
		{"substituted", pyridine, "n1ccccc1"},
		{"attached", phenol, "c1(O)ccccc1"},
		{"fused without layout", decalin, "C1CC2CCCCC2CC1"},
		{"fused shared atom attachments", decalinol, "C1CC2(O)CCCCC2(N)CC1"},
		{"leading bond", molecule.Concat(molecule.NewChain("C"), methylene), "C=C1CCCCC1"},
		{"ring number reuse", molecule.Concat(molecule.NewRing("C", 6), molecule.NewRing("C", 6)), "C1CCCCC1C1CCCCC1"},
		{"two digit ring number", numbered, "C%12CCCCC%12"},
		{"empty chain", &molecule.Chain{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Serialize(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSerialize_NestedRingsGetDistinctNumbers(t *testing.T) {
	inner := molecule.NewRing("c", 6)
	inner.RingNumber = 1
	outer := molecule.NewRing("c", 6)
	outer.RingNumber = 1
	n, err := molecule.Attach(outer, 4, inner)
	require.NoError(t, err)

	out, err := Serialize(n)
	require.NoError(t, err)
	assert.Equal(t, "c1ccc(c2ccccc2)cc1", out)
}

func TestSerialize_StructuralErrors(t *testing.T) {
	var nilChain *molecule.Chain
	tests := []struct {
		name string
		node molecule.Node
	}{
		{"nil", nil},
		{"typed nil", nilChain},
		{"single member fused ring", &molecule.FusedRing{Rings: []*molecule.Ring{molecule.NewRing("C", 6)}}},
		{"ring too small", &molecule.Ring{BaseSymbol: "C", Size: 1}},
		{"ring bond count", &molecule.Ring{BaseSymbol: "C", Size: 6, Bonds: []string{""}}},
		{"chain bond count", &molecule.Chain{Atoms: []string{"C", "C", "C"}, Bonds: []string{}}},
		{"nil attachment", &molecule.Chain{Atoms: []string{"C"}, Attachments: molecule.Attachments{1: {nil}}}},
		{"chain attachment past last atom", &molecule.Chain{Atoms: []string{"C"}, Attachments: molecule.Attachments{2: {molecule.NewChain("O")}}}},
		{"empty chain attachment", &molecule.Chain{Attachments: molecule.Attachments{1: {molecule.NewChain("O")}}}},
		{"ring attachment past last position", &molecule.Ring{BaseSymbol: "C", Size: 6, Attachments: molecule.Attachments{7: {molecule.NewChain("O")}}}},
		{"ring attachment at position zero", &molecule.Ring{BaseSymbol: "C", Size: 6, Attachments: molecule.Attachments{0: {molecule.NewChain("O")}}}},
		{"ring substitution outside ring", &molecule.Ring{BaseSymbol: "C", Size: 6, Substitutions: map[int]string{9: "N"}}},
		{"oversized ring", &molecule.Ring{BaseSymbol: "C", Size: molecule.MaxRingSize + 1}},
		{"layout parent cycle", &molecule.FusedRing{
			Rings: []*molecule.Ring{molecule.NewRing("C", 3), molecule.NewRing("C", 3)},
			Layout: &molecule.Layout{Atoms: []molecule.LayoutAtom{
				{Index: 0, Parent: -1, BranchID: -1, Symbol: "C"},
				{Index: 1, Depth: 1, Parent: 2, BranchID: 1, Symbol: "C"},
				{Index: 2, Depth: 1, Parent: 1, BranchID: 2, Symbol: "C"},
			}},
		}},
		{"layout attachment on shared atom", &molecule.FusedRing{
			Rings: []*molecule.Ring{
				molecule.NewRing("C", 3),
				{BaseSymbol: "C", Size: 3, Attachments: molecule.Attachments{1: {molecule.NewChain("O")}}},
			},
			Layout: &molecule.Layout{
				Atoms: []molecule.LayoutAtom{
					{Index: 0, Parent: -1, BranchID: -1, Symbol: "C"},
					{Index: 1, Parent: -1, BranchID: -1, Symbol: "C"},
					{Index: 2, Parent: -1, BranchID: -1, Symbol: "C"},
					{Index: 3, Parent: -1, BranchID: -1, Symbol: "C"},
				},
				RingPositions: [][]int{{0, 1, 2}, {1, 2, 3}},
			},
		}},
		{"extra attachment outside layout", &molecule.FusedRing{
			Rings: []*molecule.Ring{molecule.NewRing("C", 3), molecule.NewRing("C", 3)},
			Layout: &molecule.Layout{
				Atoms: []molecule.LayoutAtom{{Index: 0, Parent: -1, BranchID: -1, Symbol: "C"}},
				Extra: map[int][]molecule.Node{5: {molecule.NewChain("O")}},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Serialize(tt.node)
			var se *StructuralError
			require.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestSerialize_OutputBound(t *testing.T) {
	big := molecule.NewRing("C", molecule.MaxRingSize)
	out, err := Serialize(big)
	require.NoError(t, err)
	assert.Len(t, out, molecule.MaxRingSize+2)

	comps := make([]molecule.Node, 20)
	for i := range comps {
		comps[i] = big
	}
	_, err = Serialize(molecule.NewSequence(comps...))
	var se *StructuralError
	require.True(t, errors.As(err, &se), "got %v", err)
}

func TestSerialize_LayoutRingClosedBeforeOpen(t *testing.T) {
	f := &molecule.FusedRing{
		Rings: []*molecule.Ring{molecule.NewRing("C", 3), molecule.NewRing("C", 3)},
		Layout: &molecule.Layout{
			Atoms: []molecule.LayoutAtom{
				{Index: 0, Parent: -1, BranchID: -1, Symbol: "C", Marks: []molecule.RingMark{{Ring: 0, Number: 1, Closing: true}}},
			},
		},
	}
	_, err := Serialize(f)
	var se *StructuralError
	require.True(t, errors.As(err, &se))
}

package molecule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChain_Bonds(t *testing.T) {
	assert.Empty(t, NewChain("C").Bonds)
	assert.Equal(t, []string{"", ""}, NewChain("C", "C", "O").Bonds)
}

func TestConcat(t *testing.T) {
	empty, ok := Concat().(*Chain)
	require.True(t, ok)
	assert.Empty(t, empty.Atoms)

	one := NewChain("C")
	assert.Same(t, one, Concat(one))

	seq, ok := Concat(NewChain("C"), NewSequence(NewRing("c", 6), NewChain("O"))).(*Sequence)
	require.True(t, ok)
	assert.Len(t, seq.Components, 3)
}

func TestAttach_DoesNotModifyInput(t *testing.T) {
	r := NewRing("c", 6)
	out, err := Attach(r, 2, NewChain("O"))
	require.NoError(t, err)

	assert.Empty(t, r.Attachments)
	assert.Len(t, out.(*Ring).Attachments[2], 1)

	again, err := Attach(out, 2, NewChain("N"))
	require.NoError(t, err)
	assert.Len(t, out.(*Ring).Attachments[2], 1)
	assert.Len(t, again.(*Ring).Attachments[2], 2)
}

func TestAttach_OutOfRange(t *testing.T) {
	_, err := Attach(NewRing("c", 6), 7, NewChain("O"))
	assert.Error(t, err)
	_, err = Attach(NewChain("C"), 0, NewChain("O"))
	assert.Error(t, err)
	_, err = Attach(NewChain("C"), 1, nil)
	assert.Error(t, err)
}

func TestAttach_FusedRingUsesBase(t *testing.T) {
	f, err := Fuse(NewRing("C", 6), NewRing("C", 6), 2)
	require.NoError(t, err)

	out, err := Attach(f, 1, NewChain("O"))
	require.NoError(t, err)
	got := out.(*FusedRing)
	assert.Len(t, got.Rings[0].Attachments[1], 1)
	assert.Empty(t, f.Rings[0].Attachments)
}

func TestSubstitute(t *testing.T) {
	r, err := Substitute(NewRing("c", 6), 1, "n")
	require.NoError(t, err)
	assert.Equal(t, "n", r.Symbol(1))
	assert.Equal(t, "c", r.Symbol(2))

	back, err := Substitute(r, 1, "c")
	require.NoError(t, err)
	assert.Empty(t, back.Substitutions)
	assert.Equal(t, "n", r.Symbol(1))

	_, err = Substitute(r, 0, "n")
	assert.Error(t, err)
}

func TestFuse(t *testing.T) {
	f, err := Fuse(NewRing("C", 6), NewRing("C", 5), 2)
	require.NoError(t, err)
	require.Len(t, f.Rings, 2)
	assert.Equal(t, 2, f.Rings[1].FusionOffset)
	assert.Nil(t, f.Layout)

	f3, err := Fuse(f, NewRing("C", 6), 4)
	require.NoError(t, err)
	assert.Len(t, f3.Rings, 3)

	_, err = Fuse(NewRing("C", 6), NewRing("C", 6), 6)
	assert.Error(t, err)
	_, err = Fuse(NewChain("C"), NewRing("C", 6), 0)
	assert.Error(t, err)
}

func TestWithLeadingBond(t *testing.T) {
	n, err := WithLeadingBond(NewSequence(NewRing("C", 6), NewChain("O")), "=")
	require.NoError(t, err)
	seq := n.(*Sequence)
	assert.Equal(t, "=", seq.Components[0].Leading())
	assert.Equal(t, "", seq.Leading())

	_, err = WithLeadingBond(&Sequence{}, "=")
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	phenol, err := Attach(NewRing("c", 6), 1, NewChain("O"))
	require.NoError(t, err)
	f, err := Fuse(NewRing("C", 6), NewRing("C", 6), 2)
	require.NoError(t, err)

	s := Count(NewSequence(phenol, f))
	assert.Equal(t, 17, s.Atoms)
	assert.Equal(t, 3, s.Rings)
	assert.Equal(t, map[string]int{"c": 6, "O": 1, "C": 10}, s.Composition)
}

func TestDecodeNode_RoundTrip(t *testing.T) {
	ring, err := Substitute(NewRing("c", 6), 1, "n")
	require.NoError(t, err)
	withBranch, err := Attach(ring, 3, &Chain{Atoms: []string{"O"}, Bonds: []string{"="}})
	require.NoError(t, err)
	fused, err := Fuse(NewRing("C", 6), NewRing("C", 6), 2)
	require.NoError(t, err)
	tree := NewSequence(NewChain("C", "C"), withBranch, fused)

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	decoded, err := DecodeNode(data)
	require.NoError(t, err)
	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))

	seq := decoded.(*Sequence)
	require.Len(t, seq.Components, 3)
	r := seq.Components[1].(*Ring)
	assert.Equal(t, "n", r.Symbol(1))
	assert.Equal(t, []string{"="}, r.Attachments[3][0].(*Chain).Bonds)
}

func TestDecodeNode_Errors(t *testing.T) {
	for _, in := range []string{
		`{"type":"helix"}`,
		`not json`,
		`{"type":"ring","attachments":{"x":[]}}`,
		`{"type":"fused_ring","rings":[{"type":"chain"}]}`,
	} {
		_, err := DecodeNode([]byte(in))
		assert.Error(t, err, in)
	}
}

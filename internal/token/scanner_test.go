package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScan_Kinds(t *testing.T) {
	toks, err := Scan("CC(=O)c1ccccc1")
	require.NoError(t, err)
	assert.Equal(t, []Kind{
		Atom, Atom, BranchOpen, Bond, Atom, BranchClose,
		Atom, RingMarker, Atom, Atom, Atom, Atom, Atom, RingMarker,
	}, kinds(toks))
	assert.Equal(t, 1, toks[7].Ring)
	assert.Equal(t, 7, toks[7].Pos)
}

func TestScan_TwoLetterHalogens(t *testing.T) {
	toks, err := Scan("ClCBr")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "Cl", toks[0].Text)
	assert.Equal(t, "C", toks[1].Text)
	assert.Equal(t, "Br", toks[2].Text)
}

func TestScan_BracketAtom(t *testing.T) {
	toks, err := Scan("[NH4+]")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Atom, toks[0].Kind)
	assert.Equal(t, "[NH4+]", toks[0].Text)
}

func TestScan_PercentRing(t *testing.T) {
	toks, err := Scan("C%12CC%12")
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, RingMarker, toks[1].Kind)
	assert.Equal(t, 12, toks[1].Ring)
	assert.Equal(t, "%12", toks[1].Text)
}

func TestScan_TrimsSurroundingWhitespace(t *testing.T) {
	toks, err := Scan("  CO\n")
	require.NoError(t, err)
	assert.Len(t, toks, 2)
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"CxC", 1},
		{"C[NH4", 1},
		{"C%1", 1},
		{"C%a1", 1},
		{"C C", 1},
		{"C[]", 1},
	}
	for _, tt := range tests {
		_, err := Scan(tt.input)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Errorf("input=%q: expected LexError, got %v", tt.input, err)
			continue
		}
		if lexErr.Pos != tt.pos {
			t.Errorf("input=%q: expected pos %d, got %d", tt.input, tt.pos, lexErr.Pos)
		}
	}
}

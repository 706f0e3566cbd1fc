// Package smiles converts between line notation and structure trees.
//
// Parsing runs in two passes. The first walks the token stream and records
// every atom with its branch bookkeeping and every closed ring with the
// atoms on its cycle. The second groups rings that share atoms and builds
// the tree of chains, rings, fused systems and sequences.
package smiles

import (
	"github.com/dgallion1/molgest/internal/molecule"
	"github.com/dgallion1/molgest/internal/token"
)

// Parse reads text into a structure tree. Errors are *token.LexError,
// *RingBalanceError or *SyntaxError.
func Parse(text string) (molecule.Node, error) {
	toks, err := token.Scan(text)
	if err != nil {
		return nil, err
	}
	list, err := buildAtomList(toks)
	if err != nil {
		return nil, err
	}
	return newTreeBuilder(list).build(), nil
}

// Atoms runs only the first pass and returns the atom and ring records.
func Atoms(text string) ([]AtomRecord, []RingBoundary, error) {
	toks, err := token.Scan(text)
	if err != nil {
		return nil, nil, err
	}
	list, err := buildAtomList(toks)
	if err != nil {
		return nil, nil, err
	}
	return list.atoms, list.rings, nil
}

// Canonical parses text and serializes the result.
func Canonical(text string) (string, molecule.Node, error) {
	n, err := Parse(text)
	if err != nil {
		return "", nil, err
	}
	out, err := Serialize(n)
	if err != nil {
		return "", nil, err
	}
	return out, n, nil
}

package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	Atom Kind = iota
	Bond
	RingMarker
	BranchOpen
	BranchClose
	Dot
)

func (k Kind) String() string {
	switch k {
	case Atom:
		return "atom"
	case Bond:
		return "bond"
	case RingMarker:
		return "ring"
	case BranchOpen:
		return "branch_open"
	case BranchClose:
		return "branch_close"
	case Dot:
		return "dot"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Token is one lexical unit of a line notation.
type Token struct {
	Kind Kind
	Text string // Source text; bracket atoms keep their brackets.
	Ring int    // Ring number for RingMarker tokens.
	Pos  int    // Byte offset in the source.
}

// LexError reports input the scanner cannot tokenize.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d: %s", e.Pos, e.Msg)
}

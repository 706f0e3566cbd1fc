package token

import (
	"fmt"
	"strings"
)

// Scan splits src into tokens. Surrounding whitespace is ignored; any
// whitespace inside the notation is an error.
func Scan(src string) ([]Token, error) {
	s := &scanner{input: strings.TrimSpace(src)}
	var out []Token
	for s.pos < len(s.input) {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.input) {
		return 0
	}
	return s.input[s.pos]
}

func (s *scanner) next() (Token, error) {
	start := s.pos
	ch := s.peek()

	switch ch {
	case '(':
		s.pos++
		return Token{Kind: BranchOpen, Text: "(", Pos: start}, nil
	case ')':
		s.pos++
		return Token{Kind: BranchClose, Text: ")", Pos: start}, nil
	case '.':
		s.pos++
		return Token{Kind: Dot, Text: ".", Pos: start}, nil
	case '-', '=', '#', '$', ':', '/', '\\':
		s.pos++
		return Token{Kind: Bond, Text: string(ch), Pos: start}, nil
	case '[':
		return s.bracketAtom()
	case '%':
		return s.percentRing()
	}

	if ch >= '0' && ch <= '9' {
		s.pos++
		return Token{Kind: RingMarker, Text: string(ch), Ring: int(ch - '0'), Pos: start}, nil
	}

	if sym := s.organicAtom(); sym != "" {
		return Token{Kind: Atom, Text: sym, Pos: start}, nil
	}

	return Token{}, &LexError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", ch)}
}

// organicAtom consumes an organic-subset or aromatic symbol, preferring
// the two-letter halogens.
func (s *scanner) organicAtom() string {
	rest := s.input[s.pos:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			s.pos += 2
			return two
		}
	}
	switch rest[0] {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I', 'b', 'c', 'n', 'o', 'p', 's', '*':
		s.pos++
		return rest[:1]
	}
	return ""
}

func (s *scanner) bracketAtom() (Token, error) {
	start := s.pos
	end := strings.IndexByte(s.input[start:], ']')
	if end < 0 {
		return Token{}, &LexError{Pos: start, Msg: "unclosed bracket atom"}
	}
	text := s.input[start : start+end+1]
	if len(text) == 2 {
		return Token{}, &LexError{Pos: start, Msg: "empty bracket atom"}
	}
	if strings.ContainsAny(text[1:len(text)-1], "[ \t\n") {
		return Token{}, &LexError{Pos: start, Msg: fmt.Sprintf("malformed bracket atom %q", text)}
	}
	s.pos = start + end + 1
	return Token{Kind: Atom, Text: text, Pos: start}, nil
}

func (s *scanner) percentRing() (Token, error) {
	start := s.pos
	if s.pos+2 >= len(s.input) || !isDigit(s.input[s.pos+1]) || !isDigit(s.input[s.pos+2]) {
		return Token{}, &LexError{Pos: start, Msg: "ring number after '%' must be two digits"}
	}
	n := int(s.input[s.pos+1]-'0')*10 + int(s.input[s.pos+2]-'0')
	s.pos += 3
	return Token{Kind: RingMarker, Text: s.input[start:s.pos], Ring: n, Pos: start}, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

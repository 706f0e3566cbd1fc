package smiles

import (
	"fmt"
	"strconv"
	"strings"
)

// RingBalanceError reports ring numbers still open at end of input.
type RingBalanceError struct {
	Unclosed []int
}

func (e *RingBalanceError) Error() string {
	nums := make([]string, len(e.Unclosed))
	for i, n := range e.Unclosed {
		nums[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("unclosed ring(s): %s", strings.Join(nums, ", "))
}

// SyntaxError reports tokens that are individually valid but cannot appear
// where they do.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// StructuralError reports a tree the serializer cannot render.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Msg
}

func structuralf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

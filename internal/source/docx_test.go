package source

import (
	"strings"
	"testing"
)

func TestDOCXReader_RejectsGarbage(t *testing.T) {
	p := &DOCXReader{}
	if _, err := p.Read(strings.NewReader("not a zip archive"), "broken.docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}

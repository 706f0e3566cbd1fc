package source

import (
	"strings"
	"testing"
)

func TestSplitPages(t *testing.T) {
	pages := splitPages("CCO\fc1ccccc1\nCCN\f")
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[1] != "c1ccccc1\nCCN" {
		t.Errorf("unexpected second page %q", pages[1])
	}
}

func TestPDFReader_RejectsGarbage(t *testing.T) {
	p := &PDFReader{}
	if _, err := p.Read(strings.NewReader("not a pdf"), "broken.pdf"); err == nil {
		t.Error("expected error for invalid pdf")
	}
}

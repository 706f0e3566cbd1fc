package source

import (
	"strings"
	"testing"
)

func TestMarkdownReader_CodeAndHeadings(t *testing.T) {
	input := "# Reagents\n\nEthanol is `CCO`.\n\n## Aromatics\n\n```\nc1ccccc1\nn1ccccc1\n```\n"
	p := &MarkdownReader{}
	doc, err := p.Read(strings.NewReader(input), "notes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Reagents" {
		t.Errorf("expected title %q, got %q", "Reagents", doc.Title)
	}
	want := []Entry{
		{Text: "CCO", Label: "Reagents", Line: 3},
		{Text: "c1ccccc1", Label: "Reagents / Aromatics", Line: 8},
		{Text: "n1ccccc1", Label: "Reagents / Aromatics", Line: 9},
	}
	if len(doc.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(doc.Entries), doc.Entries)
	}
	for i, w := range want {
		if doc.Entries[i] != w {
			t.Errorf("entry[%d]: expected %+v, got %+v", i, w, doc.Entries[i])
		}
	}
}

func TestMarkdownReader_SiblingHeadingsReplaceLabel(t *testing.T) {
	input := "## First\n\n`CCN`\n\n## Second\n\n`CCS`\n"
	p := &MarkdownReader{}
	doc, err := p.Read(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No h1, so the filename stays the title.
	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", doc.Entries)
	}
	if doc.Entries[0].Label != "First" || doc.Entries[1].Label != "Second" {
		t.Errorf("unexpected labels %q, %q", doc.Entries[0].Label, doc.Entries[1].Label)
	}
}

func TestMarkdownReader_IgnoresProse(t *testing.T) {
	p := &MarkdownReader{}
	doc, err := p.Read(strings.NewReader("Plain CCO in prose.\n"), "prose.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Entries) != 0 {
		t.Errorf("expected no entries outside code, got %v", doc.Entries)
	}
}

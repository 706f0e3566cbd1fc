package source

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader handles Markdown files using goldmark. Only code spans and
// code blocks are scanned; headings above them become the entry label.
type MarkdownReader struct {
	MinLength int
}

func (p *MarkdownReader) Read(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &Document{Title: titleFromFilename(filename)}

	type stackEntry struct {
		title string
		level int
	}
	var stack []stackEntry
	label := func() string {
		parts := make([]string, len(stack))
		for i, e := range stack {
			parts[i] = e.title
		}
		return strings.Join(parts, " / ")
	}
	titled := false

	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if node.Level == 1 && !titled {
				doc.Title = title
				titled = true
			}
			// Pop stack until we find a parent with lower level.
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, stackEntry{title: title, level: node.Level})
			return ast.WalkSkipChildren, nil

		case *ast.CodeSpan:
			code, start := inlineText(node, src)
			doc.addCandidates(code, p.MinLength, label(), 0, lineOf(src, start))
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				doc.addCandidates(string(seg.Value(src)), p.MinLength, label(), 0, lineOf(src, seg.Start))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// inlineText joins the text children of an inline node and returns the
// offset of the first one, or -1.
func inlineText(n ast.Node, src []byte) (string, int) {
	var buf bytes.Buffer
	start := -1
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		if start < 0 {
			start = t.Segment.Start
		}
		buf.Write(t.Segment.Value(src))
	}
	return buf.String(), start
}

// lineOf returns the 1-indexed line holding byte offset off, or 0.
func lineOf(src []byte, off int) int {
	if off < 0 || off > len(src) {
		return 0
	}
	return bytes.Count(src[:off], []byte{'\n'}) + 1
}

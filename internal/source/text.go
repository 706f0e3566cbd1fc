package source

import (
	"bufio"
	"io"
)

// TextReader handles plain text and .smi files. Every line is scanned for
// candidates; a .smi line is usually a notation followed by a name.
type TextReader struct {
	MinLength int
}

func (p *TextReader) Read(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Document{Title: titleFromFilename(filename)}
	line := 0
	for scanner.Scan() {
		line++
		doc.addCandidates(scanner.Text(), p.MinLength, "", 0, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

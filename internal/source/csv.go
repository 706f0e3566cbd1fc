package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// notationColumns are header names that hold one notation per row.
var notationColumns = map[string]bool{
	"smiles":    true,
	"notation":  true,
	"structure": true,
}

// CSVReader handles CSV files. A notation column supplies its cells
// verbatim, labelled by the first other column; without one every cell is
// scanned for candidates.
type CSVReader struct {
	MinLength int
}

func (p *CSVReader) Read(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	// First row is headers.
	headers := records[0]
	col, labelCol := -1, -1
	for i, h := range headers {
		if col < 0 && notationColumns[strings.ToLower(strings.TrimSpace(h))] {
			col = i
		}
	}
	for i := range headers {
		if i != col {
			labelCol = i
			break
		}
	}

	for i, row := range records[1:] {
		line := i + 2 // 1-indexed, skip header
		if col < 0 {
			for _, cell := range row {
				doc.addCandidates(cell, p.MinLength, "", 0, line)
			}
			continue
		}
		if col >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[col])
		if text == "" {
			continue
		}
		label := ""
		if labelCol >= 0 && labelCol < len(row) {
			label = strings.TrimSpace(row[labelCol])
		}
		doc.Entries = append(doc.Entries, Entry{Text: text, Label: label, Line: line})
	}

	return doc, nil
}

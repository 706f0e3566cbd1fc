package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the notation-bearing content of an uploaded file.
type Document struct {
	Title   string  // Document title (from metadata or filename)
	Entries []Entry // Candidate notations in reading order
}

// Entry is one candidate notation with where it was found.
type Entry struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"` // Heading, column or row context
	Page  int    `json:"page,omitempty"`  // Source page (0 if N/A)
	Line  int    `json:"line,omitempty"`  // Source line (0 if N/A)
}

// Reader pulls candidate notations out of raw document bytes.
type Reader interface {
	Read(r io.Reader, filename string) (*Document, error)
}

// Options tune how readers find candidates.
type Options struct {
	MinLength         int
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".smi":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string, opts Options) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".smi":
		return &TextReader{MinLength: opts.MinLength}, nil
	case ".md", ".markdown":
		return &MarkdownReader{MinLength: opts.MinLength}, nil
	case ".csv":
		return &CSVReader{MinLength: opts.MinLength}, nil
	case ".html", ".htm":
		return &HTMLReader{MinLength: opts.MinLength}, nil
	case ".pdf":
		return &PDFReader{MinLength: opts.MinLength, FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXReader{MinLength: opts.MinLength}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// addCandidates appends an entry for every candidate in text.
func (d *Document) addCandidates(text string, minLen int, label string, page, line int) {
	for _, c := range Candidates(text, minLen) {
		d.Entries = append(d.Entries, Entry{Text: c, Label: label, Page: page, Line: line})
	}
}

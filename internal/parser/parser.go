package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/contractlens/internal/apperr"
	"github.com/dgallion1/contractlens/internal/doctree"
	"golang.org/x/text/unicode/norm"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(data []byte, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
}

var pdfMagic = []byte("%PDF-")

// Options tunes extraction.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename, sniffing PDF
// content first so a mislabelled PDF still parses.
func ForFile(filename string, data []byte, opts Options) (Parser, error) {
	if bytes.HasPrefix(data, pdfMagic) {
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %q", ext)
	}
}

// IsSupported checks the extension, or PDF magic bytes when present.
func IsSupported(filename string, data []byte) bool {
	if bytes.HasPrefix(data, pdfMagic) {
		return true
	}
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extractor turns uploaded bytes into page-ordered document text.
type Extractor struct {
	opts Options
}

func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract parses data and returns its normalized text. Errors are
// *apperr.Error: InvalidInput for unsupported types, ExtractionFailed for
// unreadable files or documents without any text.
func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", apperr.New(apperr.InvalidInput, "uploaded file is empty")
	}
	p, err := ForFile(filename, data, e.opts)
	if err != nil {
		return "", apperr.Wrap(err, apperr.InvalidInput, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)))
	}

	doc, err := p.Parse(data, filename)
	if err != nil {
		return "", apperr.Wrap(err, apperr.ExtractionFailed, "text extraction failed")
	}

	text := Normalize(doc.Text())
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.ExtractionFailed, "No text could be extracted from the document")
	}
	return text, nil
}

// Normalize applies NFKC (so PDF ligatures become plain letters), unifies
// line endings and strips trailing spaces on each line.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func baseTitle(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

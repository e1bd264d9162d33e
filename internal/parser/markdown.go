package parser

import (
	"bytes"
	"strings"

	"github.com/dgallion1/contractlens/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte, filename string) (*doctree.Document, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(data))

	doc := &doctree.Document{Title: baseTitle(filename)}

	// Headings open a new section; every other top-level block is body text
	// of the most recent heading.
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			doc.Add(strings.TrimSpace(string(node.Text(data))), "", 0)
		case *ast.ThematicBreak, *ast.HTMLBlock:
			continue
		default:
			if t := blockText(n, data); t != "" {
				doc.Add("", t, 0)
			}
		}
	}

	return doc, nil
}

// blockText gets the text content of a goldmark AST node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.ListItem:
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString("- ")
			buf.WriteString(blockText(c, src))
		default:
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

package doctree

import "strings"

// Document is the extracted, reading-ordered content of an uploaded file.
type Document struct {
	Title    string    // From metadata or filename
	Pages    int       // Page count for paginated formats, 0 otherwise
	Sections []Section // In reading order
}

// Section is one contiguous run of text: a PDF page, or the body under a heading.
type Section struct {
	Heading string // Empty for untitled text
	Text    string
	Page    int // 1-based source page, 0 if N/A
}

// Text concatenates all sections in order, separated by blank lines so that
// section boundaries survive as paragraph boundaries.
func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	for _, s := range d.Sections {
		body := strings.TrimSpace(s.Text)
		heading := strings.TrimSpace(s.Heading)
		if body == "" && heading == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if heading != "" {
			sb.WriteString(heading)
			if body != "" {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(body)
	}
	return sb.String()
}

// Add appends a section, merging consecutive untitled text into the previous
// section when it shares the same page.
func (d *Document) Add(heading, text string, page int) {
	text = strings.TrimSpace(text)
	if heading == "" && text == "" {
		return
	}
	if heading == "" && len(d.Sections) > 0 {
		last := &d.Sections[len(d.Sections)-1]
		if last.Page == page {
			if last.Text != "" {
				last.Text += "\n\n"
			}
			last.Text += text
			return
		}
	}
	d.Sections = append(d.Sections, Section{Heading: heading, Text: text, Page: page})
}

package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingSections(t *testing.T) {
	input := `# Services Agreement

Intro text.

## Payment

Client pays $5,000 per month.

### Late Fees

Late payments accrue 1.5% interest.

## Termination

Either party may terminate with 30 days notice.
`
	p := &MarkdownParser{}
	doc, err := p.Parse([]byte(input), "msa.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "msa" {
		t.Errorf("expected title %q, got %q", "msa", doc.Title)
	}

	wantHeadings := []string{"Services Agreement", "Payment", "Late Fees", "Termination"}
	if len(doc.Sections) != len(wantHeadings) {
		t.Fatalf("expected %d sections, got %d", len(wantHeadings), len(doc.Sections))
	}
	for i, h := range wantHeadings {
		if doc.Sections[i].Heading != h {
			t.Errorf("section[%d]: expected heading %q, got %q", i, h, doc.Sections[i].Heading)
		}
	}
	if !strings.Contains(doc.Sections[1].Text, "$5,000") {
		t.Errorf("expected payment section to mention fee, got %q", doc.Sections[1].Text)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse([]byte("Just a paragraph.\n\nAnother one."), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 untitled section, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Heading != "" {
		t.Errorf("expected no heading, got %q", doc.Sections[0].Heading)
	}
	if doc.Text() != "Just a paragraph.\n\nAnother one." {
		t.Errorf("unexpected text %q", doc.Text())
	}
}

func TestMarkdownParser_ListItems(t *testing.T) {
	input := "## Obligations\n\n- Deliver reports\n- Keep records\n"
	p := &MarkdownParser{}
	doc, err := p.Parse([]byte(input), "list.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := doc.Text()
	for _, want := range []string{"Obligations", "- Deliver reports", "- Keep records"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected text to contain %q, got %q", want, text)
		}
	}
}

package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_TitleAndSections(t *testing.T) {
	input := `<html><head><title>Lease Agreement</title><style>p{}</style></head>
<body>
<nav>Home | About</nav>
<h1>Premises</h1>
<p>The landlord leases   the unit
to the tenant.</p>
<h2>Rent</h2>
<ul><li>Due monthly</li><li>Paid by transfer</li></ul>
<script>var x = 1;</script>
<footer>Copyright</footer>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse([]byte(input), "lease.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Lease Agreement" {
		t.Errorf("expected title %q, got %q", "Lease Agreement", doc.Title)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Heading != "Premises" {
		t.Errorf("unexpected heading %q", doc.Sections[0].Heading)
	}
	if doc.Sections[0].Text != "The landlord leases the unit to the tenant." {
		t.Errorf("unexpected text %q", doc.Sections[0].Text)
	}
	if doc.Sections[1].Text != "Due monthly\n\nPaid by transfer" {
		t.Errorf("unexpected text %q", doc.Sections[1].Text)
	}

	text := doc.Text()
	for _, banned := range []string{"Home | About", "var x", "Copyright"} {
		if strings.Contains(text, banned) {
			t.Errorf("expected %q to be skipped, got %q", banned, text)
		}
	}
}

func TestHTMLParser_FallsBackToFilenameTitle(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse([]byte("<p>Only text</p>"), "notice.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notice" {
		t.Errorf("expected title %q, got %q", "notice", doc.Title)
	}
	if doc.Text() != "Only text" {
		t.Errorf("unexpected text %q", doc.Text())
	}
}

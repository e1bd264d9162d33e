package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_TextJoinsSectionsWithBlankLines(t *testing.T) {
	doc := &Document{Title: "lease"}
	doc.Add("", "Page one text.", 1)
	doc.Add("", "Page two text.", 2)

	assert.Equal(t, "Page one text.\n\nPage two text.", doc.Text())
}

func TestDocument_HeadingsBecomeParagraphs(t *testing.T) {
	doc := &Document{}
	doc.Add("Term", "Twelve months.", 0)
	doc.Add("Rent", "", 0)
	doc.Add("", "$5,000 due monthly.", 0)

	assert.Equal(t, "Term\n\nTwelve months.\n\nRent\n\n$5,000 due monthly.", doc.Text())
	assert.Len(t, doc.Sections, 2)
}

func TestDocument_AddSkipsEmpty(t *testing.T) {
	doc := &Document{}
	doc.Add("", "   ", 1)
	assert.Empty(t, doc.Sections)
	assert.Equal(t, "", doc.Text())

	var nilDoc *Document
	assert.Equal(t, "", nilDoc.Text())
}

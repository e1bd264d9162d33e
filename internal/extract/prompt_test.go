package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder_AnalysisSystemPromptListsSchema(t *testing.T) {
	p := Builder{}.AnalysisSystemPrompt()
	for _, f := range ContractSchema.Fields {
		assert.Contains(t, p, `"`+f.Name+`"`)
	}
	assert.Contains(t, p, "legal document analyzer")
}

func TestBuilder_Truncation(t *testing.T) {
	text := strings.Repeat("é", 50)

	full := Builder{}.AnalysisPrompt(text)
	assert.True(t, strings.HasSuffix(full, text))

	cut := Builder{TruncateChars: 10}.AnalysisPrompt(text)
	assert.True(t, strings.HasSuffix(cut, "\n\n"+strings.Repeat("é", 10)))

	same := Builder{TruncateChars: 100}.AnalysisPrompt(text)
	assert.Equal(t, full, same)
}

func TestBuilder_ChunkAnalysisPrompt(t *testing.T) {
	b := Builder{}
	assert.Equal(t, b.AnalysisPrompt("x"), b.ChunkAnalysisPrompt("x", 0, 1))
	p := b.ChunkAnalysisPrompt("clause text", 1, 3)
	assert.Contains(t, p, "part 2 of 3")
	assert.Contains(t, p, "clause text")
}

func TestBuilder_QuestionPrompts(t *testing.T) {
	b := Builder{}
	assert.Contains(t, b.QuestionSystemPrompt(), NoAnswerMarker)

	q := b.QuestionPrompt("$5,000 due monthly", " What is the payment amount? ")
	assert.Contains(t, q, "$5,000 due monthly")
	assert.True(t, strings.HasSuffix(q, "Question: What is the payment amount?"))

	s := b.SummarizePrompt("What is the fee?", "a\n\nb")
	assert.Contains(t, s, `"What is the fee?"`)
	assert.True(t, strings.HasSuffix(s, "a\n\nb"))
}

package extract

import (
	"fmt"
	"strings"
)

// NoAnswerMarker is the reply the question prompt asks the model to
// give when an excerpt does not answer the question.
const NoAnswerMarker = "NO_RELEVANT_INFORMATION"

const analysisInstructions = `You are a legal document analyzer. Analyze the provided contract and extract:
1. A clear summary of the contract's purpose and main points
2. The document type, the parties and their roles
3. Key terms and their specific values or implications
4. Important dates, obligations and notable clauses
5. Potential risks, missing elements, or areas needing attention, with recommendations

Rules:
- Only report what the text supports. Use "" or [] when something is not stated.
- Quote amounts, dates and names exactly as written.

Respond with ONLY a JSON object in this exact format:
`

const questionInstructions = `You are a legal document assistant. Answer questions about the contract accurately and concisely, using only the excerpt you are given.
If the excerpt does not contain information relevant to the question, reply with exactly ` + NoAnswerMarker + ` and nothing else.`

// Builder renders prompts for the completion endpoint. The zero value is
// ready to use with ContractSchema and no truncation.
type Builder struct {
	Schema        Schema
	TruncateChars int // 0 keeps the whole text
}

func (b Builder) schema() Schema {
	if len(b.Schema.Fields) == 0 {
		return ContractSchema
	}
	return b.Schema
}

// AnalysisSystemPrompt is the system instruction for every analysis call.
func (b Builder) AnalysisSystemPrompt() string {
	return analysisInstructions + b.schema().Template()
}

// AnalysisPrompt asks for an analysis of a whole document.
func (b Builder) AnalysisPrompt(text string) string {
	return "Analyze this contract:\n\n" + b.truncate(text)
}

// ChunkAnalysisPrompt asks for an analysis of one part of a larger document.
func (b Builder) ChunkAnalysisPrompt(text string, index, total int) string {
	if total <= 1 {
		return b.AnalysisPrompt(text)
	}
	return fmt.Sprintf(
		"This is part %d of %d of a contract. Analyze only this part; other parts are analyzed separately.\n\n%s",
		index+1, total, b.truncate(text),
	)
}

// QuestionSystemPrompt is the system instruction for per-chunk questions.
func (b Builder) QuestionSystemPrompt() string {
	return questionInstructions
}

// QuestionPrompt asks a question about one excerpt.
func (b Builder) QuestionPrompt(chunk, question string) string {
	return fmt.Sprintf("Contract excerpt:\n%s\n\nQuestion: %s", b.truncate(chunk), strings.TrimSpace(question))
}

// SummarizePrompt asks the model to condense answers gathered from several
// excerpts into one.
func (b Builder) SummarizePrompt(question, answers string) string {
	return fmt.Sprintf(
		"The following answers to the question %q were gathered from different parts of the same contract. "+
			"Combine them into one concise answer. Keep every amount, date and name exactly as written and drop repetition.\n\n%s",
		strings.TrimSpace(question), answers,
	)
}

func (b Builder) truncate(text string) string {
	if b.TruncateChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= b.TruncateChars {
		return text
	}
	return string(runes[:b.TruncateChars])
}

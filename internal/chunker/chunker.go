package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxTokens is the per-chunk budget used when none is configured.
const DefaultMaxTokens = 4000

// Config controls chunking behavior.
type Config struct {
	MaxTokens int // Upper bound on EstimateTokens of every chunk.
}

// Chunk is one token-bounded slice of document text.
type Chunk struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Tokens int    `json:"tokens"`
}

type level int

const (
	levelParagraph level = iota
	levelSentence
	levelWord
	levelRune
)

var separators = map[level]string{
	levelParagraph: "\n\n",
	levelSentence:  " ",
	levelWord:      " ",
	levelRune:      "",
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Split breaks text into chunks whose estimated token count stays within
// cfg.MaxTokens. Paragraphs are packed greedily in order and joined with a
// blank line. A paragraph that is too large on its own is split by
// sentences, then words, then characters.
func Split(text string, cfg Config) []Chunk {
	budget := cfg.MaxTokens
	if budget <= 0 {
		budget = DefaultMaxTokens
	}

	parts := pack(splitParagraphs(text), levelParagraph, budget)
	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Text:   p,
			Tokens: EstimateTokens(p),
		})
	}
	return chunks
}

// pack greedily joins units with the separator for lvl while the joined
// estimate stays within budget. Units that are oversized on their own are
// split at the next finer level.
func pack(units []string, lvl level, budget int) []string {
	sep := separators[lvl]
	var out []string
	current := ""

	flush := func() {
		if current != "" {
			out = append(out, current)
			current = ""
		}
	}

	for _, u := range units {
		if EstimateTokens(u) > budget {
			flush()
			out = append(out, splitOversized(u, lvl, budget)...)
			continue
		}
		if current == "" {
			current = u
			continue
		}
		candidate := current + sep + u
		if EstimateTokens(candidate) <= budget {
			current = candidate
			continue
		}
		flush()
		current = u
	}
	flush()
	return out
}

func splitOversized(u string, lvl level, budget int) []string {
	switch lvl {
	case levelParagraph:
		return pack(splitSentences(u), levelSentence, budget)
	case levelSentence:
		return pack(strings.Fields(u), levelWord, budget)
	default:
		return splitRunes(u, maxWordRunes(budget))
	}
}

// splitParagraphs splits on blank lines and drops empty paragraphs.
func splitParagraphs(text string) []string {
	var result []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting on terminal punctuation
// followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	emit := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?' || r == ';') && i+1 < len(text) && isSpace(text[i+1]) {
			emit()
		}
	}
	emit()
	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}

// splitRunes cuts a single word into pieces of at most n characters.
func splitRunes(word string, n int) []string {
	runes := []rune(word)
	var out []string
	for len(runes) > 0 {
		end := min(n, len(runes))
		out = append(out, string(runes[:end]))
		runes = runes[end:]
	}
	return out
}

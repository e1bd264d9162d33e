package chunker

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens approximates the model token count of text as the number of
// words plus a quarter of the number of characters. It is monotonic: adding
// text never lowers the estimate.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text)) + utf8.RuneCountInString(text)/4
}

// maxWordRunes is the longest single word that still fits in budget tokens.
func maxWordRunes(budget int) int {
	if budget < 1 {
		return 1
	}
	return 4*(budget-1) + 3
}

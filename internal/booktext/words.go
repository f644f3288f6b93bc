package booktext

import "unicode"

// ParagraphBreak marks a blank line between paragraphs.
const ParagraphBreak = ""

// IsWord reports whether a token counts toward words read. Tokens made only
// of punctuation or symbols, such as scene breaks, do not count.
func IsWord(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// CountWords counts the tokens that are words.
func CountWords(tokens []string) int {
	count := 0
	for _, token := range tokens {
		if IsWord(token) {
			count++
		}
	}
	return count
}

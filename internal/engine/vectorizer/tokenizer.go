package vectorizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// minTokenRunes drops one-character tokens, which carry no signal in short
// reports ("a", "3", "!").
const minTokenRunes = 2

// tokenize cleans, NFC-normalizes and lowercases text, then splits it into
// word tokens (letters, digits, underscore). Everything else separates tokens.
func tokenize(text string) []string {
	text = norm.NFC.String(cleanText(text))
	text = strings.ToLower(text)

	var (
		tokens  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() == 0 {
			return
		}
		if tok := current.String(); utf8.RuneCountInString(tok) >= minTokenRunes {
			tokens = append(tokens, tok)
		}
		current.Reset()
	}
	for _, r := range text {
		if isWordRune(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// analyze returns the n-grams of text for every n in [minN, maxN], built over
// consecutive tokens and joined with a single space.
func analyze(text string, minN, maxN int) []string {
	tokens := tokenize(text)
	if minN < 1 {
		minN = 1
	}
	var grams []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				grams = append(grams, tokens[i])
				continue
			}
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// cleanText removes control characters and replaces whitespace with spaces.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == utf8.RuneError || isControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

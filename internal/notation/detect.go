package notation

import (
	"regexp"
	"strings"
)

// Format identifies one of the supported theory notations.
type Format string

const (
	FormatStructured Format = "structured"
	FormatCommented  Format = "commented"
	FormatAnnotated  Format = "annotated"
	FormatPlain      Format = "plain"
)

var braceComment = regexp.MustCompile(`\{[^}]+\}`)

// openingTokens mark a text as annotated-dash notation when it also has a hyphen.
var openingTokens = []string{"e4", "e5", "Nf3"}

type detector struct {
	format Format
	match  func(text string) bool
}

// detectors are evaluated top to bottom; the first match wins.
// FormatPlain is the fallback and has no predicate.
var detectors = []detector{
	{FormatStructured, isStructured},
	{FormatCommented, isCommented},
	{FormatAnnotated, isAnnotated},
}

// Detect returns the format the parser will use for text.
func Detect(text string) Format {
	for _, d := range detectors {
		if d.match(text) {
			return d.format
		}
	}
	return FormatPlain
}

func isStructured(text string) bool {
	upper := strings.ToUpper(text)
	return strings.Contains(upper, "MOVES:") || strings.Contains(upper, "TITLE:")
}

func isCommented(text string) bool {
	return braceComment.MatchString(text)
}

func isAnnotated(text string) bool {
	if !strings.Contains(text, "-") {
		return false
	}
	for _, tok := range openingTokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

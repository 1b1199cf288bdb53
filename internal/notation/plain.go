package notation

import (
	"strings"
	"unicode"

	"github.com/ivlev/chess2video/internal/position"
	"github.com/ivlev/chess2video/internal/theory"
)

// titleProbe is how many leading characters of the first line are checked for digits.
const titleProbe = 10

// parsePlain treats the text as a bare token stream. A first line without
// digits near its start is taken as the title.
func parsePlain(text string, tr *position.Tracker, doc *theory.Document, rep *Report) {
	lines := splitLines(text)
	body := text
	if len(lines) > 0 && !hasLeadingDigit(lines[0]) {
		doc.Title = strings.TrimSpace(lines[0])
		body = strings.Join(lines[1:], "\n")
	}
	resolveTokens(body, tr, doc, rep)
}

func hasLeadingDigit(line string) bool {
	rs := []rune(line)
	if len(rs) > titleProbe {
		rs = rs[:titleProbe]
	}
	for _, r := range rs {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

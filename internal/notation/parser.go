// Package notation turns loosely structured chess theory text into a
// theory.Document. Four notations are recognised; see Detect.
package notation

import (
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/ivlev/chess2video/internal/position"
	"github.com/ivlev/chess2video/internal/source"
	"github.com/ivlev/chess2video/internal/theory"
)

// Report describes what the parser threw away while building a document.
type Report struct {
	Format             Format   `json:"format"`
	Rejected           int      `json:"rejected"`
	RejectedTokens     []string `json:"rejected_tokens,omitempty"`
	DroppedTimingLines int      `json:"dropped_timing_lines"`
	FellBack           bool     `json:"fell_back"`
}

func (r *Report) reject(token string) {
	r.Rejected++
	r.RejectedTokens = append(r.RejectedTokens, token)
}

// Parser is stateless; every call to Parse uses its own position tracker.
type Parser struct {
	Verbose bool
}

func NewParser() *Parser {
	return &Parser{}
}

// ParseFile extracts the text of path with the loader for its extension
// and parses it.
func (p *Parser) ParseFile(path string) (*theory.Document, *Report, error) {
	text, err := source.ReadText(path)
	if err != nil {
		return nil, nil, err
	}
	doc, rep := p.Parse(text)
	return doc, rep, nil
}

// Parse never fails. Tokens and lines that cannot be used are skipped and
// counted in the report; callers decide whether an empty document is fatal.
func (p *Parser) Parse(text string) (*theory.Document, *Report) {
	format := Detect(text)
	rep := &Report{Format: format}
	tr := position.NewTracker()
	doc := theory.NewDocument()

	switch format {
	case FormatStructured:
		parseStructured(text, tr, doc, rep)
	case FormatCommented:
		if err := parseCommented(text, tr, doc); err != nil {
			if p.Verbose {
				log.Printf("[!] Ошибка разбора PGN, переходим к простому списку ходов: %v", err)
			}
			rep.FellBack = true
			tr.Reset()
			doc = theory.NewDocument()
			parsePlain(text, tr, doc, rep)
		}
	case FormatAnnotated:
		parseAnnotated(text, tr, doc, rep)
	default:
		parsePlain(text, tr, doc, rep)
	}

	if p.Verbose {
		for _, tok := range rep.RejectedTokens {
			log.Printf("[!] Пропущен токен %q", tok)
		}
	}
	return doc, rep
}

var (
	moveNumberPrefix = regexp.MustCompile(`^\d+\.+`)
	gameResults      = map[string]bool{"1-0": true, "0-1": true, "1/2-1/2": true, "*": true}
)

// resolveTokens folds the whitespace-separated tokens of text into doc.
// Brace comments are dropped first; move-number labels and results are
// skipped silently; everything else that does not resolve is rejected.
func resolveTokens(text string, tr *position.Tracker, doc *theory.Document, rep *Report) {
	text = braceComment.ReplaceAllString(text, "")

	for _, raw := range strings.Fields(text) {
		token := strings.Trim(raw, ".,;")
		if token == "" || isNumeral(token) || strings.HasSuffix(token, ".") || gameResults[token] {
			continue
		}
		// "1.e4" and "3...Nf6" carry the label glued to the move.
		if loc := moveNumberPrefix.FindStringIndex(token); loc != nil {
			token = token[loc[1]:]
		}

		rec, err := tr.Resolve(token)
		if err != nil {
			rep.reject(token)
			continue
		}
		doc.AddMove(rec)
	}
}

func isNumeral(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// splitLines trims the whole text and splits it into raw lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSpace(text), "\n")
}

// markerValue returns the trimmed text after the first colon.
func markerValue(line string) string {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package notation

import (
	"regexp"
	"strings"

	"github.com/ivlev/chess2video/internal/position"
	"github.com/ivlev/chess2video/internal/theory"
)

// annotatedLine matches "1. e4 - Controls the centre" and "2... Nc6 - develops".
var annotatedLine = regexp.MustCompile(`^\d+\.+\s*(O-O-O|O-O|0-0-0|0-0|[^\s-]+)\s*-\s*(.+)$`)

// parseAnnotated reads one move per line with a dash-separated comment.
// An "Opening:" line sets the title; other lines are ignored.
func parseAnnotated(text string, tr *position.Tracker, doc *theory.Document, rep *Report) {
	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "opening:") {
			doc.Title = markerValue(line)
			continue
		}

		m := annotatedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec, err := tr.Resolve(m[1])
		if err != nil {
			rep.reject(m[1])
			continue
		}
		doc.AddMove(rec)
		doc.Annotate(doc.MoveCount-1, strings.TrimSpace(m[2]))
	}
}

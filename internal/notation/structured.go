package notation

import (
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/chess2video/internal/position"
	"github.com/ivlev/chess2video/internal/theory"
)

// parseStructured reads the TITLE/DESCRIPTION/MOVES/TEXT/TIMING/DISPLAY format.
// A MOVES marker opens the move section and any other marker closes it.
// Buffered move lines are resolved before every TEXT marker so the
// annotation lands on the move count reached at that point.
func parseStructured(text string, tr *position.Tracker, doc *theory.Document, rep *Report) {
	inMoves := false
	var buf []string

	flush := func() {
		if len(buf) == 0 {
			return
		}
		resolveTokens(strings.Join(buf, " "), tr, doc, rep)
		buf = buf[:0]
	}

	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "TITLE:"):
			doc.Title = markerValue(line)
			inMoves = false
		case strings.HasPrefix(upper, "DESCRIPTION:"):
			doc.Description = markerValue(line)
			inMoves = false
		case strings.HasPrefix(upper, "MOVES:"):
			inMoves = true
			if rest := markerValue(line); rest != "" {
				buf = append(buf, rest)
			}
		case strings.HasPrefix(upper, "TEXT:"):
			flush()
			inMoves = false
			v := markerValue(line)
			doc.Annotate(doc.MoveCount, v)
			doc.DisplayText = append(doc.DisplayText, v)
		case strings.HasPrefix(upper, "TIMING:"):
			inMoves = false
			idx, seconds, ok := parseTiming(markerValue(line))
			if !ok {
				rep.DroppedTimingLines++
				continue
			}
			doc.SetTiming(idx, seconds)
		case strings.HasPrefix(upper, "DISPLAY:"):
			inMoves = false
			doc.DisplayText = append(doc.DisplayText, markerValue(line))
		default:
			if inMoves {
				buf = append(buf, line)
			}
		}
	}
	flush()
}

// parseTiming parses "<move number> <seconds>" and returns a 0-based index.
func parseTiming(v string) (int, float64, bool) {
	parts := strings.Fields(v)
	if len(parts) < 2 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, 0, false
	}
	return n - 1, seconds, true
}

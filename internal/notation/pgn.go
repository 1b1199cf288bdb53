package notation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ivlev/chess2video/internal/position"
	"github.com/ivlev/chess2video/internal/theory"
)

var (
	errUnclosedComment   = errors.New("unclosed brace comment")
	errUnopenedComment   = errors.New("closing brace without comment")
	errUnbalancedVariant = errors.New("unbalanced variation")

	tagPair = regexp.MustCompile(`^\[(\w+)\s+"((?:[^"\\]|\\.)*)"\]$`)
)

// parseCommented reads the main line of a single PGN game. Variations and
// NAGs are skipped, a comment is attached to the move it follows and the
// Event and Opening tags become title and description. Any token that is
// not a legal SAN move aborts the read so the caller can fall back.
func parseCommented(text string, tr *position.Tracker, doc *theory.Document) error {
	tags, movetext := splitTags(text)
	doc.Title = tagValue(tags, "Event")
	doc.Description = tagValue(tags, "Opening")

	var pending []string
	attach := func() {
		if len(pending) > 0 && doc.MoveCount > 0 {
			doc.Annotate(doc.MoveCount-1, strings.Join(pending, " "))
		}
		pending = pending[:0]
	}

	rs := []rune(movetext)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '{':
			end := indexRune(rs, i+1, '}')
			if end < 0 {
				return errUnclosedComment
			}
			if c := strings.Join(strings.Fields(string(rs[i+1:end])), " "); c != "" {
				pending = append(pending, c)
			}
			i = end + 1
		case r == ';':
			end := indexRune(rs, i+1, '\n')
			if end < 0 {
				end = len(rs)
			}
			if c := strings.TrimSpace(string(rs[i+1 : end])); c != "" {
				pending = append(pending, c)
			}
			i = end
		case r == '(':
			end, err := skipVariation(rs, i)
			if err != nil {
				return err
			}
			i = end
		case r == ')':
			return errUnbalancedVariant
		case r == '}':
			return errUnopenedComment
		default:
			start := i
			for i < len(rs) && !isDelimiter(rs[i]) {
				i++
			}
			token := string(rs[start:i])
			if strings.HasPrefix(token, "$") {
				continue
			}
			if gameResults[token] {
				attach()
				return nil
			}
			if loc := moveNumberPrefix.FindStringIndex(token); loc != nil {
				token = token[loc[1]:]
			}
			if token == "" {
				continue
			}

			attach()
			rec, err := tr.ResolveSAN(token)
			if err != nil {
				return fmt.Errorf("move %d: %w", doc.MoveCount+1, err)
			}
			doc.AddMove(rec)
		}
	}
	attach()
	return nil
}

// splitTags peels leading tag-pair lines off text.
func splitTags(text string) (map[string]string, string) {
	tags := make(map[string]string)
	lines := splitLines(text)
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		m := tagPair.FindStringSubmatch(line)
		if m == nil {
			break
		}
		tags[m[1]] = strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(m[2])
	}
	return tags, strings.Join(lines[i:], "\n")
}

// tagValue treats the PGN placeholder "?" as absent.
func tagValue(tags map[string]string, name string) string {
	v := strings.TrimSpace(tags[name])
	if v == "?" {
		return ""
	}
	return v
}

func skipVariation(rs []rune, i int) (int, error) {
	depth := 0
	for ; i < len(rs); i++ {
		switch rs[i] {
		case '{':
			end := indexRune(rs, i+1, '}')
			if end < 0 {
				return 0, errUnclosedComment
			}
			i = end
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, errUnbalancedVariant
}

func indexRune(rs []rune, from int, target rune) int {
	for j := from; j < len(rs); j++ {
		if rs[j] == target {
			return j
		}
	}
	return -1
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '{', '}', '(', ')', ';':
		return true
	}
	return false
}

package notation

import (
	"reflect"
	"testing"

	"github.com/ivlev/chess2video/internal/theory"
)

func sans(doc *theory.Document) []string {
	out := make([]string, 0, len(doc.Moves))
	for _, m := range doc.Moves {
		out = append(out, m.SAN)
	}
	return out
}

func assertChained(t *testing.T, doc *theory.Document) {
	t.Helper()
	prev := theory.StartingFEN
	for i, m := range doc.Moves {
		if m.FENBefore != prev {
			t.Fatalf("move %d (%s) does not continue from its predecessor", i, m.SAN)
		}
		prev = m.FENAfter
	}
	if doc.MoveCount != len(doc.Moves) {
		t.Fatalf("move_count %d != %d records", doc.MoveCount, len(doc.Moves))
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Format
	}{
		{"title marker", "Title: Italian\n1. e4 e5", FormatStructured},
		{"moves marker lower case", "moves: e4 e5", FormatStructured},
		{"brace comment", "1. e4 {best by test} e5", FormatCommented},
		{"empty braces are not a comment", "e4 {} d5", FormatPlain},
		{"dash with opening token", "1. e4 - centre", FormatAnnotated},
		{"dash without opening token", "1. d4 - queen pawn", FormatPlain},
		{"plain", "1. e4 e5 2. Nf3 Nc6", FormatPlain},
		{"structured wins over comment", "TITLE: X\n{c}", FormatStructured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePlainTokens(t *testing.T) {
	doc, rep := NewParser().Parse("1. e4 e5 2. Nf3 Nc6")

	want := []string{"e4", "e5", "Nf3", "Nc6"}
	if got := sans(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("SAN sequence = %v, want %v", got, want)
	}
	if doc.MoveCount != 4 {
		t.Errorf("move_count = %d, want 4", doc.MoveCount)
	}
	if rep.Rejected != 0 {
		t.Errorf("unexpected rejects: %v", rep.RejectedTokens)
	}
	assertChained(t, doc)
}

func TestParsePlainTitleAndGluedNumbers(t *testing.T) {
	doc, rep := NewParser().Parse("Queen's Gambit\n1.d4 d5 2.c4, dxc4; 3.e2e4 *")

	if doc.Title != "Queen's Gambit" {
		t.Errorf("title = %q", doc.Title)
	}
	want := []string{"d4", "d5", "c4", "dxc4", "e4"}
	if got := sans(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("SAN sequence = %v, want %v", got, want)
	}
	if rep.Rejected != 0 {
		t.Errorf("unexpected rejects: %v", rep.RejectedTokens)
	}
	assertChained(t, doc)
}

func TestParseSkipsIllegalTokens(t *testing.T) {
	doc, rep := NewParser().Parse("1. e4 Ke7 e5 2. Qh8 Nf3")

	want := []string{"e4", "e5", "Nf3"}
	if got := sans(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("SAN sequence = %v, want %v", got, want)
	}
	if rep.Rejected != 2 {
		t.Errorf("rejected = %d, want 2", rep.Rejected)
	}
	assertChained(t, doc)
}

func TestParseUnresolvableInput(t *testing.T) {
	doc, rep := NewParser().Parse("1 hello world 2 foo bar")

	if doc.MoveCount != 0 {
		t.Fatalf("expected no moves, got %v", sans(doc))
	}
	if rep.Rejected == 0 {
		t.Error("expected rejected tokens to be counted")
	}
	if err := doc.Validate(); err == nil {
		t.Error("empty document must fail validation")
	}
}

func TestParseIsDeterministic(t *testing.T) {
	inputs := []string{
		"1. e4 e5 2. Nf3 Nc6 3. Bb5",
		"TITLE: Ruy\nMOVES: e4 e5\nTEXT: open game\nMOVES: Nf3 Nc6\nTIMING: 2 4.5",
		"[Event \"Test\"]\n1. e4 {king pawn} e5 2. Nf3 *",
		"Opening: Italian\n1. e4 - centre\n1... e5 - mirror\n2. Nf3 - attack",
	}
	p := NewParser()
	for _, in := range inputs {
		a, ra := p.Parse(in)
		b, rb := p.Parse(in)
		if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(ra, rb) {
			t.Errorf("two parses of %q differ", in)
		}
	}
}

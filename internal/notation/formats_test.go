package notation

import (
	"reflect"
	"testing"
	"time"

	"github.com/ivlev/chess2video/internal/theory"
)

func TestStructuredRoundTrip(t *testing.T) {
	doc, rep := NewParser().Parse("TITLE: X\nMOVES: e4 e5\nTEXT: hello")

	if rep.Format != FormatStructured {
		t.Fatalf("format = %s", rep.Format)
	}
	if doc.Title != "X" {
		t.Errorf("title = %q, want X", doc.Title)
	}
	if doc.MoveCount != 2 {
		t.Fatalf("move_count = %d, want 2", doc.MoveCount)
	}
	if got := doc.AnnotationMap()[2]; got != "hello" {
		t.Errorf("annotation[2] = %q, want hello", got)
	}
	if !reflect.DeepEqual(doc.DisplayText, []string{"hello"}) {
		t.Errorf("display text = %v", doc.DisplayText)
	}
}

func TestStructuredSections(t *testing.T) {
	text := `title: Italian Game
Description: A classical opening
MOVES:
1. e4 e5
TEXT: both sides claim the centre
MOVES: 2. Nf3 Nc6
3. Bc4
prose inside the moves section
DISPLAY: Move three develops the bishop
TIMING: 1 5
TIMING: abc
TIMING: 2
TIMING: 3 -1
Nf6 after a marker is outside any section
`
	doc, rep := NewParser().Parse(text)

	if doc.Title != "Italian Game" || doc.Description != "A classical opening" {
		t.Errorf("header = %q / %q", doc.Title, doc.Description)
	}
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bc4"}
	if got := sans(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("SAN sequence = %v, want %v", got, want)
	}
	if got := doc.AnnotationMap()[2]; got != "both sides claim the centre" {
		t.Errorf("annotation[2] = %q", got)
	}
	timings := doc.TimingMap()
	if len(timings) != 1 || timings[0] != 5.0 {
		t.Errorf("timings = %v, want map[0:5]", timings)
	}
	if rep.DroppedTimingLines != 3 {
		t.Errorf("dropped timing lines = %d, want 3", rep.DroppedTimingLines)
	}
	if len(doc.DisplayText) != 2 {
		t.Errorf("display text = %v", doc.DisplayText)
	}
	if rep.Rejected == 0 {
		t.Error("prose inside the moves section should be counted as rejected")
	}
	assertChained(t, doc)
}

func TestStructuredMarkersCloseMoves(t *testing.T) {
	for _, marker := range []string{"TEXT: hello", "TIMING: 1 3", "DISPLAY: board", "DESCRIPTION: x"} {
		doc, _ := NewParser().Parse("TITLE: X\nMOVES: e4 e5\n" + marker + "\nNf3\nMOVES: Nc3")
		want := []string{"e4", "e5", "Nc3"}
		if got := sans(doc); !reflect.DeepEqual(got, want) {
			t.Errorf("after %q: SAN sequence = %v, want %v", marker, got, want)
		}
	}

	doc, _ := NewParser().Parse("TITLE: X\nMOVES: e4 e5\nTEXT: hello")
	if doc.MoveCount != 2 || doc.AnnotationMap()[2] != "hello" {
		t.Errorf("round trip: moves %d, annotations %v", doc.MoveCount, doc.AnnotationMap())
	}
}

func TestStructuredIgnoresLinesOutsideMoves(t *testing.T) {
	doc, rep := NewParser().Parse("TITLE: Only a title\nsome stray words\nd4")

	if doc.MoveCount != 0 {
		t.Errorf("expected no moves outside the moves section, got %v", sans(doc))
	}
	if rep.Rejected != 0 {
		t.Errorf("lines outside the moves section must not be tokenised")
	}
}

func TestCommentedGame(t *testing.T) {
	text := `[Event "Ruy Lopez Study"]
[Site "?"]
[Opening "Spanish Game"]

{Game intro is dropped} 1. e4 {King pawn} e5 2. Nf3 Nc6 $1
(2... d6 {Philidor}) 3. Bb5 {The Spanish bishop} ; pins nothing yet
a6 1-0`
	doc, rep := NewParser().Parse(text)

	if rep.Format != FormatCommented || rep.FellBack {
		t.Fatalf("format = %s fellBack = %v", rep.Format, rep.FellBack)
	}
	if doc.Title != "Ruy Lopez Study" || doc.Description != "Spanish Game" {
		t.Errorf("header = %q / %q", doc.Title, doc.Description)
	}
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}
	if got := sans(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("SAN sequence = %v, want %v", got, want)
	}
	ann := doc.AnnotationMap()
	if ann[0] != "King pawn" {
		t.Errorf("annotation[0] = %q", ann[0])
	}
	if ann[4] != "The Spanish bishop pins nothing yet" {
		t.Errorf("annotation[4] = %q", ann[4])
	}
	if len(ann) != 2 {
		t.Errorf("unexpected annotations %v", ann)
	}
	assertChained(t, doc)
}

func TestCommentedGameFallsBack(t *testing.T) {
	doc, rep := NewParser().Parse("1. e4 {centre} e5 2. Qh5 zzz Nc6")

	if !rep.FellBack {
		t.Fatal("expected fallback to plain tokens")
	}
	want := []string{"e4", "e5", "Qh5", "Nc6"}
	if got := sans(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("SAN sequence = %v, want %v", got, want)
	}
	if len(doc.Annotations) != 0 {
		t.Errorf("plain fallback must not keep comments, got %v", doc.Annotations)
	}
	assertChained(t, doc)
}

func TestCommentedGameStrayBrace(t *testing.T) {
	tests := []string{
		"1. e4 {good move}} e5 2. Nf3",
		"1. e4 {a} } e5 2. Nf3",
	}
	for _, text := range tests {
		done := make(chan struct{})
		var (
			doc *theory.Document
			rep *Report
		)
		go func() {
			doc, rep = NewParser().Parse(text)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("Parse(%q) did not return", text)
		}

		if rep.Format != FormatCommented || !rep.FellBack {
			t.Errorf("%q: format %s, fell back %v", text, rep.Format, rep.FellBack)
		}
		want := []string{"e4", "e5", "Nf3"}
		if got := sans(doc); !reflect.DeepEqual(got, want) {
			t.Errorf("%q: SAN sequence = %v, want %v", text, got, want)
		}
	}
}

func TestAnnotatedDash(t *testing.T) {
	text := `Opening: Italian Game
1. e4 - Controls the centre
1... e5 - Black mirrors
2. Nf3 - Attacks e5
2... Qd5 - Illegal here
2... Nc6 - Defends
3. Bc4 - Eyes f7
not a move line`
	doc, rep := NewParser().Parse(text)

	if rep.Format != FormatAnnotated {
		t.Fatalf("format = %s", rep.Format)
	}
	if doc.Title != "Italian Game" {
		t.Errorf("title = %q", doc.Title)
	}
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bc4"}
	if got := sans(doc); !reflect.DeepEqual(got, want) {
		t.Fatalf("SAN sequence = %v, want %v", got, want)
	}
	ann := doc.AnnotationMap()
	if ann[2] != "Attacks e5" || ann[4] != "Eyes f7" {
		t.Errorf("annotations = %v", ann)
	}
	if rep.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", rep.Rejected)
	}
	assertChained(t, doc)
}

package theory

import (
	"errors"
	"testing"
)

func TestAnnotationMapLastWriteWins(t *testing.T) {
	d := NewDocument()
	d.Annotate(0, "first")
	d.Annotate(1, "other")
	d.Annotate(0, "second")

	m := d.AnnotationMap()
	if m[0] != "second" {
		t.Errorf("expected later annotation to win, got %q", m[0])
	}
	if len(d.Annotations) != 3 {
		t.Errorf("expected all 3 annotations to be kept in order, got %d", len(d.Annotations))
	}
}

func TestTimingMapLastWriteWins(t *testing.T) {
	d := NewDocument()
	d.SetTiming(2, 1.5)
	d.SetTiming(2, 4.0)

	if got := d.TimingMap()[2]; got != 4.0 {
		t.Errorf("expected 4.0, got %f", got)
	}
}

func TestAddMoveKeepsCount(t *testing.T) {
	d := NewDocument()
	if err := d.Validate(); !errors.Is(err, ErrEmptyTheory) {
		t.Fatalf("expected ErrEmptyTheory, got %v", err)
	}

	d.AddMove(MoveRecord{SAN: "e4", FENBefore: StartingFEN, FENAfter: "after-e4"})
	d.AddMove(MoveRecord{SAN: "e5", FENBefore: "after-e4", FENAfter: "after-e5"})

	if d.MoveCount != len(d.Moves) || d.MoveCount != 2 {
		t.Errorf("expected move_count 2, got %d", d.MoveCount)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if d.FinalFEN() != "after-e5" {
		t.Errorf("unexpected final FEN %q", d.FinalFEN())
	}
	if d.FENAfterPly(5) != "after-e5" || d.FENAfterPly(0) != StartingFEN {
		t.Errorf("FENAfterPly clamp failed")
	}
}

func TestSchema(t *testing.T) {
	s, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	props, ok := s["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("schema has no properties: %v", s)
	}
	for _, key := range []string{"title", "moves", "annotations", "move_count"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}

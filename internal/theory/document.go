package theory

import "errors"

// StartingFEN is the digest of the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrEmptyTheory is returned when a parsed document contains no moves.
var ErrEmptyTheory = errors.New("no valid moves found in theory")

// MoveRecord is one ply. It is never modified after the tracker creates it.
type MoveRecord struct {
	SAN       string `json:"san" yaml:"san"`
	UCI       string `json:"uci" yaml:"uci"`
	From      string `json:"from" yaml:"from"`
	To        string `json:"to" yaml:"to"`
	FENBefore string `json:"fen" yaml:"fen"`
	FENAfter  string `json:"fen_after" yaml:"fen_after"`
}

// Annotation attaches text to the move at Index (0-based).
type Annotation struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}

// TimingOverride replaces the default duration of the move at Index (0-based).
type TimingOverride struct {
	Index   int     `json:"index" yaml:"index"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
}

// Document is the result of parsing one theory text.
type Document struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Moves       []MoveRecord     `json:"moves"`
	Annotations []Annotation     `json:"annotations"`
	Timings     []TimingOverride `json:"timings"`
	DisplayText []string         `json:"display_text"`
	StartingFEN string           `json:"starting_fen"`
	MoveCount   int              `json:"move_count"`
}

// NewDocument returns an empty document positioned at the initial position.
func NewDocument() *Document {
	return &Document{
		Moves:       []MoveRecord{},
		Annotations: []Annotation{},
		Timings:     []TimingOverride{},
		DisplayText: []string{},
		StartingFEN: StartingFEN,
	}
}

// AddMove appends a move and keeps MoveCount in sync.
func (d *Document) AddMove(m MoveRecord) {
	d.Moves = append(d.Moves, m)
	d.MoveCount = len(d.Moves)
}

func (d *Document) Annotate(index int, text string) {
	d.Annotations = append(d.Annotations, Annotation{Index: index, Text: text})
}

func (d *Document) SetTiming(index int, seconds float64) {
	d.Timings = append(d.Timings, TimingOverride{Index: index, Seconds: seconds})
}

// AnnotationMap returns annotations keyed by move index.
// Later entries for the same index overwrite earlier ones.
func (d *Document) AnnotationMap() map[int]string {
	m := make(map[int]string, len(d.Annotations))
	for _, a := range d.Annotations {
		m[a.Index] = a.Text
	}
	return m
}

// TimingMap returns timing overrides keyed by move index, last write wins.
func (d *Document) TimingMap() map[int]float64 {
	m := make(map[int]float64, len(d.Timings))
	for _, t := range d.Timings {
		m[t.Index] = t.Seconds
	}
	return m
}

// FinalFEN returns the digest after the last move, or the starting digest.
func (d *Document) FinalFEN() string {
	if len(d.Moves) == 0 {
		return d.StartingFEN
	}
	return d.Moves[len(d.Moves)-1].FENAfter
}

// FENAfterPly returns the digest after the first n moves (clamped).
func (d *Document) FENAfterPly(n int) string {
	if n > len(d.Moves) {
		n = len(d.Moves)
	}
	if n <= 0 {
		return d.StartingFEN
	}
	return d.Moves[n-1].FENAfter
}

// Validate reports ErrEmptyTheory when nothing was parsed.
func (d *Document) Validate() error {
	if d == nil || d.MoveCount == 0 {
		return ErrEmptyTheory
	}
	return nil
}

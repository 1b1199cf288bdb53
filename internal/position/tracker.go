// Package position keeps the live board used to resolve move tokens while
// a theory text is being parsed.
package position

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/ivlev/chess2video/internal/theory"
)

// ErrIllegalMove is returned when a token matches no legal move.
var ErrIllegalMove = errors.New("illegal move")

// Tracker owns a single position. It is not safe for concurrent use;
// every parse constructs its own Tracker.
type Tracker struct {
	pos *chess.Position
}

func NewTracker() *Tracker {
	return &Tracker{pos: chess.StartingPosition()}
}

// Reset restores the standard initial position.
func (t *Tracker) Reset() {
	t.pos = chess.StartingPosition()
}

// Digest returns the FEN of the live position.
func (t *Tracker) Digest() string {
	return t.pos.String()
}

// Resolve interprets token as SAN first and then as UCI coordinates.
// On success the move is applied and its record returned. On failure the
// position is left untouched.
func (t *Tracker) Resolve(token string) (theory.MoveRecord, error) {
	m, err := t.decodeSAN(token)
	if err != nil {
		m, err = t.decodeUCI(token)
	}
	if err != nil {
		return theory.MoveRecord{}, fmt.Errorf("%w: %q", ErrIllegalMove, token)
	}
	return t.apply(m), nil
}

// ResolveSAN accepts standard notation only. It is used by readers whose
// format guarantees SAN, where a coordinate match would hide a broken game.
func (t *Tracker) ResolveSAN(token string) (theory.MoveRecord, error) {
	m, err := t.decodeSAN(token)
	if err != nil {
		return theory.MoveRecord{}, fmt.Errorf("%w: %q", ErrIllegalMove, token)
	}
	return t.apply(m), nil
}

func (t *Tracker) apply(m *chess.Move) theory.MoveRecord {
	before := t.pos.String()
	san := chess.AlgebraicNotation{}.Encode(t.pos, m)
	uci := chess.UCINotation{}.Encode(t.pos, m)

	t.pos = t.pos.Update(m)

	return theory.MoveRecord{
		SAN:       san,
		UCI:       uci,
		From:      m.S1().String(),
		To:        m.S2().String(),
		FENBefore: before,
		FENAfter:  t.pos.String(),
	}
}

func (t *Tracker) decodeSAN(token string) (*chess.Move, error) {
	san := normalizeSAN(token)
	if san == "" {
		return nil, ErrIllegalMove
	}
	return chess.AlgebraicNotation{}.Decode(t.pos, san)
}

// decodeUCI decodes coordinates and only accepts the result if it is a
// member of the legal move set.
func (t *Tracker) decodeUCI(token string) (*chess.Move, error) {
	s := strings.ToLower(strings.TrimSpace(token))
	if len(s) != 4 && len(s) != 5 {
		return nil, ErrIllegalMove
	}
	decoded, err := chess.UCINotation{}.Decode(t.pos, s)
	if err != nil {
		return nil, err
	}
	for _, m := range t.pos.ValidMoves() {
		if m.S1() == decoded.S1() && m.S2() == decoded.S2() && m.Promo() == decoded.Promo() {
			return m, nil
		}
	}
	return nil, ErrIllegalMove
}

// normalizeSAN strips move-quality glyphs and accepts zero-style castling.
func normalizeSAN(token string) string {
	s := strings.TrimSpace(token)
	s = strings.TrimRight(s, "!?")
	switch s {
	case "0-0", "0-0+", "0-0#":
		s = "O-O" + s[3:]
	case "0-0-0", "0-0-0+", "0-0-0#":
		s = "O-O-O" + s[5:]
	}
	return s
}

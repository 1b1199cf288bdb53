// Package renderer produces the frames of each scheduled segment.
package renderer

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/ivlev/chess2video/internal/board"
	"github.com/ivlev/chess2video/internal/compose"
	"github.com/ivlev/chess2video/internal/system"
	"github.com/ivlev/chess2video/internal/timeline"
)

// BoardRasterizer draws a position, optionally with marked squares.
type BoardRasterizer interface {
	Board(fen string, marked ...string) (*image.RGBA, error)
	Size() int
}

// EmitFunc receives one finished frame. The image is reused after the call returns.
type EmitFunc func(frame *image.RGBA) error

// FrameRenderer turns segments into frames of a fixed size.
type FrameRenderer struct {
	Board    BoardRasterizer
	Composer *compose.Composer
	Pool     *system.ImagePool
	// QRBadge adds a link to the final position on the outro.
	QRBadge bool
}

func NewFrameRenderer(b BoardRasterizer, c *compose.Composer) *FrameRenderer {
	return &FrameRenderer{
		Board:    b,
		Composer: c,
		Pool:     system.SharedPool(),
	}
}

// Bounds is the size of every frame.
func (r *FrameRenderer) Bounds() image.Rectangle {
	return r.Composer.Bounds()
}

// Render emits exactly seg.Frames frames for seg.
func (r *FrameRenderer) Render(seg timeline.Segment, emit EmitFunc) error {
	if seg.Frames <= 0 {
		return nil
	}

	frame := r.Pool.Get(r.Bounds())
	defer r.Pool.Put(frame)

	switch seg.Kind {
	case timeline.KindIntro:
		r.Composer.IntroCard(frame, seg.Title, seg.Description)
		return repeat(frame, seg.Frames, emit)
	case timeline.KindMove:
		return r.renderMove(frame, seg, emit)
	case timeline.KindOutro:
		return r.renderOutro(frame, seg, emit)
	default:
		return fmt.Errorf("unknown segment kind %q", seg.Kind)
	}
}

// renderMove shows the position before the move while the origin square
// lights up, then the position after it with both squares marked and an arrow.
func (r *FrameRenderer) renderMove(frame *image.RGBA, seg timeline.Segment, emit EmitFunc) error {
	size := r.Board.Size()

	if seg.TransitionFrames > 0 {
		before, err := r.Board.Board(seg.FENBefore)
		if err != nil {
			return err
		}
		scratch := r.Pool.Get(image.Rect(0, 0, size, size))
		defer r.Pool.Put(scratch)

		for i := 0; i < seg.TransitionFrames; i++ {
			draw.Draw(scratch, scratch.Rect, before, before.Rect.Min, draw.Src)
			if err := board.Tint(scratch, seg.From, size, board.HighlightColor, HighlightOpacity(i, seg.TransitionFrames)); err != nil {
				return err
			}
			r.Composer.Frame(frame, scratch, seg.Caption)
			if err := emit(frame); err != nil {
				return err
			}
		}
	}

	if seg.HoldFrames > 0 {
		if err := r.composeBoard(frame, seg.FENAfter, seg.Caption, seg.From, seg.To); err != nil {
			return err
		}
		return repeat(frame, seg.HoldFrames, emit)
	}
	return nil
}

func (r *FrameRenderer) renderOutro(frame *image.RGBA, seg timeline.Segment, emit EmitFunc) error {
	if err := r.composeBoard(frame, seg.FENAfter, seg.Caption, "", ""); err != nil {
		return err
	}
	if r.QRBadge {
		if err := r.Composer.Badge(frame, compose.AnalysisURL(seg.FENAfter)); err != nil {
			return err
		}
	}
	return repeat(frame, seg.Frames, emit)
}

// Still renders a single frame of fen with a caption. The caller owns the result.
func (r *FrameRenderer) Still(fen, caption string) (*image.RGBA, error) {
	frame := image.NewRGBA(r.Bounds())
	if err := r.composeBoard(frame, fen, caption, "", ""); err != nil {
		return nil, err
	}
	return frame, nil
}

// composeBoard draws fen into frame. When from and to are set the move is
// marked and an arrow is drawn between them.
func (r *FrameRenderer) composeBoard(frame *image.RGBA, fen, caption, from, to string) error {
	if from == "" || to == "" {
		img, err := r.Board.Board(fen)
		if err != nil {
			return err
		}
		r.Composer.Frame(frame, img, caption)
		return nil
	}

	img, err := r.Board.Board(fen, from, to)
	if err != nil {
		return err
	}
	size := r.Board.Size()
	scratch := r.Pool.Get(image.Rect(0, 0, size, size))
	defer r.Pool.Put(scratch)

	draw.Draw(scratch, scratch.Rect, img, img.Rect.Min, draw.Src)
	if err := board.DrawArrow(scratch, from, to, size, board.ArrowColor); err != nil {
		return err
	}
	r.Composer.Frame(frame, scratch, caption)
	return nil
}

func repeat(frame *image.RGBA, n int, emit EmitFunc) error {
	for i := 0; i < n; i++ {
		if err := emit(frame); err != nil {
			return err
		}
	}
	return nil
}

package board

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"regexp"
	"strings"

	"github.com/notnil/chess"
	chessimg "github.com/notnil/chess/image"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// HighlightColor marks the squares of the last move.
var HighlightColor = color.RGBA{R: 0xFF, G: 0xFF, B: 0x00, A: 0x50}

// maxCached bounds the number of rasterized positions kept per Rasterizer.
const maxCached = 256

// pieceOpen matches the opening tag of a piece drawing embedded in the
// board SVG produced by chess/image.
var pieceOpen = regexp.MustCompile(`<svg xmlns="http://www\.w3\.org/2000/svg" version="1\.1"[^>]*>`)

const pieceHeader = `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="45" height="45" viewBox="0 0 45 45">`

// Rasterizer draws positions at a fixed pixel size with one palette.
// Squares are filled directly; each piece is an SVG icon scaled into its
// square. It caches results and is not safe for concurrent use.
type Rasterizer struct {
	size    int
	palette Palette
	cache   map[string]*image.RGBA
	pieces  map[chess.Piece]*oksvg.SvgIcon
}

func NewRasterizer(size int, p Palette) *Rasterizer {
	return &Rasterizer{
		size:    size,
		palette: p,
		cache:   make(map[string]*image.RGBA),
		pieces:  make(map[chess.Piece]*oksvg.SvgIcon),
	}
}

func (r *Rasterizer) Size() int { return r.size }

func (r *Rasterizer) Palette() Palette { return r.palette }

// Board returns the position described by fen with the given squares
// marked in HighlightColor. The returned image is shared with the cache;
// callers that draw on it must copy it first.
func (r *Rasterizer) Board(fen string, marked ...string) (*image.RGBA, error) {
	key := fen + "|" + strings.Join(marked, ",")
	if img, ok := r.cache[key]; ok {
		return img, nil
	}

	img, err := r.render(fen, marked)
	if err != nil {
		return nil, err
	}

	if len(r.cache) >= maxCached {
		r.cache = make(map[string]*image.RGBA)
	}
	r.cache[key] = img
	return img, nil
}

func (r *Rasterizer) render(fen string, marked []string) (*image.RGBA, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("bad position %q: %w", fen, err)
	}
	b := chess.NewGame(opt).Position().Board()

	highlight := make(map[chess.Square]bool, len(marked))
	for _, name := range marked {
		sq, err := parseSquare(name)
		if err != nil {
			return nil, err
		}
		highlight[sq] = true
	}

	rgba := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	scanner := rasterx.NewScannerGV(r.size, r.size, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(r.size, r.size, scanner)

	pieces := b.SquareMap()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		rect, _ := SquareRect(sq.String(), r.size)

		c := r.palette.Light
		if (int(sq.File())+int(sq.Rank()))%2 == 0 {
			c = r.palette.Dark
		}
		if highlight[sq] {
			c = blend(c, HighlightColor)
		}
		draw.Draw(rgba, rect, image.NewUniform(c), image.Point{}, draw.Src)

		p, ok := pieces[sq]
		if !ok || p == chess.NoPiece {
			continue
		}
		icon, err := r.piece(p)
		if err != nil {
			return nil, err
		}
		icon.SetTarget(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
		icon.Draw(dasher, 1.0)
	}
	return rgba, nil
}

// piece returns the parsed icon of p, reading it on first use.
func (r *Rasterizer) piece(p chess.Piece) (*oksvg.SvgIcon, error) {
	if icon, ok := r.pieces[p]; ok {
		return icon, nil
	}
	doc, err := pieceSVG(p)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("piece %s: svg parse: %w", p, err)
	}
	r.pieces[p] = icon
	return icon, nil
}

// pieceSVG cuts the drawing of a single piece out of a board SVG and turns
// it into a standalone 45x45 document.
func pieceSVG(p chess.Piece) ([]byte, error) {
	var buf bytes.Buffer
	b := chess.NewBoard(map[chess.Square]chess.Piece{chess.A8: p})
	if err := chessimg.SVG(&buf, b); err != nil {
		return nil, fmt.Errorf("piece %s: svg encode: %w", p, err)
	}

	s := buf.String()
	loc := pieceOpen.FindStringIndex(s)
	if loc == nil {
		return nil, fmt.Errorf("piece %s: drawing not found", p)
	}
	end := strings.Index(s[loc[1]:], "</svg>")
	if end < 0 {
		return nil, fmt.Errorf("piece %s: unterminated drawing", p)
	}
	body := s[loc[1] : loc[1]+end]
	// chess/image ships the black queen and rook with "fill:000000".
	body = strings.ReplaceAll(body, "fill:000000", "fill:#000000")
	return []byte(pieceHeader + body + "</svg>"), nil
}

// blend flattens a translucent highlight over an opaque square color.
func blend(under color.RGBA, c color.RGBA) color.RGBA {
	a := uint32(c.A)
	mix := func(over, base uint8) uint8 {
		return uint8((uint32(over)*a + uint32(base)*(255-a)) / 255)
	}
	return color.RGBA{R: mix(c.R, under.R), G: mix(c.G, under.G), B: mix(c.B, under.B), A: 0xFF}
}
